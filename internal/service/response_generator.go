package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"
)

// CoachName is the persona every reply is signed with.
const CoachName = "Alex"

// historyWindow is how many prior messages are given to the AI as context.
const historyWindow = 6

// CoachingReply is the coach's answer to one student message.
type CoachingReply struct {
	Text             string   `json:"text"`
	CoachName        string   `json:"coach_name"`
	CoachingTips     []string `json:"coaching_tips"`
	RequiresResponse bool     `json:"requires_response"`
	IsEncouraging    bool     `json:"is_encouraging"`
	Category         Category `json:"category"`
}

// HistoryMessage is one prior message. Speaker is "user" for the student, anything else is the coach.
type HistoryMessage struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type categoryResponses struct {
	templates []string
	tips      []string
}

// categoryPool holds the canned replies. {message} is replaced with the student's message.
var categoryPool = map[Category]categoryResponses{
	CategoryGreeting: {
		templates: []string{
			"Hi there! I'm Alex, your speaking coach. What would you like to work on today?",
			"Hello! Great to see you. Shall we warm up with a short introduction about yourself?",
			"Hey! Ready to practice? Tell me about a talk or conversation you have coming up.",
			"Good to hear from you! Let's start simple: describe your day in three sentences.",
		},
		tips: []string{
			"Start with a warm, steady greeting",
			"Smile as you speak; it changes your tone",
		},
	},
	CategoryNervousness: {
		templates: []string{
			"Feeling nervous is completely normal. Even experienced speakers feel it. Try a slow breath in for four counts and out for four.",
			"You said: \"{message}\". That takes courage to admit. Let's channel that energy into enthusiasm.",
			"Nerves mean you care about doing well. Let's practice a short opening line until it feels automatic.",
			"Many great speakers get butterflies. Ground yourself: feet flat, shoulders relaxed, then speak your first sentence slowly.",
			"Let's shrink the challenge. Tell me just one sentence about your topic, as calmly as you can.",
		},
		tips: []string{
			"Take slow, deep breaths before you start",
			"Focus on your message, not on yourself",
			"Rehearse your opening until it feels natural",
		},
	},
	CategoryFillerWords: {
		templates: []string{
			"Filler words are a habit we can break. Next time you feel an \"um\" coming, pause silently instead.",
			"Great that you noticed fillers. Try repeating \"{message}\" with a short pause wherever a filler wants to appear.",
			"Pauses sound confident; fillers sound unsure. Let's practice replacing them one sentence at a time.",
			"Try this: speak for 30 seconds on your favorite hobby and count how many fillers slip in.",
		},
		tips: []string{
			"Replace filler words with a short pause",
			"Slow down slightly to give yourself time to think",
		},
	},
	CategoryPacing: {
		templates: []string{
			"Pacing is key. Aim for around 130 to 150 words per minute and pause after important points.",
			"Let's work on pace. Read \"{message}\" aloud again, this time pausing at every comma.",
			"If you tend to rush, mark pauses in your notes. A two-second pause feels long to you but natural to listeners.",
			"Vary your speed: slow down for key ideas and speed up a little for supporting details.",
		},
		tips: []string{
			"Pause after each key point",
			"Slow down for the ideas that matter most",
			"Breathe at natural sentence breaks",
		},
	},
	CategoryPracticeRequest: {
		templates: []string{
			"Let's practice! Give me a one-minute introduction of yourself as if you were at a conference.",
			"Great idea. Here's an exercise: explain your job to a ten-year-old in three sentences.",
			"Let's rehearse. Pick a topic you love and give me a 30-second pitch on why others should care.",
			"Practice time! Tell me a short story about a challenge you overcame, with a clear beginning, middle and end.",
			"Here's a drill: say \"{message}\" again, but emphasize one key word you want the listener to remember.",
		},
		tips: []string{
			"Record yourself and listen back",
			"Practice a little every day",
		},
	},
	CategoryConfidence: {
		templates: []string{
			"Confidence grows with practice. Stand tall, plant your feet, and speak to the back of the room.",
			"You said: \"{message}\". Let's reframe that. Say it again with a strong, downward inflection at the end.",
			"Confident speakers own their pauses. Try making your next statement and holding eye contact for a beat afterwards.",
			"Remember, your audience wants you to succeed. Let's practice a bold opening statement together.",
		},
		tips: []string{
			"Use open, upright body language",
			"End sentences with a downward inflection",
			"Prepare your first line so you start strong",
		},
	},
	CategoryClarity: {
		templates: []string{
			"Clarity starts with articulation. Try exaggerating your consonants while reading a sentence aloud.",
			"Let's work on clarity. Say \"{message}\" again slowly, finishing every word fully.",
			"Tongue twisters are a great warm-up. Try \"red leather, yellow leather\" five times, clearly and slowly.",
			"Open your mouth a little more than feels natural; it makes a big difference to how clearly you're heard.",
		},
		tips: []string{
			"Articulate each word clearly",
			"Keep your volume steady to the end of each sentence",
		},
	},
}

var generalFallbacks = []string{
	"I'm here to help you practice speaking! What would you like to work on?",
	"That's a great point. Could you tell me more about what you'd like to improve?",
	"Let's keep going! Try saying that again, and focus on speaking slowly and clearly.",
	"Every great speaker started where you are. What situation do you want to practice for?",
}

var generalFallbackTips = []string{"Speak clearly", "Take your time"}

// questionMarkers indicate the student expects an answer.
var questionMarkers = []string{"what", "how", "why", "can you", "could you", "would you", "should i", "do you", "is there"}

type tipKeyword struct {
	keyword string
	tip     string
}

// tipKeywords are scanned in order when extracting tips from a free-form reply.
var tipKeywords = []tipKeyword{
	{"breathe", "Remember to breathe between sentences"},
	{"pause", "Remember to breathe between sentences"},
	{"slow", "Try speaking a bit slower"},
	{"confident", "Speak with confidence in your voice"},
	{"practice", "Regular practice is key to improvement"},
	{"clear", "Articulate each word clearly"},
	{"eye contact", "Maintain eye contact with your audience"},
	{"filler", "Replace filler words with a short pause"},
	{"structure", "Organize your points with a clear structure"},
}

var defaultExtractedTips = []string{"Keep practicing regularly!", "Speak clearly and take your time"}

const maxExtractedTips = 3

// ResponseGenerator builds coaching replies.
type ResponseGenerator struct {
	ai   TextGenerator
	pick func(n int) int
	log  zerolog.Logger
}

// NewResponseGenerator creates a generator with a process-wide random picker. ai may be nil.
func NewResponseGenerator(ai TextGenerator, log zerolog.Logger) *ResponseGenerator {
	return &ResponseGenerator{
		ai:   ai,
		pick: rand.IntN,
		log:  log,
	}
}

// WithPicker replaces the random picker. pick(n) must return a value in [0, n).
func (g *ResponseGenerator) WithPicker(pick func(n int) int) *ResponseGenerator {
	g.pick = pick
	return g
}

// Respond never fails; AI problems yield one of the fixed fallback replies.
func (g *ResponseGenerator) Respond(ctx context.Context, category Category, message string, history []HistoryMessage) CoachingReply {
	reply := CoachingReply{
		CoachName:        CoachName,
		RequiresResponse: RequiresResponse(message),
		IsEncouraging:    true,
		Category:         category,
	}

	if pool, ok := categoryPool[category]; ok {
		tmpl := pool.templates[g.pick(len(pool.templates))]
		reply.Text = strings.ReplaceAll(tmpl, "{message}", message)
		reply.CoachingTips = append([]string(nil), pool.tips...)
		return reply
	}

	reply.Category = CategoryGeneral
	text, err := g.generate(ctx, message, history)
	if err != nil {
		g.log.Warn().Err(err).Msg("Coaching reply fell back to canned response")
		reply.Text = generalFallbacks[g.pick(len(generalFallbacks))]
		reply.CoachingTips = append([]string(nil), generalFallbackTips...)
		return reply
	}

	reply.Text = text
	reply.CoachingTips = ExtractCoachingTips(text)
	return reply
}

func (g *ResponseGenerator) generate(ctx context.Context, message string, history []HistoryMessage) (string, error) {
	if g.ai == nil {
		return "", fmt.Errorf("no AI provider configured")
	}
	text, err := g.ai.GenerateText(ctx, coachPrompt(message, history))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty AI reply")
	}
	return text, nil
}

func coachPrompt(message string, history []HistoryMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var sb strings.Builder
	for _, msg := range history {
		speaker := "Coach " + CoachName
		if msg.Speaker == "user" {
			speaker = "Student"
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, msg.Text)
	}

	return fmt.Sprintf(`You are %s, an encouraging, patient, constructive speaking coach.
Your expertise is public speaking and communication.
Speak with a warm, professional, friendly tone.

You're having a voice conversation with a student who wants to improve their speaking skills.
Keep responses natural, conversational, and under 3 sentences.
Include subtle coaching tips in your responses.

Previous conversation:
%s
Student: %s

Coach %s:`, CoachName, sb.String(), message, CoachName)
}

// RequiresResponse reports whether the message reads like a question to the coach.
func RequiresResponse(message string) bool {
	lower := strings.ToLower(message)
	for _, q := range questionMarkers {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}

// ExtractCoachingTips maps keywords in a free-form reply to tips, in table order, up to three.
// Duplicate tip strings from different keywords are kept.
func ExtractCoachingTips(text string) []string {
	lower := strings.ToLower(text)
	var tips []string
	for _, tk := range tipKeywords {
		if len(tips) == maxExtractedTips {
			break
		}
		if strings.Contains(lower, tk.keyword) {
			tips = append(tips, tk.tip)
		}
	}
	if len(tips) == 0 {
		return append([]string(nil), defaultExtractedTips...)
	}
	return tips
}
