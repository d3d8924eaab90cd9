package repository

// Pace is a coarse speaking-rate label.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceMedium Pace = "medium"
	PaceFast   Pace = "fast"
	PaceNormal Pace = "normal"
)

// SpeechMetrics is the delivery profile of a reference speech.
type SpeechMetrics struct {
	ClarityScore         float64 `json:"clarity_score"`
	ConfidenceScore      float64 `json:"confidence_score"`
	Pace                 Pace    `json:"pace"`
	FillerWordsPerMinute float64 `json:"filler_words_per_minute"`
	Sentiment            string  `json:"sentiment,omitempty"`
	PauseFrequency       string  `json:"pause_frequency,omitempty"`
}

// ProfessionalSpeech is a read-only reference speech users compare against.
type ProfessionalSpeech struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Speaker  string        `json:"speaker"`
	Category string        `json:"category"`
	Text     string        `json:"text"`
	Metrics  SpeechMetrics `json:"metrics"`
	AudioURL string        `json:"audio_url"`
	Tags     []string      `json:"tags"`
}

// GetID returns the speech ID.
func (p *ProfessionalSpeech) GetID() string {
	return p.ID
}

// SpeechCatalog looks up reference speeches.
type SpeechCatalog interface {
	All() []*ProfessionalSpeech
	GetByID(id string) (*ProfessionalSpeech, error)
	ByCategory(category string) []*ProfessionalSpeech
}

// StaticSpeechCatalog serves a fixed, ordered table of speeches.
type StaticSpeechCatalog struct {
	store *MemoryStore[*ProfessionalSpeech]
}

// NewStaticSpeechCatalog builds a catalog over the given speeches, keeping their order.
func NewStaticSpeechCatalog(speeches ...*ProfessionalSpeech) *StaticSpeechCatalog {
	return &StaticSpeechCatalog{store: NewMemoryStore(speeches...)}
}

// NewDefaultSpeechCatalog returns the built-in catalog of seed speeches.
func NewDefaultSpeechCatalog() *StaticSpeechCatalog {
	return NewStaticSpeechCatalog(DefaultProfessionalSpeeches()...)
}

// All returns every speech in table order.
func (c *StaticSpeechCatalog) All() []*ProfessionalSpeech {
	return c.store.All()
}

// GetByID returns the speech with the exact ID.
func (c *StaticSpeechCatalog) GetByID(id string) (*ProfessionalSpeech, error) {
	return c.store.Get(id)
}

// ByCategory returns speeches with the given category, in table order.
func (c *StaticSpeechCatalog) ByCategory(category string) []*ProfessionalSpeech {
	var out []*ProfessionalSpeech
	for _, s := range c.store.All() {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// DefaultProfessionalSpeeches returns a fresh copy of the seed table.
func DefaultProfessionalSpeeches() []*ProfessionalSpeech {
	return []*ProfessionalSpeech{
		{
			ID:       "ted_001",
			Title:    "Steve Jobs - Stanford Commencement",
			Speaker:  "Steve Jobs",
			Category: "Motivational",
			Text:     "Your time is limited, so don't waste it living someone else's life... Stay hungry, stay foolish.",
			Metrics: SpeechMetrics{
				ClarityScore:         9.5,
				ConfidenceScore:      9.8,
				Pace:                 PaceMedium,
				FillerWordsPerMinute: 0.5,
				Sentiment:            "inspirational",
				PauseFrequency:       "optimal",
			},
			AudioURL: "https://example.com/steve-jobs.mp3",
			Tags:     []string{"leadership", "inspiration", "career"},
		},
		{
			ID:       "ted_002",
			Title:    "How Great Leaders Inspire Action",
			Speaker:  "Simon Sinek",
			Category: "Leadership",
			Text:     "People don't buy what you do, they buy why you do it...",
			Metrics: SpeechMetrics{
				ClarityScore:         9.2,
				ConfidenceScore:      9.3,
				Pace:                 PaceSlow,
				FillerWordsPerMinute: 0.8,
				Sentiment:            "educational",
				PauseFrequency:       "high",
			},
			AudioURL: "https://example.com/sinek.mp3",
			Tags:     []string{"business", "leadership", "communication"},
		},
		{
			ID:       "political_001",
			Title:    "I Have a Dream",
			Speaker:  "Martin Luther King Jr.",
			Category: "Historic",
			Text:     "I have a dream that my four little children will one day live in a nation where they will not be judged by the color of their skin but by the content of their character.",
			Metrics: SpeechMetrics{
				ClarityScore:         9.8,
				ConfidenceScore:      9.9,
				Pace:                 PaceMedium,
				FillerWordsPerMinute: 0.2,
				Sentiment:            "powerful",
				PauseFrequency:       "strategic",
			},
			AudioURL: "https://example.com/mlk.mp3",
			Tags:     []string{"historic", "inspiration", "social"},
		},
		{
			ID:       "business_001",
			Title:    "The Power of Vulnerability",
			Speaker:  "Brené Brown",
			Category: "Psychology",
			Text:     "Vulnerability is not winning or losing; it's having the courage to show up and be seen when we have no control over the outcome.",
			Metrics: SpeechMetrics{
				ClarityScore:         9.0,
				ConfidenceScore:      8.8,
				Pace:                 PaceMedium,
				FillerWordsPerMinute: 1.2,
				Sentiment:            "authentic",
				PauseFrequency:       "natural",
			},
			AudioURL: "https://example.com/brown.mp3",
			Tags:     []string{"psychology", "authenticity", "human"},
		},
	}
}
