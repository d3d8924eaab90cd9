package service

var speakerTips = map[string][]string{
	"Steve Jobs": {
		"Use dramatic pauses for emphasis",
		"Tell personal stories to connect",
		"Repeat key phrases for impact",
	},
	"Simon Sinek": {
		"Start with 'Why' before 'What'",
		"Use simple, powerful visuals",
		"Speak slowly to emphasize points",
	},
	"Martin Luther King Jr.": {
		"Use rhythmic repetition",
		"Build to emotional climax",
		"Speak with conviction and passion",
	},
	"Brené Brown": {
		"Be vulnerable and authentic",
		"Use personal anecdotes",
		"Maintain conversational tone",
	},
}

var genericSpeakerTips = []string{
	"Practice deliberate pauses",
	"Record and review yourself",
	"Focus on one improvement at a time",
}

// SpeakerTips returns the stylistic tips for a professional speaker, or generic tips for unknown names.
// The returned slice is a copy.
func SpeakerTips(speaker string) []string {
	tips, ok := speakerTips[speaker]
	if !ok {
		tips = genericSpeakerTips
	}
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}
