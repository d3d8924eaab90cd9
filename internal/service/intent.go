package service

import (
	"strings"
	"unicode"
)

// Category is a coaching-response category for a conversational message.
type Category string

const (
	CategoryGreeting        Category = "greeting"
	CategoryNervousness     Category = "nervousness"
	CategoryFillerWords     Category = "filler_words"
	CategoryPacing          Category = "pacing"
	CategoryConfidence      Category = "confidence"
	CategoryClarity         Category = "clarity"
	CategoryPracticeRequest Category = "practice_request"
	CategoryGeneral         Category = "general"
)

// intentRule maps a keyword set to a category.
type intentRule struct {
	category Category
	keywords []string
}

// intentRules are evaluated in order; the first match wins.
var intentRules = []intentRule{
	{CategoryGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings"}},
	{CategoryNervousness, []string{"nervous", "anxious", "anxiety", "scared", "afraid", "fear", "stage fright", "panic", "worried", "shaky"}},
	{CategoryFillerWords, []string{"filler", "fillers", "filler words", "um", "uh", "erm", "you know"}},
	{CategoryPacing, []string{"pace", "pacing", "fast", "slow", "speed", "rush", "rushing", "too quick"}},
	{CategoryPracticeRequest, []string{"practice", "exercise", "drill", "let's try", "rehearse"}},
	{CategoryConfidence, []string{"confident", "confidence", "shy", "insecure", "timid", "doubt"}},
	{CategoryClarity, []string{"clear", "clarity", "mumble", "mumbling", "articulate", "articulation", "pronunciation", "enunciate"}},
}

// ClassifyIntent routes a message to a category. It is total: unmatched input is general.
func ClassifyIntent(message string) Category {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return CategoryGeneral
	}

	tokens := make(map[string]bool)
	for _, tok := range tokenize(normalized) {
		tokens[tok] = true
	}

	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if keywordMatches(kw, normalized, tokens) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// keywordMatches matches single words against tokens and phrases against the whole text.
func keywordMatches(keyword, text string, tokens map[string]bool) bool {
	if strings.ContainsAny(keyword, " '") {
		return strings.Contains(text, keyword)
	}
	return tokens[keyword]
}

// tokenize splits on anything that is not a letter, digit or apostrophe.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
