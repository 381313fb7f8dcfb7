package assistant

import "strings"

// DodgePatterns are phrases a model uses to stall with a generic question
// instead of recommending something it was given.
var DodgePatterns = []string{
	"in the mood for",
	"what kind of",
	"what type of",
	"what sort of",
	"what are you interested in",
	"what are you looking for",
	"what do you enjoy",
	"tell me more about what",
	"can you tell me more",
	"could you tell me more",
	"what topics",
}

// IsDodge reports whether text contains a stalling pattern.
func IsDodge(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range DodgePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// mentionsAny reports whether text names at least one of names.
func mentionsAny(text string, names []string) bool {
	lower := strings.ToLower(text)
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" && strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
