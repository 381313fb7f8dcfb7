// Package textproc normalizes and tokenizes free text for intent detection
// and catalog scoring.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLen is the shortest token kept by Tokenize, in runes.
const MinTokenLen = 3

var urlPattern = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)

// stopWords are dropped by Tokenize. Besides common function words the list
// holds words every visitor uses ("help", "want") that carry no topic.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "your": {}, "with": {}, "this": {}, "that": {}, "have": {},
	"has": {}, "was": {}, "were": {}, "what": {}, "which": {}, "who": {},
	"how": {}, "about": {}, "from": {}, "into": {}, "they": {}, "them": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "will": {}, "just": {},
	"like": {}, "some": {}, "any": {}, "our": {}, "get": {}, "does": {},
	"there": {}, "please": {}, "help": {}, "want": {}, "need": {}, "looking": {},
	"tell": {}, "know": {}, "something": {},
}

// Normalize lower-cases text, removes URLs, replaces every rune that is not a
// letter or digit with a space and collapses whitespace.
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(strings.ToLower(text), " ")

	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize normalizes text and returns its distinct meaningful tokens in
// order of first appearance. Short tokens and stop words are dropped, so a
// greeting or filler-only message yields an empty slice.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLen {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopWord reports whether w (already lower-cased) is ignored for scoring.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
