// Package sanitize makes generated text safe to read aloud.
//
// Speech engines pronounce every character they are given, so an internal
// route like /onboarding/editing or a raw URL would be spoken verbatim.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	urlPattern    = regexp.MustCompile(`(?i)(?:https?://|www\.)\S*`)
	pathPattern   = regexp.MustCompile(`/[a-z0-9\-/]+`)
	emptyParens   = regexp.MustCompile(`\(\s*\)`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeP  = regexp.MustCompile(`[ \t]+([.,;:!?])`)
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Text removes URLs and path-like tokens and tidies the whitespace left
// behind. The result is a fixed point: Text(Text(s)) == Text(s).
func Text(s string) string {
	for {
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

// ContainsPath reports whether s still holds a path-like token.
func ContainsPath(s string) bool {
	return pathPattern.MatchString(s)
}

// Every replacement in pass shrinks the string, so Text terminates.
func pass(s string) string {
	s = urlPattern.ReplaceAllString(s, "")
	s = pathPattern.ReplaceAllString(s, "")
	s = emptyParens.ReplaceAllString(s, "")
	s = spaceBeforeP.ReplaceAllString(s, "$1")
	s = spaceRun.ReplaceAllString(s, " ")
	s = trailingSpace.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
