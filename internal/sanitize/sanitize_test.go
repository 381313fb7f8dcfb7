package sanitize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Try The Forgotten Oath.", "Try The Forgotten Oath."},
		{"internal path", "Book here: /onboarding/editing today", "Book here: today"},
		{"path before period", "Start at /network/after-the-uniform.", "Start at."},
		{"parenthesized path", `"Coming Home" (/podcasts/the-forgotten-oath) is great`, `"Coming Home" is great`},
		{"full url", "Watch https://youtube.com/watch?v=abc now", "Watch now"},
		{"www url", "Visit www.barracks.media for more", "Visit for more"},
		{"uppercase after slash kept", "Audio/Video editing", "Audio/Video editing"},
		{"lowercase after slash removed", "audio/video editing", "audio editing"},
		{"newlines preserved", "First line /a\nSecond line", "First line\nSecond line"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"Book at /onboarding/web-design or https://barracks.media/onboarding",
		"http/x://foo and //double//slashes",
		"a/b/c d/e f /  /g",
		"(  ) ( /x ) trailing   ",
		"Tell me what you're in the mood for (/network/a) and (/network/b).",
		"www.x.com/www.y.com/z",
		"ends with slash /",
	}

	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "input %q", in)
	}
}

func TestTextNeverLeavesPaths(t *testing.T) {
	forbidden := regexp.MustCompile(`/[a-z0-9-]+`)
	inputs := []string{
		"/onboarding/editing",
		"go to /a then /b-c/d and https://e.com/f",
		"mixed /UPPER/lower/123",
		"x//y///z",
	}

	for _, in := range inputs {
		out := Text(in)
		assert.False(t, forbidden.MatchString(out), "output %q of %q still has a path", out, in)
		assert.False(t, ContainsPath(out))
	}
}
