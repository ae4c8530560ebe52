package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Email (case-insensitive)
var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)

// Common phone shapes: +xx..., (xxx) xxx-xxxx, 08xx...
// Nine characters minimum so short numbers survive.
var rePhone = regexp.MustCompile(`\+?\d[\d\s\-\.()]{7,}\d`)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text peels off.
const maxPasses = 4

// Text strips every tag from user supplied free text and trims it.
// Entities are decoded and the result sanitized again until it is stable, so
// encoded markup cannot come back as live tags. Input still changing after
// maxPasses is stored in its escaped form.
func Text(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
		if next == s {
			return s
		}
		s = next
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

// RedactPII masks emails and phone numbers in previews.
func RedactPII(s string) string {
	if s == "" {
		return s
	}
	s = reEmail.ReplaceAllString(s, "[redacted email]")
	s = rePhone.ReplaceAllString(s, "[redacted phone]")
	return s
}

// Summary cuts s at a word boundary for listings.
func Summary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && i < len(s) && s[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
		for i > 0 && !utf8.RuneStart(s[i]) {
			i--
		}
	}
	return s[:i] + "…"
}
