// Package sanitize cleans user-supplied text before it is sent to a
// collaborator or stored. Uses bluemonday to strip any markup a user
// pastes into a form, so prompts reach the image model as plain text.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy that removes all markup.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips every HTML element from input and collapses runs of
// whitespace to a single space. Entities are decoded afterwards because the
// result is plain text, not HTML; templates escape it again on output.
func Text(input string) string {
	if input == "" {
		return ""
	}
	stripped := html.UnescapeString(getPolicy().Sanitize(input))
	return strings.Join(strings.Fields(stripped), " ")
}

// Prompt cleans a generation prompt with Text and truncates it to at most
// maxRunes characters. A non-positive maxRunes disables truncation.
func Prompt(input string, maxRunes int) string {
	text := Text(input)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes]))
}
