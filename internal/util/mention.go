// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

// Matches an @mention at a word boundary: "@" followed by letters, digits,
// underscores, or dashes. Used to lift tag-name candidates out of log content.
var mentionRe = regexp.MustCompile(`(^|\s)@([A-Za-z0-9][A-Za-z0-9_-]*)`)

// ExtractMention returns the first @word mention found in content, without
// the leading "@". Returns "" when the content carries no mention.
//
// Examples:
//
//	"@done solved knapsack" → "done"
//	"stuck on @hard-case"   → "hard-case"
//	"email me a@b.com"      → ""  (not at a word boundary)
func ExtractMention(content string) string {
	m := mentionRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[2]
}

// NormalizeTagName converts a tag name to its canonical form. Tag names
// are stored and compared in this form, so uniqueness within a scope is
// case-insensitive.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
