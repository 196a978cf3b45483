package core

import (
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

// Preview returns the first limit runes of s, followed by Ellipsis when s is
// longer than that. A non-positive limit returns s unchanged.
func Preview(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

// TagTokens splits a note's tag string into tokens, keeping any leading '#'.
func TagTokens(tags string) []string {
	return strings.Fields(tags)
}

// TagName strips the conventional '#' prefix from a tag token.
func TagName(token string) string {
	return strings.TrimLeft(token, "#")
}

// JoinTags builds a note tag string from names, adding '#' where missing.
func JoinTags(names ...string) string {
	tokens := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if !strings.HasPrefix(n, "#") {
			n = "#" + n
		}
		tokens = append(tokens, n)
	}
	return strings.Join(tokens, " ")
}

// matchNote reports whether a note passes the text and tag filters.
// Both filters are case-insensitive substring matches; an empty filter
// matches everything.
func matchNote(n Note, query, tag string) bool {
	query = strings.ToLower(query)
	tag = strings.ToLower(tag)

	textMatch := query == "" ||
		strings.Contains(strings.ToLower(n.Title), query) ||
		strings.Contains(strings.ToLower(n.Content), query)
	tagMatch := tag == "" || strings.Contains(strings.ToLower(n.Tags), tag)

	return textMatch && tagMatch
}

// matchTagPattern matches pattern against the tags of a note.
// Patterns with glob metacharacters are matched token by token, with and
// without the '#' prefix; anything else is a substring match.
func matchTagPattern(tags, pattern string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return true
	}
	tags = strings.ToLower(tags)

	if !strings.ContainsAny(pattern, "*?[{") {
		return strings.Contains(tags, pattern)
	}

	for _, token := range TagTokens(tags) {
		if ok, _ := doublestar.Match(pattern, token); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, TagName(token)); ok {
			return true
		}
	}
	return false
}
