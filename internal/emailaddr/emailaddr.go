// Package emailaddr cleans email values that arrive from the accounts API
// wrapped in markup (mailto anchors, spans) or with case and whitespace
// noise, so rows can be keyed by one canonical address.
package emailaddr

import "strings"

const mailtoPrefix = "mailto:"

// Extract returns the plain address from a raw field value. Values may be a
// bare address, a mailto anchor, or tag-wrapped text.
func Extract(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if i := strings.Index(strings.ToLower(s), mailtoPrefix); i >= 0 {
		rest := s[i+len(mailtoPrefix):]
		if j := strings.IndexAny(rest, `"'<>`); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	if strings.ContainsRune(s, '<') {
		s = stripTags(s)
	}
	return strings.TrimSpace(s)
}

// Normalize lowercases the extracted address so case and markup variants of
// the same mailbox collapse to one key.
func Normalize(raw string) string {
	return strings.ToLower(Extract(raw))
}

func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
