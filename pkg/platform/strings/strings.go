// Package strings provides text helpers shared by the command pipeline.
package strings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DedupeLower trims, lowercases and removes duplicates and empties. Order is preserved.
//
//	DedupeLower([]string{"  Vet ", "vet", "", "Groomer"})
//	// Returns: []string{"vet", "groomer"}
func DedupeLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, key)
		}
	}
	return result
}

// CollapseSpace replaces every run of Unicode whitespace with a single space
// and trims both ends.
func CollapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// TruncateRunes cuts s to at most limit runes. The second return reports
// whether anything was dropped.
func TruncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// Ellipsize shortens s to limit runes, appending "..." when cut.
func Ellipsize(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		out, _ := TruncateRunes(s, limit)
		return out
	}
	out, cut := TruncateRunes(s, limit-3)
	if !cut {
		return s
	}
	return strings.TrimRightFunc(out, unicode.IsSpace) + "..."
}

// CapitalizeFirst upper-cases the first rune.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
