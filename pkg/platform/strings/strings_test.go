package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "lowercases and trims", input: []string{"  Vet ", "GROOMER"}, expected: []string{"vet", "groomer"}},
		{name: "case-insensitive duplicates keep first", input: []string{"Vet", "vet", "VET"}, expected: []string{"vet"}},
		{name: "drops empties", input: []string{"", "  ", "gym"}, expected: []string{"gym"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeLower(tt.input))
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "log 10000 steps", CollapseSpace("  log \t10000\n\n steps  "))
	assert.Equal(t, "", CollapseSpace(" \t\n "))
	assert.Equal(t, "a b", CollapseSpace("a  b"))
}

func TestTruncateRunes(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		out, cut := TruncateRunes("héllo", 5)
		assert.Equal(t, "héllo", out)
		assert.False(t, cut)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		out, cut := TruncateRunes("ééééé", 3)
		assert.Equal(t, "ééé", out)
		assert.True(t, cut)
	})

	t.Run("non-positive limit disables truncation", func(t *testing.T) {
		out, cut := TruncateRunes("abc", 0)
		assert.Equal(t, "abc", out)
		assert.False(t, cut)
	})
}

func TestEllipsize(t *testing.T) {
	assert.Equal(t, "short", Ellipsize("short", 10))
	assert.Equal(t, "spent 30 at...", Ellipsize("spent 30 at Starbucks", 14))
	assert.Equal(t, "ab", Ellipsize("abcdef", 2))
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Weight 175 lb", CapitalizeFirst("weight 175 lb"))
	assert.Equal(t, "", CapitalizeFirst(""))
	assert.Equal(t, "Über", CapitalizeFirst("über"))
}
