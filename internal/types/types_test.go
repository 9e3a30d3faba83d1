package types

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short stays whole", "abc", 10, "abc"},
		{"exact length stays whole", "abcde", 5, "abcde"},
		{"ascii cut", "abcdefgh", 4, "abcd..."},
		{"empty", "", 5, ""},
		// α is two bytes; a cap landing inside it must back up to the
		// rune boundary instead of emitting half a rune.
		{"cut inside multi-byte rune", "aαβγ", 2, "a..."},
		{"cut between runes", "aαβγ", 3, "aα..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8 %q", tt.input, tt.maxLen, got)
			}
		})
	}
}

func TestValidationErrorSnippetStaysValidUTF8(t *testing.T) {
	snippet := strings.Repeat("∑", 30) // 3 bytes each, 90 bytes total
	verr := NewValidationError(ErrSyntax, "unbalanced braces", snippet, -1)

	if !utf8.ValidString(verr.Snippet) {
		t.Errorf("snippet %q is not valid UTF-8", verr.Snippet)
	}
	if !strings.HasSuffix(verr.Snippet, "...") {
		t.Errorf("snippet %q should be truncated", verr.Snippet)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		priority int
		want     PriorityTier
	}{
		{0, TierLow},
		{249, TierLow},
		{250, TierMedium},
		{499, TierMedium},
		{500, TierHigh},
		{999, TierHigh},
		{1000, TierCritical},
		{2000, TierCritical},
	}

	for _, tt := range tests {
		if got := TierFor(tt.priority); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.priority, got, tt.want)
		}
	}
}
