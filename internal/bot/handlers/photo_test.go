package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	// Two-byte Cyrillic runes put every odd byte index mid-rune.
	long := strings.Repeat("я", 600)

	got := truncate(escapeMarkdown(long), 900)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got[len(got)-10:])
	}
	if len(got) > 900 {
		t.Errorf("len = %d, want <= 900", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text should end with an ellipsis, got %q", got[len(got)-10:])
	}
}

func TestTruncate_ShortInputUnchanged(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"ascii", "chicken and rice"},
		{"cyrillic under the limit", strings.Repeat("ю", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, 900); got != tt.in {
				t.Errorf("truncate() = %q, want input unchanged", got)
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	in := "рис*с_овощами [примерно 200 г] `оценка`"
	want := "рис\\*с\\_овощами \\[примерно 200 г\\] \\`оценка\\`"

	got := escapeMarkdown(in)
	if got != want {
		t.Errorf("escapeMarkdown() = %q, want %q", got, want)
	}
	if !utf8.ValidString(got) {
		t.Error("escaped text is not valid UTF-8")
	}
}
