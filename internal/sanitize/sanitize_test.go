package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "a castle at dusk", "a castle at dusk"},
		{"empty", "", ""},
		{"script removed", `noir city<script>alert(1)</script>`, "noir city"},
		{"tags stripped", `<b>bold</b> <i>heist</i>`, "bold heist"},
		{"entities kept as text", "Tom & Jerry", "Tom & Jerry"},
		{"whitespace collapsed", "  space\n\topera  ", "space opera"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("é", 600)
	got := Prompt(long, 512)
	if n := utf8.RuneCountInString(got); n != 512 {
		t.Errorf("expected 512 runes, got %d", n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation must not split a rune")
	}
}

func TestPrompt_NoLimit(t *testing.T) {
	in := strings.Repeat("a", 1000)
	if got := Prompt(in, 0); got != in {
		t.Error("expected no truncation with a zero limit")
	}
	if got := Prompt("short", 512); got != "short" {
		t.Errorf("expected short prompt unchanged, got %q", got)
	}
}
