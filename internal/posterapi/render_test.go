package posterapi

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
)

func TestPlaceholderRenderer_Size(t *testing.T) {
	data, err := NewPlaceholderRenderer().Render(context.Background(), "a lone astronaut on a red dune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != PosterSize || b.Dy() != PosterSize {
		t.Errorf("expected %dx%d, got %dx%d", PosterSize, PosterSize, b.Dx(), b.Dy())
	}
}

func TestPlaceholderRenderer_Deterministic(t *testing.T) {
	r := NewPlaceholderRenderer()
	a, err := r.Render(context.Background(), "neon samurai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.Render(context.Background(), "neon samurai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same prompt should render the same poster")
	}
}

func TestPlaceholderRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPlaceholderRenderer().Render(ctx, "x"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWrapWords(t *testing.T) {
	lines := wrapWords("the quick brown fox jumps over the lazy dog", 10, 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if got := strings.Join(lines, " "); got != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("words lost in wrapping: %q", got)
	}

	long := wrapWords(strings.Repeat("a", 25), 10, 10)
	if len(long) != 3 || long[0] != strings.Repeat("a", 10) {
		t.Errorf("expected long word split into 3 lines, got %q", long)
	}

	if n := len(wrapWords(strings.Repeat("word ", 100), 10, 4)); n != 4 {
		t.Errorf("expected 4 lines max, got %d", n)
	}
}
