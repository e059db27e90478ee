package posterapi

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PosterSize is the width and height of a rendered poster in pixels.
const PosterSize = 1024

// Renderer turns a prompt into PNG bytes.
type Renderer interface {
	Render(ctx context.Context, prompt string) ([]byte, error)
}

// placeholderRenderer draws the prompt as a title card. It stands in for
// an image model: the output is deterministic for a given prompt.
type placeholderRenderer struct{}

// NewPlaceholderRenderer creates the built-in poster renderer.
func NewPlaceholderRenderer() Renderer {
	return placeholderRenderer{}
}

// Text is laid out on a small canvas and scaled up, since basicfont only
// ships a 7x13 face.
const (
	cardSize  = 256
	cardScale = PosterSize / cardSize
	cardWrap  = 30
	cardLines = 14
)

// Render draws a two-tone background picked from the prompt hash and the
// word-wrapped prompt on top.
func (placeholderRenderer) Render(ctx context.Context, prompt string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bg, fg := palette(prompt)
	card := image.NewRGBA(image.Rect(0, 0, cardSize, cardSize))
	draw.Draw(card, card.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	band := image.Rect(0, cardSize-40, cardSize, cardSize)
	draw.Draw(card, band, image.NewUniform(fg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: card, Src: image.NewUniform(fg), Face: face}
	lineHeight := face.Metrics().Height.Ceil()
	for i, line := range wrapWords(prompt, cardWrap, cardLines) {
		width := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((cardSize-width)/2, 24+i*lineHeight)
		d.DrawString(line)
	}

	poster := image.NewRGBA(image.Rect(0, 0, PosterSize, PosterSize))
	draw.NearestNeighbor.Scale(poster, poster.Bounds(), card, card.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, poster); err != nil {
		return nil, fmt.Errorf("encoding poster png: %w", err)
	}
	return buf.Bytes(), nil
}

// palette derives a dark background and a light accent from the prompt.
func palette(prompt string) (bg, fg color.RGBA) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	sum := h.Sum32()
	bg = color.RGBA{R: uint8(sum>>16) / 3, G: uint8(sum>>8) / 3, B: uint8(sum) / 3, A: 0xff}
	fg = color.RGBA{R: 0xff - bg.R/2, G: 0xff - bg.G/2, B: 0xf0, A: 0xff}
	return bg, fg
}

// wrapWords breaks text into lines of at most width runes, keeping at most
// maxLines lines. Words longer than width are split.
func wrapWords(text string, width, maxLines int) []string {
	var lines []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > width {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
