package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/five82/cadence/internal/qrlogin"
)

const (
	quietZone     = 2 // modules
	finderModules = 7
	minModules    = 21
)

// RenderText draws code as half-block text for a terminal. The payload URL
// is re-encoded when present; image-only codes are sampled from the PNG.
func RenderText(code qrlogin.Code) (string, error) {
	var (
		bits [][]bool
		err  error
	)
	if url := strings.TrimSpace(code.URL); url != "" {
		bits, err = bitmapFromURL(url)
	} else {
		var data []byte
		data, err = code.PNG()
		if err == nil {
			bits, err = bitmapFromPNG(data)
		}
	}
	if err != nil {
		return "", err
	}
	return halfBlocks(withQuietZone(bits, quietZone)), nil
}

func bitmapFromURL(url string) ([][]bool, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode code url: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// bitmapFromPNG recovers the module grid from a rendered code. The module
// size is measured on the top-left finder pattern, which is always seven
// modules wide.
func bitmapFromPNG(data []byte) ([][]bool, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode code png: %w", err)
	}
	bounds := img.Bounds()

	minX, minY, maxX, maxY := bounds.Max.X, bounds.Max.Y, -1, -1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isDark(img, x, y) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return nil, fmt.Errorf("code png has no dark modules")
	}

	run := 0
	for x := minX; x <= maxX && isDark(img, x, minY); x++ {
		run++
	}
	module := float64(run) / finderModules
	if module < 1 {
		return nil, fmt.Errorf("code png modules are smaller than a pixel")
	}
	width := float64(maxX - minX + 1)
	n := snapVersion(int(math.Round(width / module)))
	if n < minModules {
		return nil, fmt.Errorf("code png is %d modules wide, want at least %d", n, minModules)
	}
	module = width / float64(n)

	bits := make([][]bool, n)
	for r := range bits {
		bits[r] = make([]bool, n)
		y := minY + int((float64(r)+0.5)*module)
		for c := range bits[r] {
			x := minX + int((float64(c)+0.5)*module)
			bits[r][c] = isDark(img, x, y)
		}
	}
	return bits, nil
}

// snapVersion rounds n to the nearest symbol width, 17+4v.
func snapVersion(n int) int {
	v := int(math.Round(float64(n-17) / 4))
	return 17 + 4*v
}

func isDark(img image.Image, x, y int) bool {
	r, g, b, a := img.At(x, y).RGBA()
	if a < 0x8000 {
		return false
	}
	return (r+g+b)/3 < 0x8000
}

func withQuietZone(bits [][]bool, pad int) [][]bool {
	if len(bits) == 0 {
		return nil
	}
	width := len(bits[0]) + 2*pad
	out := make([][]bool, 0, len(bits)+2*pad)
	for i := 0; i < pad; i++ {
		out = append(out, make([]bool, width))
	}
	for _, row := range bits {
		padded := make([]bool, width)
		copy(padded[pad:], row)
		out = append(out, padded)
	}
	for i := 0; i < pad; i++ {
		out = append(out, make([]bool, width))
	}
	return out
}

// halfBlocks packs two module rows per text line. Light modules are drawn
// filled so the code scans on dark terminals.
func halfBlocks(bits [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bits); y += 2 {
		for x := range bits[y] {
			top := !bits[y][x]
			bottom := false
			if y+1 < len(bits) {
				bottom = !bits[y+1][x]
			}
			switch {
			case top && bottom:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bottom:
				b.WriteString("▄")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
