package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pngBytes encodes a small gradient PNG; shade varies the pixels
func pngBytes(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x*8) + shade, G: uint8(y * 8), B: shade, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testImage(t *testing.T, filename string) *Image {
	t.Helper()
	img, err := NewImage(filename, pngBytes(t, 32, 24, 0))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}
