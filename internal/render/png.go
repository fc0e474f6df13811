package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG encodes the bitmap as-is, preserving transparency.
func EncodePNG(b Bitmap) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeForOCR prepares a subtitle bitmap for text recognition: the image is
// composited over an opaque white background so transparent regions do not
// read as black, then upscaled by an integer factor with Catmull-Rom
// resampling. Subtitle glyphs are small at native resolution; Tesseract does
// noticeably better on the enlarged frame.
func EncodeForOCR(b Bitmap, scale int) ([]byte, error) {
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("empty bitmap %dx%d", b.Width, b.Height)
	}
	if scale < 1 {
		scale = 1
	}

	flat := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), b.Image(), image.Point{}, draw.Over)

	out := flat
	if scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, b.Width*scale, b.Height*scale))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), flat, flat.Bounds(), xdraw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
