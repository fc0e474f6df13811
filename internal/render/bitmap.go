package render

import (
	"image"
	"time"

	"sup2srt/internal/pgs"
)

// Bitmap is an RGBA image with 8 bits per channel.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// Subtitle is a rendered bitmap with its display interval. End is zero for
// a subtitle the stream never explicitly cleared.
type Subtitle struct {
	Begin  time.Duration
	End    time.Duration
	Bitmap Bitmap
}

// Image wraps the bitmap's pixel data as an image.RGBA without copying.
func (b Bitmap) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Crop returns the sub-rectangle with top-left corner (x, y), clamped to
// the bitmap's bounds. The result's Width and Height always describe the
// pixels actually copied; a rectangle entirely outside the bitmap yields an
// empty bitmap.
func (b Bitmap) Crop(x, y, width, height int) Bitmap {
	if x < 0 {
		width += x
		x = 0
	}
	if y < 0 {
		height += y
		y = 0
	}
	maxX := min(x+width, b.Width)
	maxY := min(y+height, b.Height)
	if x >= maxX || y >= maxY {
		return Bitmap{}
	}

	out := Bitmap{Width: maxX - x, Height: maxY - y}
	out.Pix = make([]byte, 0, 4*out.Width*out.Height)
	for row := y; row < maxY; row++ {
		begin := (row*b.Width + x) * 4
		end := (row*b.Width + maxX) * 4
		out.Pix = append(out.Pix, b.Pix[begin:end]...)
	}
	return out
}

// Palette maps the 256 PGS palette slots to premapped RGBA colors. Slots a
// PDS never defines stay fully transparent.
type Palette [256][4]byte

// NewPalette builds a palette from a PDS. Entry colors are converted from
// YCrCb using BT.709 coefficients, which Blu-ray graphics use for HD video.
func NewPalette(pds pgs.PDS) Palette {
	var p Palette
	for _, e := range pds.Entries {
		r, g, b := ycbcrToRGB(e.Luminance, e.ColorDiffBlu, e.ColorDiffRed)
		p[e.ID] = [4]byte{r, g, b, e.Alpha}
	}
	return p
}

// Render expands indexed pixels through the palette into a bitmap.
func (p Palette) Render(indexed []byte, width, height int) Bitmap {
	pix := make([]byte, 0, len(indexed)*4)
	for _, idx := range indexed {
		c := p[idx]
		pix = append(pix, c[0], c[1], c[2], c[3])
	}
	return Bitmap{Width: width, Height: height, Pix: pix}
}

func ycbcrToRGB(y, cb, cr uint8) (uint8, uint8, uint8) {
	yf := float64(y)
	cbf := float64(cb) - 128
	crf := float64(cr) - 128
	r := yf + 1.5748*crf
	g := yf - 0.1873*cbf - 0.4681*crf
	b := yf + 1.8556*cbf
	return clampByte(r), clampByte(g), clampByte(b)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
