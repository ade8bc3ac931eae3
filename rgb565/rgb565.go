package rgb565

import (
	"image"
	"image/color"
)

// Color is a packed 5-6-5 RGB value.
type Color uint16

// Common colors.
const (
	Black   Color = 0x0000
	Blue    Color = 0x001F
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Cyan    Color = 0x07FF
	Magenta Color = 0xF81F
	Yellow  Color = 0xFFE0
	White   Color = 0xFFFF
)

// New packs 8-bit channels into a Color, dropping the low bits.
func New(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGBA converts the Color to 16-bit per channel RGBA.
// Channels are widened by bit replication so that full scale maps to 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r8 := r5<<3 | r5>>2
	g8 := g6<<2 | g6>>4
	b8 := b5<<3 | b5>>2
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

// Bytes returns the big-endian wire encoding of c.
func (c Color) Bytes() [2]byte {
	return [2]byte{byte(c >> 8), byte(c)}
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color.
var Model = color.ModelFunc(toRGB565)

// Image is an RGB565 image with big-endian pixel storage, 2 bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, row-major, big-endian
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the Color of the pixel at (x, y).
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.PixOffset(x, y)
	return Color(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the pixel at (x, y) without color conversion.
func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
