package st7789

import (
	"fmt"
	"unicode/utf8"

	"github.com/flavioheleno/m5stickc/font8x8"
	"github.com/flavioheleno/m5stickc/rgb565"
)

// Text draws s with its top left corner at (x, y) using the 8x8 font.
//
// The whole row of glyphs is composed in the scratch buffer and sent with a
// single window and write, so len(s) * 128 bytes must fit the buffer;
// otherwise ErrBufferTooSmall is returned before anything is sent.
func (d *Dev) Text(s string, x, y int, fg, bg rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return nil
	}
	width := n * font8x8.Width
	size := width * font8x8.Height * pixelSize
	if size > len(d.buf.b) {
		return fmt.Errorf("%w: %q needs %d bytes, have %d", ErrBufferTooSmall, s, size, len(d.buf.b))
	}

	d.buf.fill(bg)
	b := d.buf.b[:size]
	col := 0
	for _, r := range s {
		g := font8x8.Glyph(r)
		for row := 0; row < font8x8.Height; row++ {
			for bit := 0; bit < font8x8.Width; bit++ {
				if font8x8.Set(g, bit, row) {
					d.buf.put(b[(row*width+col+bit)*pixelSize:], fg)
				}
			}
		}
		col += font8x8.Width
	}
	return d.BlitBuffer(b, x, y, width, font8x8.Height)
}
