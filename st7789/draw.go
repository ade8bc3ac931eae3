package st7789

import (
	"fmt"

	"github.com/flavioheleno/m5stickc/rgb565"
)

// Pixel sets a single pixel.
func (d *Dev) Pixel(x, y int, c rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	return d.pixel(x, y, c)
}

func (d *Dev) pixel(x, y int, c rgb565.Color) error {
	if err := d.SetWindow(x, y, x, y); err != nil {
		return err
	}
	var b [pixelSize]byte
	d.buf.put(b[:], c)
	return d.t.Data(b[:])
}

// HLine draws a horizontal line of length pixels starting at (x, y).
func (d *Dev) HLine(x, y, length int, c rgb565.Color) error {
	return d.FillRect(x, y, length, 1, c)
}

// VLine draws a vertical line of length pixels starting at (x, y).
func (d *Dev) VLine(x, y, length int, c rgb565.Color) error {
	return d.FillRect(x, y, 1, length, c)
}

// Rect draws the outline of a w x h rectangle. The interior is left as is.
func (d *Dev) Rect(x, y, w, h int, c rgb565.Color) error {
	if err := d.HLine(x, y, w, c); err != nil {
		return err
	}
	if err := d.VLine(x, y, h, c); err != nil {
		return err
	}
	if err := d.VLine(x+w-1, y, h, c); err != nil {
		return err
	}
	return d.HLine(x, y+h-1, w, c)
}

// FillRect fills a w x h rectangle with c.
//
// The scratch buffer is filled with c once and streamed as many times as
// needed, followed by a partial buffer for the remainder. An empty
// rectangle sends nothing.
func (d *Dev) FillRect(x, y, w, h int, c rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	n, rem := d.buf.chunks(w * h * pixelSize)
	d.buf.fill(c)

	if err := d.SetWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := d.t.Data(d.buf.b); err != nil {
			return err
		}
	}
	if rem > 0 {
		return d.t.Data(d.buf.b[:rem])
	}
	return nil
}

// Fill fills the whole display with c.
func (d *Dev) Fill(c rgb565.Color) error {
	return d.FillRect(0, 0, d.rect.Dx(), d.rect.Dy(), c)
}

// BlitBuffer writes w x h big-endian RGB565 pixels at (x, y) in a single
// transfer. buf must hold exactly w * h * 2 bytes.
func (d *Dev) BlitBuffer(buf []byte, x, y, w, h int) error {
	if d.halted {
		return ErrHalted
	}
	if w <= 0 || h <= 0 || len(buf) != w*h*pixelSize {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrInvalidBuffer, len(buf), w, h)
	}
	if err := d.SetWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	return d.t.Data(buf)
}

// Line draws a one pixel wide line from (x0, y0) to (x1, y1), both ends
// included.
//
// Every pixel is a separate window and write.
func (d *Dev) Line(x0, y0, x1, y1 int, c rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	dx := x1 - x0
	dy := abs(y1 - y0)
	err := dx / 2
	ystep := -1
	if y0 < y1 {
		ystep = 1
	}
	for x, y := x0, y0; x <= x1; x++ {
		px, py := x, y
		if steep {
			px, py = y, x
		}
		if e := d.pixel(px, py, c); e != nil {
			return e
		}
		err -= dy
		if err < 0 {
			y += ystep
			err += dx
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
