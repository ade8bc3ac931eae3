package st7789

import "fmt"

// SetWindow selects the inclusive rectangle (x0, y0)-(x1, y1) as the target
// of the next pixel stream and opens a memory write.
//
// Both axes are checked before any command is sent; an invalid window
// returns ErrWindowOutOfBounds and leaves the controller untouched.
func (d *Dev) SetWindow(x0, y0, x1, y1 int) error {
	w, h := d.rect.Dx(), d.rect.Dy()
	if x0 < 0 || x0 > x1 || x1 >= w {
		return fmt.Errorf("%w: columns %d-%d on %d pixel wide panel", ErrWindowOutOfBounds, x0, x1, w)
	}
	if y0 < 0 || y0 > y1 || y1 >= h {
		return fmt.Errorf("%w: rows %d-%d on %d pixel high panel", ErrWindowOutOfBounds, y0, y1, h)
	}

	var b [4]byte
	d.encodeRange(b[:], x0+d.origin.X, x1+d.origin.X)
	if err := d.t.Command(cmdCASET, b[:]); err != nil {
		return err
	}
	d.encodeRange(b[:], y0+d.origin.Y, y1+d.origin.Y)
	if err := d.t.Command(cmdRASET, b[:]); err != nil {
		return err
	}
	return d.t.Command(cmdRAMWR, nil)
}

// encodeRange writes the (start, end) address pair as two big-endian uint16.
func (d *Dev) encodeRange(b []byte, start, end int) {
	b[0] = byte(start >> 8)
	b[1] = byte(start)
	b[2] = byte(end >> 8)
	b[3] = byte(end)
}
