package st7789

import (
	"image"
	"image/color"

	"github.com/flavioheleno/m5stickc/rgb565"
	"tinygo.org/x/drivers"
)

// Displayer returns a view of d implementing drivers.Displayer, so TinyGo
// graphics helpers (tinydraw, tinyfont) can draw on the panel.
//
// SetPixel writes through immediately and ignores pixels outside the panel,
// as TinyGo drivers do. Bus errors from SetPixel are kept and returned by
// the next Display call.
func (d *Dev) Displayer() drivers.Displayer {
	return &displayer{d: d}
}

type displayer struct {
	d   *Dev
	err error
}

func (p *displayer) Size() (x, y int16) {
	return int16(p.d.rect.Dx()), int16(p.d.rect.Dy())
}

func (p *displayer) SetPixel(x, y int16, c color.RGBA) {
	if p.err != nil || !(image.Point{X: int(x), Y: int(y)}.In(p.d.rect)) {
		return
	}
	p.err = p.d.Pixel(int(x), int(y), rgb565.New(c.R, c.G, c.B))
}

func (p *displayer) Display() error {
	err := p.err
	p.err = nil
	return err
}
