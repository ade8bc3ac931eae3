package st7789

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/flavioheleno/m5stickc/rgb565"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var errBus = errors.New("bus fault")

// op is one recorded transaction. Data-only transactions have hasCmd false.
type op struct {
	cmd    byte
	hasCmd bool
	data   []byte
}

// recorder is a Transport that logs every transaction.
type recorder struct {
	ops []op
	// failCmd makes Command fail when sent this command (failCmd > 0).
	failCmd byte
}

func (r *recorder) Command(cmd byte, data []byte) error {
	r.ops = append(r.ops, op{cmd: cmd, hasCmd: true, data: clone(data)})
	if r.failCmd != 0 && cmd == r.failCmd {
		return errBus
	}
	return nil
}

func (r *recorder) Data(data []byte) error {
	r.ops = append(r.ops, op{data: clone(data)})
	return nil
}

// commands returns the command bytes in order.
func (r *recorder) commands() []byte {
	var out []byte
	for _, o := range r.ops {
		if o.hasCmd {
			out = append(out, o.cmd)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.ops = nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// panel simulates the controller RAM: it honors CASET, RASET and RAMWR and
// stores streamed pixels in row-major order within the window.
type panel struct {
	recorder
	ram     map[image.Point]rgb565.Color
	writes  []image.Point // RAM coordinates in write order
	x0, x1  int
	y0, y1  int
	x, y    int
	writing bool
	carry   []byte
}

func newPanel() *panel {
	return &panel{ram: map[image.Point]rgb565.Color{}}
}

func (p *panel) Command(cmd byte, data []byte) error {
	if err := p.recorder.Command(cmd, data); err != nil {
		return err
	}
	p.writing = false
	p.carry = nil
	switch cmd {
	case cmdCASET:
		p.x0, p.x1 = int(data[0])<<8|int(data[1]), int(data[2])<<8|int(data[3])
	case cmdRASET:
		p.y0, p.y1 = int(data[0])<<8|int(data[1]), int(data[2])<<8|int(data[3])
	case cmdRAMWR:
		p.writing = true
		p.x, p.y = p.x0, p.y0
	}
	return nil
}

func (p *panel) Data(data []byte) error {
	if err := p.recorder.Data(data); err != nil {
		return err
	}
	if !p.writing {
		return nil
	}
	b := append(p.carry, data...)
	for len(b) >= 2 {
		pt := image.Pt(p.x, p.y)
		p.ram[pt] = rgb565.Color(uint16(b[0])<<8 | uint16(b[1]))
		p.writes = append(p.writes, pt)
		b = b[2:]
		p.x++
		if p.x > p.x1 {
			p.x = p.x0
			p.y++
		}
	}
	p.carry = clone(b)
	return nil
}

// levelPin is a gpiotest.Pin that keeps every level it was driven to.
type levelPin struct {
	gpiotest.Pin
	levels []gpio.Level
}

func (p *levelPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

// sleeps records requested delays instead of waiting.
type sleeps []time.Duration

func (s *sleeps) sleep(d time.Duration) {
	*s = append(*s, d)
}

// newBare returns an uninitialized Dev of w x h pixels at RAM origin (0, 0).
func newBare(t *testing.T, tr Transport, w, h, bufSize int) *Dev {
	t.Helper()
	var s sleeps
	d, err := newDev(tr, &Opts{W: w, H: h, Origin: &image.Point{}, BufferSize: bufSize, NoInit: true}, s.sleep)
	if err != nil {
		t.Fatalf("newDev() error = %v", err)
	}
	return d
}
