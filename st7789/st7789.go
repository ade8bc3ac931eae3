package st7789

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/flavioheleno/m5stickc/rgb565"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Controller commands.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// Color modes for Opts.ColorMode. The interface format (low nibble) is
// OR'd with the RGB interface format (high nibble).
const (
	ColorMode65K   byte = 0x50
	ColorMode262K  byte = 0x60
	ColorMode12bit byte = 0x03
	ColorMode16bit byte = 0x05
	ColorMode18bit byte = 0x06
	ColorMode16M   byte = 0x07
)

// DefaultBufferSize is the scratch buffer capacity used when Opts.BufferSize
// is zero.
const DefaultBufferSize = 512

const pixelSize = 2

var (
	// ErrInvalidConfiguration is returned by the constructors for options
	// the panel cannot be driven with.
	ErrInvalidConfiguration = errors.New("st7789: invalid configuration")
	// ErrBufferTooSmall is returned when text does not fit the scratch buffer.
	ErrBufferTooSmall = errors.New("st7789: buffer too small")
	// ErrWindowOutOfBounds is returned when a drawing window falls outside
	// the panel. Nothing is sent to the controller.
	ErrWindowOutOfBounds = errors.New("st7789: window out of bounds")
	// ErrInvalidBuffer is returned when a pixel buffer does not match the
	// size of its destination.
	ErrInvalidBuffer = errors.New("st7789: invalid buffer size")
	// ErrHalted is returned by drawing calls after Halt.
	ErrHalted = errors.New("st7789: halted")
	// ErrAlreadyInitialized is returned by Init when the power-up sequence
	// already ran.
	ErrAlreadyInitialized = errors.New("st7789: already initialized")
)

// Opts is the configuration for the ST7789 display.
type Opts struct {
	// Display dimensions in pixels
	W int
	H int

	// Origin is the RAM address of logical pixel (0, 0). When nil, only the
	// 240x240 (0, 0) and 135x240 (52, 40) panels are accepted.
	Origin *image.Point

	// Memory access control
	Rotation   int  // 0-7: mirror and 90° combinations, 4 is a plain 90° rotation
	VertMirror bool // Overrides Rotation with vertical mirroring
	HorzMirror bool // Overrides Rotation with horizontal mirroring (VertMirror wins)
	BGR        bool // Panel color order is BGR

	ColorMode  byte // Default: ColorMode65K | ColorMode16bit
	BufferSize int  // Scratch buffer bytes (default: 512, must be even)

	// Optional hardware reset and chip select pins
	RST gpio.PinOut
	CS  gpio.PinOut // Only used by NewSPI; nil when the SPI controller drives CS

	// NoInit skips the power-up sequence; the caller must run Init once.
	NoInit bool
}

// Dev is the device handle for the ST7789 display.
type Dev struct {
	// Communication
	t   Transport
	rst gpio.PinOut

	// Display geometry
	rect   image.Rectangle
	origin image.Point

	// Memory access
	colorMode byte
	madctl    byte

	buf *scratch

	state  State
	halted bool

	sleep func(time.Duration)
}

// NewSPI creates a new ST7789 device connected via SPI.
//
// The SPI port is configured for 40MHz, Mode2 (CPOL=1, CPHA=0), 8-bit
// transfers. The dc (Data/Command) GPIO pin must be provided and configured
// as an output.
//
// opts can be nil to use defaults (135x240 panel of the M5StickC Plus).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = M5StickCPlus()
	}
	// Fail before touching the bus.
	if _, err := validate(opts); err != nil {
		return nil, err
	}
	c, err := p.Connect(40*physic.MegaHertz, spi.Mode2, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: failed to connect SPI: %w", err)
	}
	return New(NewSPITransport(c, dc, opts.CS), opts)
}

// New creates a new ST7789 device over an already configured Transport.
// Unless opts.NoInit is set, the power-up sequence runs before New returns.
func New(t Transport, opts *Opts) (*Dev, error) {
	return newDev(t, opts, time.Sleep)
}

// M5StickCPlus returns the options matching the M5StickC Plus panel wiring.
func M5StickCPlus() *Opts {
	return &Opts{
		W:          135,
		H:          240,
		Rotation:   4,
		VertMirror: true,
		HorzMirror: true,
	}
}

func newDev(t Transport, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = M5StickCPlus()
	}
	origin, err := validate(opts)
	if err != nil {
		return nil, err
	}

	size := opts.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}
	colorMode := opts.ColorMode
	if colorMode == 0 {
		colorMode = ColorMode65K | ColorMode16bit
	}

	d := &Dev{
		t:         t,
		rst:       opts.RST,
		rect:      image.Rect(0, 0, opts.W, opts.H),
		origin:    origin,
		colorMode: colorMode,
		madctl:    memoryAccessMode(opts.Rotation, opts.VertMirror, opts.HorzMirror, opts.BGR),
		buf:       newScratch(size),
		sleep:     sleep,
	}

	if opts.NoInit {
		return d, nil
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// validate checks opts and returns the RAM origin to use.
func validate(opts *Opts) (image.Point, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return image.Point{}, fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidConfiguration, opts.W, opts.H)
	}
	if opts.BufferSize < 0 || opts.BufferSize%pixelSize != 0 {
		return image.Point{}, fmt.Errorf("%w: buffer size must be a positive multiple of %d, got %d", ErrInvalidConfiguration, pixelSize, opts.BufferSize)
	}
	if opts.Origin != nil {
		if opts.Origin.X < 0 || opts.Origin.Y < 0 {
			return image.Point{}, fmt.Errorf("%w: negative origin %v", ErrInvalidConfiguration, *opts.Origin)
		}
		return *opts.Origin, nil
	}
	switch {
	case opts.W == 240 && opts.H == 240:
		return image.Point{}, nil
	case opts.W == 135 && opts.H == 240:
		return image.Point{X: 52, Y: 40}, nil
	}
	return image.Point{}, fmt.Errorf("%w: %dx%d panel needs an explicit origin", ErrInvalidConfiguration, opts.W, opts.H)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// BufferSize returns the scratch buffer capacity in bytes.
func (d *Dev) BufferSize() int {
	return len(d.buf.b)
}

// Write writes a full frame of big-endian RGB565 pixels.
// The data must be exactly W * H * 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.BlitBuffer(pixels, 0, 0, d.rect.Dx(), d.rect.Dy()); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws an image onto the display.
// The dst rectangle is clipped to the display; src is read starting at sp.
//
// Pixels are converted to RGB565 through the scratch buffer, so a single
// window is opened and the region is streamed in buffer-sized pieces.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	r := dst.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(dst.Min))
	dst = r

	// Fast path: the source already holds wire-format pixels for the whole frame.
	if img, ok := src.(*rgb565.Image); ok && dst == d.rect && sp == img.Rect.Min && img.Rect.Size() == d.rect.Size() {
		_, err := d.Write(img.Pix)
		return err
	}

	if err := d.SetWindow(dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1); err != nil {
		return err
	}
	b := d.buf.b
	n := 0
	for y := 0; y < dst.Dy(); y++ {
		for x := 0; x < dst.Dx(); x++ {
			c := rgb565.Model.Convert(src.At(sp.X+x, sp.Y+y)).(rgb565.Color)
			d.buf.put(b[n:], c)
			n += pixelSize
			if n == len(b) {
				if err := d.t.Data(b); err != nil {
					return err
				}
				n = 0
			}
		}
	}
	if n > 0 {
		return d.t.Data(b[:n])
	}
	return nil
}

// Invert turns display color inversion on or off.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return ErrHalted
	}
	cmd := byte(cmdINVOFF)
	if invert {
		cmd = cmdINVON
	}
	return d.t.Command(cmd, nil)
}

// Sleep enters or leaves sleep mode. Memory contents are kept while asleep.
func (d *Dev) Sleep(sleep bool) error {
	if d.halted {
		return ErrHalted
	}
	cmd := byte(cmdSLPOUT)
	if sleep {
		cmd = cmdSLPIN
	}
	return d.t.Command(cmd, nil)
}

// Halt turns the display off.
// After calling Halt, drawing calls return ErrHalted.
func (d *Dev) Halt() error {
	d.halted = true
	return d.t.Command(cmdDISPOFF, nil)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

var _ display.Drawer = &Dev{}
