package st7789

import (
	"fmt"
	"time"

	"github.com/flavioheleno/m5stickc/rgb565"
	"periph.io/x/conn/v3/gpio"
)

// State is a step of the power-up sequence.
type State int

// Power-up states, in the order they are run.
const (
	Uninitialized State = iota
	HardwareReset
	SoftwareReset
	WakeFromSleep
	SetColorMode
	SetMemoryAccessMode
	SetDisplayInversion
	NormalDisplayMode
	ClearToBlack
	DisplayOn
	Active
)

var stateNames = [...]string{
	"Uninitialized",
	"HardwareReset",
	"SoftwareReset",
	"WakeFromSleep",
	"SetColorMode",
	"SetMemoryAccessMode",
	"SetDisplayInversion",
	"NormalDisplayMode",
	"ClearToBlack",
	"DisplayOn",
	"Active",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Memory access control (MADCTL) flags.
const (
	madctlMY  = 0x80 // Row address order
	madctlMX  = 0x40 // Column address order
	madctlMV  = 0x20 // Row/column exchange
	madctlML  = 0x10 // Vertical refresh order
	madctlBGR = 0x08
	madctlMH  = 0x04 // Horizontal refresh order
)

var rotations = [8]byte{
	0,
	madctlMX,
	madctlMY,
	madctlMX | madctlMY,
	madctlMV,
	madctlMV | madctlMX,
	madctlMV | madctlMY,
	madctlMV | madctlMX | madctlMY,
}

// memoryAccessMode computes the MADCTL value. A mirror flag replaces the
// rotation entirely; vertical mirroring wins over horizontal.
func memoryAccessMode(rotation int, vertMirror, horzMirror, bgr bool) byte {
	v := rotations[rotation&7]
	switch {
	case vertMirror:
		v = madctlML
	case horzMirror:
		v = madctlMH
	}
	if bgr {
		v |= madctlBGR
	}
	return v
}

type powerStep struct {
	state  State
	run    func() error
	settle time.Duration
}

// State returns the current power-up state.
func (d *Dev) State() State {
	return d.state
}

// Init runs the power-up sequence: hardware reset, software reset, wake,
// color and memory access setup, inversion, normal mode, clear, display on.
//
// It runs at most once per Dev; a failed step is not retried and a second
// call returns ErrAlreadyInitialized.
func (d *Dev) Init() error {
	if d.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	steps := []powerStep{
		{HardwareReset, d.hardReset, 0},
		{SoftwareReset, d.command(cmdSWRESET), 120 * time.Millisecond},
		{WakeFromSleep, d.command(cmdSLPOUT), 10 * time.Millisecond},
		{SetColorMode, d.command(cmdCOLMOD, d.colorMode&0x77), 0},
		{SetMemoryAccessMode, d.command(cmdMADCTL, d.madctl), 0},
		{SetDisplayInversion, d.command(cmdINVON), 10 * time.Millisecond},
		{NormalDisplayMode, d.command(cmdNORON), 10 * time.Millisecond},
		{ClearToBlack, func() error { return d.Fill(rgb565.Black) }, 0},
		{DisplayOn, d.command(cmdDISPON), 10 * time.Millisecond},
	}
	for _, s := range steps {
		d.state = s.state
		if err := s.run(); err != nil {
			return fmt.Errorf("st7789: %s: %w", s.state, err)
		}
		if s.settle > 0 {
			d.sleep(s.settle)
		}
	}
	d.state = Active
	return nil
}

func (d *Dev) command(cmd byte, data ...byte) func() error {
	return func() error {
		return d.t.Command(cmd, data)
	}
}

// hardReset pulses the reset line, holding chip select when the transport
// drives it.
func (d *Dev) hardReset() (err error) {
	if d.rst == nil {
		return nil
	}
	if cs, ok := d.t.(chipSelector); ok {
		if err := cs.Select(true); err != nil {
			return err
		}
		defer func() {
			if e := cs.Select(false); err == nil {
				err = e
			}
		}()
	}
	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.rst.Out(l); err != nil {
			return err
		}
		d.sleep(10 * time.Millisecond)
	}
	return nil
}
