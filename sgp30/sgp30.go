// Package sgp30 drives the Sensirion SGP30 air quality sensor over I²C.
//
// The sensor runs a dynamic baseline compensation that needs a measurement
// every second, so New starts a sampling goroutine that keeps the latest
// reading. Call Stop when done.
//
// # Datasheet
//
// https://sensirion.com/products/catalog/SGP30/
package sgp30

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/flavioheleno/m5stickc/internal/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the fixed I²C address of the SGP30.
const DefaultAddr = 0x58

// DefaultInterval is the sampling period the baseline algorithm expects.
const DefaultInterval = time.Second

const (
	cmdInit             = 0x2003
	cmdMeasure          = 0x2008
	cmdReadBaseline     = 0x2015
	cmdWriteBaseline    = 0x201E
	cmdFeatureSet       = 0x202F
	cmdWriteAbsHumidity = 0x2061

	featureSet = 0x0022
)

var (
	// ErrNotFound is returned by New when the feature set does not match.
	ErrNotFound = errors.New("sgp30: device not found")
	// ErrChecksum is returned when a received word fails its CRC.
	ErrChecksum = errors.New("sgp30: checksum mismatch")
	// ErrOutOfRange is returned by SetAbsoluteHumidity.
	ErrOutOfRange = errors.New("sgp30: value out of range")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("sgp30: stopped")
)

// Baseline is the compensation state of the sensor. Saving it and passing
// it back through Opts skips the 12 hour early operation phase.
type Baseline struct {
	ECO2 uint16
	TVOC uint16
}

// Opts holds the configuration options.
type Opts struct {
	Addr     uint16        // Default: DefaultAddr
	Baseline *Baseline     // Restored after init when set
	Interval time.Duration // Default: DefaultInterval
}

// Dev is a handle to an SGP30.
type Dev struct {
	d     i2c.Dev
	sleep func(time.Duration)

	mu      sync.Mutex // Guards the bus and the fields below
	eco2    uint16
	tvoc    uint16
	stopped bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New probes the sensor, initializes air quality measurement and starts
// sampling. opts may be nil.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	return newDev(bus, opts, time.Sleep)
}

func newDev(bus i2c.Bus, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = DefaultAddr
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.Interval < 0 {
		return nil, fmt.Errorf("sgp30: invalid interval %s", o.Interval)
	}
	d := &Dev{
		d:     i2c.Dev{Bus: bus, Addr: o.Addr},
		sleep: sleep,
		eco2:  400,
		stop:  make(chan struct{}),
	}

	v, err := d.read(cmdFeatureSet, 1, 10*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if v[0] != featureSet {
		return nil, fmt.Errorf("%w: feature set %#04x", ErrNotFound, v[0])
	}
	if err := d.write(cmdInit); err != nil {
		return nil, err
	}
	if o.Baseline != nil {
		if err := d.write(cmdWriteBaseline, o.Baseline.ECO2, o.Baseline.TVOC); err != nil {
			return nil, err
		}
	}

	d.wg.Add(1)
	go d.loop(o.Interval)
	return d, nil
}

func (d *Dev) loop(interval time.Duration) {
	defer d.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
		}
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		v, err := d.read(cmdMeasure, 2, 12*time.Millisecond)
		if err == nil {
			d.eco2, d.tvoc = v[0], v[1]
		}
		d.mu.Unlock()
		if err != nil {
			log.Error("sgp30: measure failed", err, "dev", &d.d)
		}
	}
}

// Measure returns the latest CO₂ equivalent (ppm) and total VOC (ppb).
// Until the first sample completes it returns 400 and 0.
func (d *Dev) Measure() (eco2, tvoc uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eco2, d.tvoc
}

// Baseline reads the current compensation baseline.
func (d *Dev) Baseline() (Baseline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return Baseline{}, ErrStopped
	}
	v, err := d.read(cmdReadBaseline, 2, 10*time.Millisecond)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{ECO2: v[0], TVOC: v[1]}, nil
}

// SetAbsoluteHumidity enables on-chip humidity compensation. gm3 is in
// g/m³ and must be within (0, 256). Use AbsoluteHumidity to derive it from
// a temperature and relative humidity reading.
func (d *Dev) SetAbsoluteHumidity(gm3 float64) error {
	// 8.8 fixed point.
	v := int(gm3 * 256)
	if v < 1 || v > 0xFFFF {
		return fmt.Errorf("%w: %g g/m³", ErrOutOfRange, gm3)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	return d.write(cmdWriteAbsHumidity, uint16(v))
}

// Stop ends sampling. It is safe to call more than once.
func (d *Dev) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stop)
	d.mu.Unlock()
	d.wg.Wait()
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	d.Stop()
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("SGP30{%s}", &d.d)
}

// read sends cmd, waits for the conversion and reads n CRC-protected words.
func (d *Dev) read(cmd uint16, n int, delay time.Duration) ([]uint16, error) {
	var c [2]byte
	binary.BigEndian.PutUint16(c[:], cmd)
	if err := d.d.Tx(c[:], nil); err != nil {
		return nil, fmt.Errorf("sgp30: %#04x: %w", cmd, err)
	}
	d.sleep(delay)
	b := make([]byte, 3*n)
	if err := d.d.Tx(nil, b); err != nil {
		return nil, fmt.Errorf("sgp30: %#04x: %w", cmd, err)
	}
	out := make([]uint16, n)
	for i := range out {
		w := b[3*i : 3*i+3]
		if crc8(w[:2]) != w[2] {
			return nil, fmt.Errorf("%w: word %d of %#04x", ErrChecksum, i, cmd)
		}
		out[i] = binary.BigEndian.Uint16(w)
	}
	return out, nil
}

// write sends cmd followed by CRC-protected words.
func (d *Dev) write(cmd uint16, words ...uint16) error {
	b := make([]byte, 2, 2+3*len(words))
	binary.BigEndian.PutUint16(b, cmd)
	for _, w := range words {
		b = binary.BigEndian.AppendUint16(b, w)
		b = append(b, crc8(b[len(b)-2:]))
	}
	if err := d.d.Tx(b, nil); err != nil {
		return fmt.Errorf("sgp30: %#04x: %w", cmd, err)
	}
	return nil
}

// crc8 is the Sensirion CRC: polynomial 0x31, init 0xFF, no reflection.
func crc8(b []byte) byte {
	crc := byte(0xFF)
	for _, v := range b {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// AbsoluteHumidity converts a temperature and relative humidity to
// absolute humidity in g/m³, for SetAbsoluteHumidity.
func AbsoluteHumidity(t physic.Temperature, rh physic.RelativeHumidity) float64 {
	c := float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
	r := float64(rh) / float64(physic.PercentRH)
	return 216.7 * (r / 100 * 6.112 * math.Exp(17.62*c/(243.12+c)) / (273.15 + c))
}
