// Package dht12 reads the DHT12 temperature and humidity sensor over I²C,
// as found in the M5Stack ENV unit.
package dht12

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flavioheleno/m5stickc/internal/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the fixed I²C address of the DHT12.
const DefaultAddr = 0x5C

// ErrChecksum is returned when a reading fails its checksum.
var ErrChecksum = errors.New("dht12: checksum mismatch")

// Opts holds the configuration options.
type Opts struct {
	Addr uint16 // Default: DefaultAddr
}

// Dev is a handle to a DHT12. It implements physic.SenseEnv.
type Dev struct {
	d i2c.Dev

	mu sync.Mutex // Serializes bus access

	smu  sync.Mutex // Guards stop
	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a DHT12 on bus. No transfer happens until the first Sense.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	addr := uint16(DefaultAddr)
	if opts != nil && opts.Addr != 0 {
		addr = opts.Addr
	}
	return &Dev{d: i2c.Dev{Bus: bus, Addr: addr}}, nil
}

// Sense reads temperature and relative humidity. Pressure is left as is.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b [5]byte
	if err := d.d.Tx([]byte{0x00}, b[:]); err != nil {
		return fmt.Errorf("dht12: %w", err)
	}
	return decode(b, e)
}

func decode(b [5]byte, e *physic.Env) error {
	if b[0]+b[1]+b[2]+b[3] != b[4] {
		return fmt.Errorf("%w: got %#02x for % x", ErrChecksum, b[4], b[:4])
	}
	e.Humidity = physic.RelativeHumidity(b[0])*physic.PercentRH + physic.RelativeHumidity(b[1])*physic.PercentRH/10
	t := physic.Temperature(b[2]&0x7F)*physic.Kelvin + physic.Temperature(b[3]&0x7F)*100*physic.MilliKelvin
	// Bit 7 of the integer part is the sign.
	if b[2]&0x80 != 0 {
		t = -t
	}
	e.Temperature = physic.ZeroCelsius + t
	return nil
}

// SenseContinuous reads every interval until Halt. The first reading is
// taken right away. Sensing stops at the first error, which is logged.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("dht12: invalid interval %s", interval)
	}
	d.smu.Lock()
	defer d.smu.Unlock()
	d.halt()

	c := make(chan physic.Env)
	stop := make(chan struct{})
	d.stop = stop
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(c)
		d.sensing(interval, c, stop)
	}()
	return c, nil
}

func (d *Dev) sensing(interval time.Duration, c chan<- physic.Env, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		var e physic.Env
		if err := d.Sense(&e); err != nil {
			log.Error("dht12: sensing stopped", err, "dev", d)
			return
		}
		select {
		case c <- e:
		case <-stop:
			return
		}
		select {
		case <-t.C:
		case <-stop:
			return
		}
	}
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 100 * physic.MilliKelvin
	e.Humidity = physic.PercentRH / 10
	e.Pressure = 0
}

// Halt stops continuous sensing, if running.
func (d *Dev) Halt() error {
	d.smu.Lock()
	defer d.smu.Unlock()
	d.halt()
	return nil
}

func (d *Dev) halt() {
	if d.stop == nil {
		return
	}
	close(d.stop)
	d.stop = nil
	d.wg.Wait()
}

func (d *Dev) String() string {
	return fmt.Sprintf("DHT12{%s}", &d.d)
}

var _ physic.SenseEnv = &Dev{}
