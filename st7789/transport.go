package st7789

import (
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Transport carries command and data transactions to the controller.
//
// Implementations must send payload bytes in the order given. Errors are
// returned to the caller unchanged; the driver never retries.
type Transport interface {
	// Command sends cmd with D/C low, then data (if any) with D/C high,
	// inside a single chip select assertion.
	Command(cmd byte, data []byte) error
	// Data sends data with D/C high.
	Data(data []byte) error
}

// chipSelector is implemented by transports that drive chip select
// themselves. It is used to hold the bus during the hardware reset pulse.
type chipSelector interface {
	Select(selected bool) error
}

// SPITransport is a Transport over a periph.io SPI connection with a D/C
// pin and an optional software chip select.
type SPITransport struct {
	c  spi.Conn
	dc gpio.PinOut
	cs gpio.PinOut // Optional, active low
}

// NewSPITransport returns a Transport writing to c. cs may be nil when the
// SPI controller asserts chip select on its own.
func NewSPITransport(c spi.Conn, dc, cs gpio.PinOut) *SPITransport {
	return &SPITransport{c: c, dc: dc, cs: cs}
}

// Command implements Transport.
func (s *SPITransport) Command(cmd byte, data []byte) (err error) {
	if err := s.Select(true); err != nil {
		return err
	}
	defer func() {
		if e := s.Select(false); err == nil {
			err = e
		}
	}()
	if err := s.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := s.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return s.send(data)
}

// Data implements Transport.
func (s *SPITransport) Data(data []byte) (err error) {
	if err := s.Select(true); err != nil {
		return err
	}
	defer func() {
		if e := s.Select(false); err == nil {
			err = e
		}
	}()
	return s.send(data)
}

// Select drives the chip select pin, if any.
func (s *SPITransport) Select(selected bool) error {
	if s.cs == nil {
		return nil
	}
	// Active low.
	return s.cs.Out(gpio.Level(!selected))
}

// String returns the underlying connection name.
func (s *SPITransport) String() string {
	return s.c.String()
}

func (s *SPITransport) send(data []byte) error {
	if err := s.dc.Out(gpio.High); err != nil {
		return err
	}
	// spidev caps a single transfer; split large blits accordingly.
	chunk := len(data)
	if l, ok := s.c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		chunk = l.MaxTxSize()
	}
	for len(data) > chunk {
		if err := s.c.Tx(data[:chunk], nil); err != nil {
			return err
		}
		data = data[chunk:]
	}
	return s.c.Tx(data, nil)
}
