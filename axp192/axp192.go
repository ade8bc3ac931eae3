// Package axp192 controls the AXP192 power management unit found on the
// M5StickC family.
//
// The PMU switches the LCD backlight (LDO2) and logic (LDO3) rails, so a
// board preset must run before the display is usable.
//
// # Datasheet
//
// http://www.x-powers.com/en.php/Info/product_detail/article_id/29
package axp192

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the fixed I²C address of the AXP192.
const DefaultAddr = 0x34

// Registers.
const (
	regPowerStatus       = 0x00
	regExtenDCDC2        = 0x10
	regDCDC13LDO23       = 0x12
	regLDO23Voltage      = 0x28
	regVBUSIPSOut        = 0x30
	regPowerOffVoltage   = 0x31
	regPowerOffCtrl      = 0x32
	regCharging1         = 0x33
	regBackupBattery     = 0x35
	regPEK               = 0x36
	regBattTempHigh      = 0x39
	regIRQ3Status        = 0x46
	regACINVoltage       = 0x56
	regACINCurrent       = 0x58
	regVBUSVoltage       = 0x5A
	regVBUSCurrent       = 0x5C
	regInternalTemp      = 0x5E
	regBattPower         = 0x70
	regBattVoltage       = 0x78
	regBattChargeCurrent = 0x7A
	regBattDischarge     = 0x7C
	regAPSVoltage        = 0x7E
	regADCEnable1        = 0x82
	regADCTS             = 0x84
	regGPIO0Function     = 0x90
	regGPIO0LDOVoltage   = 0x91
)

const (
	irq3PEKShort   = 0x02
	irq3PEKLong    = 0x01
	powerOffBit    = 0x80
	notPresentByte = 0xFF
)

// ErrNotFound is returned by New when nothing answers at the address.
var ErrNotFound = errors.New("axp192: device not found")

// Preset configures the PMU rails for a specific board. It runs once, right
// after the device has been found.
type Preset func(d *Dev) error

// Opts holds the configuration options.
type Opts struct {
	Addr   uint16 // Default: DefaultAddr
	Preset Preset // Optional
}

// Dev is a handle to an AXP192.
type Dev struct {
	dev *i2c.Dev
	c   mmr.Dev8
}

// New opens the AXP192 on bus and probes it. opts may be nil.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	addr := uint16(DefaultAddr)
	var preset Preset
	if opts != nil {
		if opts.Addr != 0 {
			addr = opts.Addr
		}
		preset = opts.Preset
	}
	id := &i2c.Dev{Bus: bus, Addr: addr}
	d := &Dev{
		dev: id,
		c:   mmr.Dev8{Conn: id, Order: binary.BigEndian},
	}
	v, err := d.ReadRegister(regPowerStatus)
	if err != nil {
		return nil, err
	}
	if v == notPresentByte {
		return nil, ErrNotFound
	}
	if preset != nil {
		if err := preset(d); err != nil {
			return nil, fmt.Errorf("axp192: preset: %w", err)
		}
	}
	return d, nil
}

// M5StickCPlus powers the LCD and sensors of the M5StickC Plus: LDO2/LDO3
// at 3.0 V, all ADCs on, 500 mA VBUS limit, 4.2 V/100 mA charging and
// GPIO0 as a 3.3 V LDO for the microphone.
func M5StickCPlus(d *Dev) error {
	if err := d.WriteRegister(regLDO23Voltage, 0xCC); err != nil {
		return err
	}
	// EXTEN on, DCDC2 off.
	if err := d.WriteRegister(regExtenDCDC2, 0x04); err != nil {
		return err
	}
	if err := d.setBits(regDCDC13LDO23, 0x0D); err != nil {
		return err
	}
	for _, w := range [...]struct{ reg, val byte }{
		{regADCTS, 0xF2},           // 200 Hz, 80 µA, temp monitor, save energy
		{regADCEnable1, 0xFF},      // battery, ACIN, VBUS, APS and TS
		{regVBUSIPSOut, 0x63},      // VHOLD 4.4 V, VBUS limit 500 mA
		{regPowerOffVoltage, 0x04}, // 3.0 V
		{regCharging1, 0xC0},       // 4.2 V, 10%, 100 mA
		{regPEK, 0x1C},             // 128 ms, 1.5 s, power off 4 s
		{regBattTempHigh, 0xFC},
		{regBackupBattery, 0xA2}, // RTC backup at 3.0 V, 200 µA
		{regGPIO0LDOVoltage, 0xF0},
		{regGPIO0Function, 0x02},
	} {
		if err := d.WriteRegister(w.reg, w.val); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister reads a single register.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	v, err := d.c.ReadUint8(reg)
	if err != nil {
		return 0, fmt.Errorf("axp192: read %#02x: %w", reg, err)
	}
	return v, nil
}

// WriteRegister writes a single register.
func (d *Dev) WriteRegister(reg, v byte) error {
	if err := d.c.WriteUint8(reg, v); err != nil {
		return fmt.Errorf("axp192: write %#02x: %w", reg, err)
	}
	return nil
}

func (d *Dev) setBits(reg, bits byte) error {
	v, err := d.ReadRegister(reg)
	if err != nil {
		return err
	}
	return d.WriteRegister(reg, v|bits)
}

// adc reads a conversion result spread over consecutive registers. The
// last register holds only the low bits of the value.
func (d *Dev) adc(reg byte, n int, low uint) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := d.ReadRegister(reg + byte(i))
		if err != nil {
			return 0, err
		}
		if i == n-1 {
			v = v<<low | uint32(b)
		} else {
			v = v<<8 | uint32(b)
		}
	}
	return v, nil
}

func (d *Dev) voltage(reg byte, step physic.ElectricPotential) (physic.ElectricPotential, error) {
	v, err := d.adc(reg, 2, 4)
	return physic.ElectricPotential(v) * step, err
}

func (d *Dev) current(reg byte, low uint, step physic.ElectricCurrent) (physic.ElectricCurrent, error) {
	v, err := d.adc(reg, 2, low)
	return physic.ElectricCurrent(v) * step, err
}

// BatteryVoltage returns the battery voltage (1.1 mV per LSB).
func (d *Dev) BatteryVoltage() (physic.ElectricPotential, error) {
	return d.voltage(regBattVoltage, 1100*physic.MicroVolt)
}

// BatteryPower returns the instantaneous battery power (0.55 µW per LSB).
func (d *Dev) BatteryPower() (physic.Power, error) {
	v, err := d.adc(regBattPower, 3, 8)
	return physic.Power(v) * 550 * physic.NanoWatt, err
}

// BatteryChargeCurrent returns the charge current (0.5 mA per LSB).
func (d *Dev) BatteryChargeCurrent() (physic.ElectricCurrent, error) {
	return d.current(regBattChargeCurrent, 5, 500*physic.MicroAmpere)
}

// BatteryDischargeCurrent returns the discharge current (0.5 mA per LSB).
func (d *Dev) BatteryDischargeCurrent() (physic.ElectricCurrent, error) {
	return d.current(regBattDischarge, 5, 500*physic.MicroAmpere)
}

// ACINVoltage returns the ACIN voltage (1.7 mV per LSB).
func (d *Dev) ACINVoltage() (physic.ElectricPotential, error) {
	return d.voltage(regACINVoltage, 1700*physic.MicroVolt)
}

// ACINCurrent returns the ACIN current (0.625 mA per LSB).
func (d *Dev) ACINCurrent() (physic.ElectricCurrent, error) {
	return d.current(regACINCurrent, 4, 625*physic.MicroAmpere)
}

// VBUSVoltage returns the USB bus voltage (1.7 mV per LSB).
func (d *Dev) VBUSVoltage() (physic.ElectricPotential, error) {
	return d.voltage(regVBUSVoltage, 1700*physic.MicroVolt)
}

// VBUSCurrent returns the USB bus current (0.375 mA per LSB).
func (d *Dev) VBUSCurrent() (physic.ElectricCurrent, error) {
	return d.current(regVBUSCurrent, 4, 375*physic.MicroAmpere)
}

// APSVoltage returns the system supply voltage (1.4 mV per LSB).
func (d *Dev) APSVoltage() (physic.ElectricPotential, error) {
	return d.voltage(regAPSVoltage, 1400*physic.MicroVolt)
}

// InternalTemperature returns the die temperature (0.1 °C per LSB, 0 is
// -144.7 °C).
func (d *Dev) InternalTemperature() (physic.Temperature, error) {
	v, err := d.adc(regInternalTemp, 2, 4)
	if err != nil {
		return 0, err
	}
	return physic.ZeroCelsius + physic.Temperature(v)*100*physic.MilliKelvin - 144700*physic.MilliKelvin, nil
}

// PEKButton reports whether the power key was pressed since the last call.
// With long set, only long presses count. Both press flags are cleared.
func (d *Dev) PEKButton(long bool) (bool, error) {
	v, err := d.ReadRegister(regIRQ3Status)
	if err != nil {
		return false, err
	}
	v &= irq3PEKShort | irq3PEKLong
	// Flags are write-one-to-clear.
	if err := d.WriteRegister(regIRQ3Status, v); err != nil {
		return false, err
	}
	if long {
		v &= irq3PEKLong
	}
	return v != 0, nil
}

// PowerOff cuts all outputs except the RTC. The board turns off.
func (d *Dev) PowerOff() error {
	return d.setBits(regPowerOffCtrl, powerOffBit)
}

// Halt implements conn.Resource. The PMU keeps its configuration.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("AXP192{%s}", d.dev)
}
