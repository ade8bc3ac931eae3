// Package st7789 controls a ST7789 TFT display via SPI.
//
// The ST7789 is a 262K color controller with 240×320 pixels of RAM. Smaller
// panels are mapped into that RAM at a fixed origin; the M5StickC Plus uses a
// 135×240 panel at column 52, row 40. This driver implements the
// display.Drawer interface from periph.io and the drivers.Displayer interface
// from TinyGo.
//
// # Display Characteristics
//
// - 16-bit RGB565 color, sent big-endian
// - 240×240 and 135×240 panels are recognized; other sizes need Opts.Origin
// - 8 rotation/mirror combinations through memory access control
// - Display inversion and sleep mode
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"github.com/flavioheleno/m5stickc/rgb565"
//		"github.com/flavioheleno/m5stickc/st7789"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO23")
//
//		dev, _ := st7789.NewSPI(spiBus, dcPin, &st7789.Opts{
//			W:   135,
//			H:   240,
//			RST: gpioreg.ByName("GPIO18"),
//		})
//		defer dev.Halt()
//
//		dev.FillRect(10, 10, 50, 20, rgb565.Red)
//		dev.Line(0, 0, 134, 239, rgb565.White)
//		dev.Text("Hello", 10, 40, rgb565.White, rgb565.Black)
//	}
//
// # Power-Up
//
// Unless Opts.NoInit is set the constructor runs the power-up sequence:
// hardware reset (when Opts.RST is set), software reset (120ms), sleep out,
// color mode, memory access mode, inversion on, normal mode, clear to black
// and display on, with the settle delays required by the datasheet. State
// reports how far the sequence got. The sequence runs once; it is never
// retried.
//
// # Scratch Buffer
//
// All drawing goes through one fixed buffer (512 bytes by default). FillRect
// fills it with the color once and streams it as many times as the area
// needs. Text composes the whole string in the buffer, so a string needs
// 128 bytes per character:
//
//	dev.Text("ABCD", 0, 0, fg, bg) // 512 bytes, fits the default buffer
//
// Use Opts.BufferSize for longer strings. The size must be even.
//
// A Dev is not safe for concurrent use.
//
// # Windows
//
// Every primitive addresses the controller RAM through a window. A window
// that does not fit the panel returns ErrWindowOutOfBounds and nothing is
// sent.
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789
