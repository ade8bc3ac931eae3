// Package config holds the board configuration used by the demo: panel
// geometry, wiring, bus addresses and the refresh schedule.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/flavioheleno/m5stickc/internal/log"
)

// Display describes the ST7789 panel.
type Display struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// OriginX and OriginY are needed for panels other than 240x240 and 135x240.
	OriginX    *int `yaml:"origin_x,omitempty"`
	OriginY    *int `yaml:"origin_y,omitempty"`
	Rotation   int  `yaml:"rotation"`
	VertMirror bool `yaml:"vert_mirror"`
	HorzMirror bool `yaml:"horz_mirror"`
	BGR        bool `yaml:"bgr"`
	BufferSize int  `yaml:"buffer_size"`
}

// Pins names the GPIOs wired to the panel. RST and CS may be empty.
type Pins struct {
	DC  string `yaml:"dc"`
	RST string `yaml:"rst"`
	CS  string `yaml:"cs"`
}

// Buses names the periph buses; empty selects the first one registered.
type Buses struct {
	SPI string `yaml:"spi"`
	I2C string `yaml:"i2c"`
}

// Sensors holds I²C addresses. A zero address disables the device.
type Sensors struct {
	AXP192 uint16 `yaml:"axp192"`
	DHT12  uint16 `yaml:"dht12"`
	SGP30  uint16 `yaml:"sgp30"`
}

// Config is the top-level configuration.
type Config struct {
	Display Display `yaml:"display"`
	Pins    Pins    `yaml:"pins"`
	Buses   Buses   `yaml:"buses"`
	Sensors Sensors `yaml:"sensors"`

	// Refresh is a cron schedule (e.g. "@every 5s" or "*/1 * * * *") for
	// redrawing the dashboard.
	Refresh string `yaml:"refresh"`

	// LogLevel is one of debug, info or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration of an M5StickC Plus with the ENV unit
// attached.
func Default() *Config {
	return &Config{
		Display: Display{
			Width:      135,
			Height:     240,
			Rotation:   4,
			VertMirror: true,
			HorzMirror: true,
			BufferSize: 512,
		},
		Pins: Pins{
			DC:  "GPIO25",
			RST: "GPIO24",
		},
		Sensors: Sensors{
			AXP192: 0x34,
			DHT12:  0x5C,
			SGP30:  0x58,
		},
		Refresh:  "@every 5s",
		LogLevel: "info",
	}
}

// Normalize fills zero values with defaults. Addresses and optional pins
// are left alone since zero means disabled.
func (c *Config) Normalize() {
	def := Default()
	if c.Display.Width == 0 && c.Display.Height == 0 {
		c.Display.Width, c.Display.Height = def.Display.Width, def.Display.Height
	}
	if c.Display.BufferSize == 0 {
		c.Display.BufferSize = def.Display.BufferSize
	}
	if c.Pins.DC == "" {
		c.Pins.DC = def.Pins.DC
	}
	if c.Refresh == "" {
		c.Refresh = def.Refresh
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d", c.Display.Width, c.Display.Height))
	}
	if (c.Display.OriginX == nil) != (c.Display.OriginY == nil) {
		errs = append(errs, errors.New("origin_x and origin_y must be set together"))
	}
	if c.Display.Rotation < 0 || c.Display.Rotation > 7 {
		errs = append(errs, fmt.Errorf("rotation %d not in 0-7", c.Display.Rotation))
	}
	if c.Display.BufferSize < 0 || c.Display.BufferSize%2 != 0 {
		errs = append(errs, fmt.Errorf("buffer_size %d must be a positive even number", c.Display.BufferSize))
	}
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		errs = append(errs, fmt.Errorf("refresh %q: %w", c.Refresh, err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the YAML file at path. When it does not exist, the defaults
// are written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".m5stickc-config-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0o600); err != nil {
		return err
	}
	return os.Rename(name, path)
}
