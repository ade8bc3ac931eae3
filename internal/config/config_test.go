package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.Width != 135 || cfg.Refresh != "@every 5s" {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %v, want 0600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if again.Sensors != cfg.Sensors || again.Display.Rotation != cfg.Display.Rotation {
		t.Errorf("reloaded %+v, want %+v", again, cfg)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "display:\n  width: 240\n  height: 240\nsensors:\n  dht12: 92\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.Width != 240 || cfg.Display.BufferSize != 512 {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if cfg.Pins.DC != "GPIO25" || cfg.Pins.RST != "" {
		t.Errorf("Pins = %+v", cfg.Pins)
	}
	if cfg.Sensors.DHT12 != 0x5C || cfg.Sensors.SGP30 != 0 {
		t.Errorf("Sensors = %+v", cfg.Sensors)
	}
	if cfg.Refresh != "@every 5s" || cfg.LogLevel != "info" {
		t.Errorf("Refresh = %q, LogLevel = %q", cfg.Refresh, cfg.LogLevel)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "display: [", "config.yaml"},
		{"bad schedule", "refresh: every now and then\n", "refresh"},
		{"bad rotation", "display:\n  rotation: 9\n", "rotation"},
		{"odd buffer", "display:\n  buffer_size: 255\n", "buffer_size"},
		{"half origin", "display:\n  origin_x: 2\n", "origin_x"},
		{"bad level", "log_level: loud\n", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateSchedules(t *testing.T) {
	for _, s := range []string{"@every 5s", "@hourly", "*/5 * * * *"} {
		cfg := Default()
		cfg.Refresh = s
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with %q: %v", s, err)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	x, y := 40, 53
	cfg.Display = Display{Width: 240, Height: 135, OriginX: &x, OriginY: &y, Rotation: 1, BufferSize: 1024}
	cfg.Buses.I2C = "I2C1"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Display.OriginX == nil || *got.Display.OriginX != 40 || *got.Display.OriginY != 53 {
		t.Errorf("origin not kept: %+v", got.Display)
	}
	if got.Buses.I2C != "I2C1" || got.Display.BufferSize != 1024 {
		t.Errorf("Load() = %+v", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Save left %d files behind", len(entries))
	}
}

func TestSaveErrors(t *testing.T) {
	if err := Save("", Default()); err == nil {
		t.Error("Save with empty path succeeded")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("Save with nil config succeeded")
	}
	if _, err := Load(""); err == nil {
		t.Error("Load with empty path succeeded")
	}
}
