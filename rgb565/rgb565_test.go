package rgb565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"black", 0, 0, 0, Black},
		{"white", 0xFF, 0xFF, 0xFF, White},
		{"red", 0xFF, 0, 0, Red},
		{"green", 0, 0xFF, 0, Green},
		{"blue", 0, 0, 0xFF, Blue},
		{"orange", 0xFF, 0x80, 0x00, 0xFC00},
		{"low bits dropped", 0x07, 0x03, 0x07, Black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("New(%#x, %#x, %#x) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name       string
		c          Color
		wr, wg, wb uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"green", Green, 0, 0xFFFF, 0},
		{"blue", Blue, 0, 0, 0xFFFF},
		{"mid gray", 0x8410, 0x8484, 0x8282, 0x8484},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wr || g != tt.wg || b != tt.wb || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)", r, g, b, a, tt.wr, tt.wg, tt.wb)
			}
		})
	}
}

func TestColorBytes(t *testing.T) {
	if got := Color(0xF81F).Bytes(); got != [2]byte{0xF8, 0x1F} {
		t.Errorf("Bytes() = %x, want f81f", got)
	}
}

func TestModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Color
	}{
		{"passthrough", Color(0x1234), 0x1234},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"gray", color.Gray{Y: 0x80}, 0x8410},
		{"rgba red", color.RGBA{0xFF, 0, 0, 0xFF}, Red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Model.Convert(tt.input).(Color)
			if got != tt.want {
				t.Errorf("Model.Convert(%v) = %#04x, want %#04x", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewImage(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"240x240", image.Rect(0, 0, 240, 240), 480, 115200},
		{"135x240", image.Rect(0, 0, 135, 240), 270, 64800},
		{"odd width", image.Rect(0, 0, 3, 1), 6, 6},
		{"offset rect", image.Rect(10, 20, 14, 22), 8, 16},
		{"empty", image.Rect(0, 0, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestImageBigEndianStorage(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 1))
	img.SetRGB565(0, 0, Red)
	img.SetRGB565(1, 0, Blue)

	want := []byte{0xF8, 0x00, 0x00, 0x1F}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, img.Pix[i], b)
		}
	}
}

func TestImageSetGet(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 2))
	colors := [][3]Color{
		{Red, Green, Blue},
		{White, 0x1234, Black},
	}
	for y, row := range colors {
		for x, c := range row {
			img.SetRGB565(x, y, c)
		}
	}
	for y, row := range colors {
		for x, want := range row {
			if got := img.RGB565At(x, y); got != want {
				t.Errorf("RGB565At(%d, %d) = %#04x, want %#04x", x, y, got, want)
			}
		}
	}

	img.Set(0, 0, color.White)
	if got, ok := img.At(0, 0).(Color); !ok || got != White {
		t.Errorf("At(0, 0) = %v, want White", img.At(0, 0))
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 2))
	img.SetRGB565(-1, 0, White)
	img.SetRGB565(0, 2, White)
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = 0x%02X after out-of-bounds write", i, b)
		}
	}
	if got := img.RGB565At(5, 5); got != Black {
		t.Errorf("RGB565At(5, 5) = %#04x, want Black", got)
	}
}

func TestImageOffsetRect(t *testing.T) {
	img := NewImage(image.Rect(100, 50, 102, 52))
	img.SetRGB565(101, 51, Cyan)
	if got := img.PixOffset(101, 51); got != 6 {
		t.Errorf("PixOffset(101, 51) = %d, want 6", got)
	}
	if img.Pix[6] != 0x07 || img.Pix[7] != 0xFF {
		t.Errorf("Pix[6:8] = %x, want 07ff", img.Pix[6:8])
	}
}

func TestImageDraw(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 4))
	draw.Draw(img, image.Rect(1, 1, 3, 3), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := Black
			if x >= 1 && x < 3 && y >= 1 && y < 3 {
				want = White
			}
			if got := img.RGB565At(x, y); got != want {
				t.Errorf("RGB565At(%d, %d) = %#04x, want %#04x", x, y, got, want)
			}
		}
	}
}
