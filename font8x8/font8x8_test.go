package font8x8

import "testing"

func TestGlyphTableSize(t *testing.T) {
	if got, want := len(glyphs), last-first+1; got != want {
		t.Fatalf("len(glyphs) = %d, want %d", got, want)
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want [Height]byte
	}{
		{"space", ' ', [Height]byte{}},
		{"A", 'A', [Height]byte{0x0C, 0x1E, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x00}},
		{"tilde", '~', [Height]byte{0x6E, 0x3B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"control", '\n', Fallback},
		{"del", 0x7F, Fallback},
		{"non-ascii", 'é', Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Glyph(tt.r); got != tt.want {
				t.Errorf("Glyph(%q) = %x, want %x", tt.r, got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	g := Glyph('_')
	for x := 0; x < Width; x++ {
		if !Set(g, x, 7) {
			t.Errorf("Set('_', %d, 7) = false, want true", x)
		}
		if Set(g, x, 0) {
			t.Errorf("Set('_', %d, 0) = true, want false", x)
		}
	}

	// 'A' top row is 0x0C: columns 2 and 3 lit.
	g = Glyph('A')
	for x := 0; x < Width; x++ {
		want := x == 2 || x == 3
		if got := Set(g, x, 0); got != want {
			t.Errorf("Set('A', %d, 0) = %v, want %v", x, got, want)
		}
	}
}
