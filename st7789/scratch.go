package st7789

import (
	"encoding/binary"

	"github.com/flavioheleno/m5stickc/rgb565"
)

// scratch is the single staging buffer shared by all drawing calls of a
// Dev. Its length is fixed at construction and is a multiple of pixelSize.
type scratch struct {
	b     []byte
	order binary.ByteOrder // Wire order of pixel values
}

func newScratch(size int) *scratch {
	return &scratch{
		b:     make([]byte, size),
		order: binary.BigEndian,
	}
}

// chunks splits a transfer of total bytes into n full buffers plus rem
// trailing bytes.
func (s *scratch) chunks(total int) (n, rem int) {
	return total / len(s.b), total % len(s.b)
}

// fill repeats c across the whole buffer.
func (s *scratch) fill(c rgb565.Color) {
	s.put(s.b, c)
	// Double the filled prefix until the buffer is covered.
	for i := pixelSize; i < len(s.b); i *= 2 {
		copy(s.b[i:], s.b[:i])
	}
}

// put encodes c at the start of p.
func (s *scratch) put(p []byte, c rgb565.Color) {
	s.order.PutUint16(p, uint16(c))
}
