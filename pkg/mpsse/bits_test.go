package mpsse

import "testing"

func TestReverseBits(t *testing.T) {
	tests := []struct {
		in   byte
		want byte
	}{
		{0x00, 0x00},
		{0xFF, 0xFF},
		{0x01, 0x80},
		{0x80, 0x01},
		{0xAA, 0x55},
		{0xC3, 0xC3},
		{0x12, 0x48},
	}

	for _, tt := range tests {
		if got := ReverseBits(tt.in); got != tt.want {
			t.Errorf("ReverseBits(%02x) = %02x, want %02x", tt.in, got, tt.want)
		}
		if got := ReverseBits(ReverseBits(tt.in)); got != tt.in {
			t.Errorf("ReverseBits round trip of %02x = %02x", tt.in, got)
		}
	}
}

func TestReverseBuffer(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	ReverseBuffer(buf)
	want := []byte{0x80, 0x40, 0xC0}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("ReverseBuffer[%d] = %02x, want %02x", i, buf[i], want[i])
		}
	}
}

// frameTail reproduces the engine's reply framing for a tail of the given
// width: the first bits-1 bits land in the top of the first reply byte, the
// final bit in bit 7 of the second.
func frameTail(value byte, bits int) (first, second byte) {
	for b := 0; b < bits-1; b++ {
		first >>= 1
		if value&(1<<b) != 0 {
			first |= 0x80
		}
	}
	if value&(1<<(bits-1)) != 0 {
		second = 0x80
	}
	if bits == 1 {
		first, second = second, 0
	}
	return first, second
}

func TestCombineTailRoundTrip(t *testing.T) {
	for bits := 1; bits <= 8; bits++ {
		for v := 0; v < 256; v++ {
			value := byte(v) & byte((1<<bits)-1)
			first, second := frameTail(value, bits)
			if got := CombineTail(first, second, bits); got != value {
				t.Fatalf("CombineTail(%02x, %02x, %d) = %02x, want %02x",
					first, second, bits, got, value)
			}
		}
	}
}
