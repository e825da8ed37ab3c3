package mpsse

// ReverseBits swaps the bit order within a byte.
func ReverseBits(c byte) byte {
	c = (c&0xF0)>>4 | (c&0x0F)<<4
	c = (c&0xCC)>>2 | (c&0x33)<<2
	c = (c&0xAA)>>1 | (c&0x55)<<1
	return c
}

// ReverseBuffer swaps the bit order within every byte of p, in place.
func ReverseBuffer(p []byte) {
	for i := range p {
		p[i] = ReverseBits(p[i])
	}
}

// CombineTail reassembles the 1..8 tail bits of a register transfer from the
// engine's reply bytes. The tail is structurally emitted as a bit-mode
// command of bits-1 bits plus a single-bit TMS command, so its value comes
// back split across two bytes: the engine shifts received bits in from the
// MSB, leaving the first bits-1 bits in the top of first and the final bit
// in bit 7 of second. For bits == 1 only first is consumed.
func CombineTail(first, second byte, bits int) byte {
	if bits == 1 {
		return (first & 0x80) >> 7
	}
	return ((second & 0x80) | (first >> 1)) >> (8 - bits)
}
