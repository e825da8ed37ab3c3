// Package jtag implements the register transfer engine and programming
// session for a single-device JTAG chain driven through an FTDI MPSSE
// bridge: instruction register writes, chunked data register transfers with
// correct tail-bit framing, the bad-command resync handshake, IDCODE reads,
// and the shutdown/configure/start sequence that loads an FPGA bitstream.
package jtag

import "github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"

// ChunkMax bounds how many whole bytes a single byte-mode shift command
// carries. Transfers larger than this are split, with a flush-and-receive
// between chunks so in-flight reply data never exceeds one chunk.
const ChunkMax = 32768

// Shift describes one data register transfer. At least one of In and
// Capture must be requested; Bits must be >= 1. When In is set its first
// ceil(Bits/8) bytes are shifted out LSB-first; when Capture is set the
// transfer returns ceil(Bits/8) bytes, the last holding only the low tail
// bits. Progress, if non-nil, is called after each flushed chunk with the
// whole bytes completed so far and the transfer's whole-byte total.
type Shift struct {
	Bits     int
	In       []byte
	Capture  bool
	Progress func(done, total int)
}

// SplitBits divides a bit length into whole bytes plus a 1..8 bit tail.
// The tail is never empty: the final bits always go through the bit-mode
// path, which is also where the TAP exits the shift state, since the exit
// must coincide with the last bit's clock edge.
func SplitBits(n int) (wholeBytes, tailBits int) {
	wholeBytes = (n - 1) / 8
	tailBits = n - wholeBytes*8
	return wholeBytes, tailBits
}

func (s Shift) validate() error {
	if s.Bits < 1 {
		return mpsse.ErrInvalidArgument
	}
	if s.In == nil && !s.Capture {
		return mpsse.ErrInvalidArgument
	}
	if s.In != nil && len(s.In) < (s.Bits+7)/8 {
		return mpsse.ErrInvalidArgument
	}
	return nil
}
