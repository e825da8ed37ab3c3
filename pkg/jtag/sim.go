package jtag

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/tap"
)

// SimTransport is an in-memory MPSSE and TAP emulation implementing
// mpsse.Transport. It parses the command stream the engine produces,
// clocks a single simulated device through the TAP state graph, and queues
// reply bytes with the same framing the bridge chip uses, including the
// split tail and the bad-command echo. Tests and the CLI's hardware-free
// mode drive the full stack against it.
//
// The simulated device has a six-bit instruction register and one data
// register: a pass-through shift register of RegisterLength bits, preloaded
// with IDCODE when that instruction is selected (or after Test-Logic-Reset,
// which latches IDCODE per the standard).
type SimTransport struct {
	IDCODE         uint32
	RegisterLength int

	// Failure injection.
	WriteLimit int   // accept at most this many bytes per Write (0 = all)
	ReadLimit  int   // return at most this many bytes per Read (0 = all)
	Starve     bool  // Read returns nothing, driving receive timeouts
	ReadErr    error // Read fails outright

	// Writes records every Write call; Trace records each decoded command.
	Writes [][]byte
	Trace  []string

	state    tap.State
	tmsLevel bool
	instr    byte
	irShift  uint32
	irCount  int
	reg      []bool
	pending  []byte
	closed   bool
}

// NewSimTransport returns a simulator reporting the given IDCODE, with a
// 32-bit pass-through data register.
func NewSimTransport(idcode uint32) *SimTransport {
	return &SimTransport{
		IDCODE:         idcode,
		RegisterLength: 32,
		state:          tap.StateTestLogicReset,
		instr:          InstrIDCODE,
	}
}

// State reports the simulated TAP state.
func (s *SimTransport) State() tap.State {
	return s.state
}

// Instruction reports the currently latched instruction.
func (s *SimTransport) Instruction() byte {
	return s.instr
}

func (s *SimTransport) trace(format string, args ...interface{}) {
	s.Trace = append(s.Trace, fmt.Sprintf(format, args...))
}

func (s *SimTransport) loadRegister() {
	if s.instr == InstrIDCODE {
		s.reg = make([]bool, 32)
		for i := 0; i < 32; i++ {
			s.reg[i] = s.IDCODE&(1<<i) != 0
		}
		return
	}
	if len(s.reg) != s.RegisterLength {
		s.reg = make([]bool, s.RegisterLength)
	}
}

func (s *SimTransport) clockDR(tdi bool) bool {
	if len(s.reg) == 0 {
		s.loadRegister()
	}
	out := s.reg[0]
	copy(s.reg, s.reg[1:])
	s.reg[len(s.reg)-1] = tdi
	return out
}

// clockBit advances the TAP one TCK cycle, shifting tdi through whichever
// register the current state selects, and returns the TDO bit.
func (s *SimTransport) clockBit(tdi, tms bool) bool {
	var out bool
	switch s.state {
	case tap.StateShiftDR:
		out = s.clockDR(tdi)
	case tap.StateShiftIR:
		if tdi && s.irCount < 32 {
			s.irShift |= 1 << s.irCount
		}
		s.irCount++
	}

	next := tap.NextState(s.state, tms)
	switch {
	case next == tap.StateCaptureIR && s.state != tap.StateCaptureIR:
		s.irShift, s.irCount = 0, 0
	case next == tap.StateUpdateIR && s.state == tap.StateExit1IR:
		s.instr = byte(s.irShift & 0x3F)
	case next == tap.StateCaptureDR && s.state != tap.StateCaptureDR:
		s.loadRegister()
	case next == tap.StateTestLogicReset:
		s.instr = InstrIDCODE
	}
	s.state = next
	return out
}

// push queues one reply byte for the host.
func (s *SimTransport) push(b byte) {
	s.pending = append(s.pending, b)
}

// Write decodes and executes a command stream. When WriteLimit is set, only
// that many bytes are accepted and executed, modeling a short write.
func (s *SimTransport) Write(p []byte) (int, error) {
	accepted := len(p)
	if s.WriteLimit > 0 && accepted > s.WriteLimit {
		accepted = s.WriteLimit
		p = p[:accepted]
	}
	s.Writes = append(s.Writes, append([]byte(nil), p...))

	i := 0
	for i < len(p) {
		op := p[i]
		if op&0x80 == 0 {
			i = s.execShift(op, p, i)
			continue
		}
		switch op {
		case mpsse.CmdSetBitsLow, mpsse.CmdSetBitsHigh, mpsse.CmdTCKDivisor:
			s.trace("setup %02x", op)
			i += 3
		case mpsse.CmdSendImmediate, mpsse.CmdLoopbackOff,
			mpsse.CmdDisableClkDiv5, mpsse.CmdEnableClkDiv5,
			mpsse.CmdEnable3PhaseClk, mpsse.CmdDisable3PhaseClk,
			mpsse.CmdEnableAdaptiveClk, mpsse.CmdDisableAdaptiveClk:
			s.trace("setup %02x", op)
			i++
		case mpsse.CmdClockBits:
			if i+1 >= len(p) {
				return accepted, nil
			}
			n := int(p[i+1]) + 1
			for c := 0; c < n; c++ {
				s.clockBit(false, s.tmsLevel)
			}
			s.trace("clock edges=%d", n)
			i += 2
		case mpsse.CmdClockBytes:
			if i+2 >= len(p) {
				return accepted, nil
			}
			n := (int(p[i+1]) | int(p[i+2])<<8) + 1
			for c := 0; c < n*8; c++ {
				s.clockBit(false, s.tmsLevel)
			}
			s.trace("clock edges=%d", n*8)
			i += 3
		default:
			s.trace("bad %02x", op)
			s.push(mpsse.BadCommandEcho)
			s.push(op)
			i++
		}
	}
	return accepted, nil
}

func (s *SimTransport) execShift(op byte, p []byte, i int) int {
	read := op&mpsse.FlagDoRead != 0
	write := op&mpsse.FlagDoWrite != 0

	if op&mpsse.FlagWriteTMS != 0 {
		if i+2 >= len(p) {
			return len(p)
		}
		n := int(p[i+1]) + 1
		data := p[i+2]
		tdi := data&0x80 != 0
		var resp byte
		var tms bool
		for b := 0; b < n; b++ {
			tms = data&(1<<b) != 0
			resp >>= 1
			if s.clockBit(tdi, tms) {
				resp |= 0x80
			}
		}
		s.tmsLevel = tms
		if read {
			s.push(resp)
		}
		s.trace("tms bits=%d data=%02x read=%v", n, data, read)
		return i + 3
	}

	if op&mpsse.FlagBitMode != 0 {
		if i+1 >= len(p) {
			return len(p)
		}
		n := int(p[i+1]) + 1
		next := i + 2
		var data byte
		if write {
			if next >= len(p) {
				return len(p)
			}
			data = p[next]
			next++
		}
		var resp byte
		for b := 0; b < n; b++ {
			resp >>= 1
			if s.clockBit(data&(1<<b) != 0, s.tmsLevel) {
				resp |= 0x80
			}
		}
		if read {
			s.push(resp)
		}
		s.trace("bits n=%d write=%v read=%v", n, write, read)
		return next
	}

	// Byte mode.
	if i+2 >= len(p) {
		return len(p)
	}
	n := (int(p[i+1]) | int(p[i+2])<<8) + 1
	next := i + 3
	for j := 0; j < n; j++ {
		var data byte
		if write {
			if next >= len(p) {
				return len(p)
			}
			data = p[next]
			next++
		}
		var resp byte
		for b := 0; b < 8; b++ {
			resp >>= 1
			if s.clockBit(data&(1<<b) != 0, s.tmsLevel) {
				resp |= 0x80
			}
		}
		if read {
			s.push(resp)
		}
	}
	s.trace("bytes n=%d write=%v read=%v", n, write, read)
	return next
}

// Read pops queued reply bytes, honoring the configured failure injection.
func (s *SimTransport) Read(p []byte) (int, error) {
	if s.ReadErr != nil {
		return 0, s.ReadErr
	}
	if s.Starve {
		return 0, nil
	}
	n := len(s.pending)
	if n > len(p) {
		n = len(p)
	}
	if s.ReadLimit > 0 && n > s.ReadLimit {
		n = s.ReadLimit
	}
	copy(p, s.pending[:n])
	s.pending = s.pending[n:]
	return n, nil
}

// Close marks the transport closed; further use is a test bug, not an error.
func (s *SimTransport) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SimTransport) Closed() bool {
	return s.closed
}
