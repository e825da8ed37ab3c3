package jtag

import (
	"encoding/binary"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/tap"
)

// Session ties the transfer engine to a transport for one exclusive claim
// on the device, from handshake to teardown. All calls are synchronous and
// blocking; nothing is retried. After any failure the TAP position is
// indeterminate and the caller decides whether to Reset or Close.
type Session struct {
	engine *Engine
	conn   mpsse.Transport
	closed bool
}

// NewSession wraps conn in a fresh engine. The session owns the transport
// until Close.
func NewSession(conn mpsse.Transport, opts ...EngineOption) *Session {
	return &Session{
		engine: NewEngine(conn, opts...),
		conn:   conn,
	}
}

// Engine exposes the underlying transfer engine.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Setup emits the MPSSE initialization block (pin directions, clock
// divisor, clocking options) and flushes it.
func (s *Session) Setup(divisor uint16) error {
	if err := s.engine.Buffer().EngineSetup(divisor); err != nil {
		return err
	}
	if err := s.engine.Flush(); err != nil {
		return fmt.Errorf("jtag: setup: %w", err)
	}
	return nil
}

// Sync verifies that the engine's command parser is aligned with the host
// by sending a deliberately invalid opcode and checking for the fixed
// two-byte bad-command echo. Any other reply means the parser is
// desynchronized, which is fatal for the session.
func (s *Session) Sync() error {
	if err := s.engine.Buffer().Append(mpsse.BadCommandProbe); err != nil {
		return err
	}
	if err := s.engine.Flush(); err != nil {
		return fmt.Errorf("jtag: sync: %w", err)
	}
	var echo [2]byte
	if err := s.engine.receive("sync", echo[:]); err != nil {
		return err
	}
	if echo[0] != mpsse.BadCommandEcho || echo[1] != mpsse.BadCommandProbe {
		return fmt.Errorf("jtag: sync: echo %02x %02x, want %02x %02x: %w",
			echo[0], echo[1], mpsse.BadCommandEcho, mpsse.BadCommandProbe, mpsse.ErrDesync)
	}
	return nil
}

// Attach forces the TAP into Test-Logic-Reset and parks it in
// Run-Test/Idle, establishing the known state every register operation
// builds on. The commands stay buffered until the next dependent read.
func (s *Session) Attach() error {
	if err := s.engine.TAP().ForceReset(); err != nil {
		return err
	}
	return s.engine.TAP().ResetToIdle()
}

// ReadIDCODE loads the IDCODE instruction and reads the 32-bit device
// identifier, assembled little-endian from the four captured bytes.
func (s *Session) ReadIDCODE() (uint32, error) {
	if err := s.engine.WriteIR(InstrIDCODE); err != nil {
		return 0, err
	}
	raw, err := s.engine.TransferDR(Shift{Bits: 32, Capture: true})
	if err != nil {
		return 0, fmt.Errorf("jtag: read idcode: %w", err)
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// ProgramOptions parameterizes Program. The spin counts are empirically
// chosen clock budgets, not protocol-mandated values; they depend on the
// target device's internal timing.
type ProgramOptions struct {
	Shutdown      byte // instruction that stops the running design
	Config        byte // instruction that routes DR data to configuration
	Start         byte // instruction that restarts the device
	ShutdownSpins int  // SpinIdle rounds after Shutdown
	StartupSpins  int  // SpinIdle rounds after Start
	SpinCycles    int  // TCK edges per SpinIdle round

	// Progress, if non-nil, is forwarded to the payload transfer.
	Progress func(done, total int)
}

// DefaultProgramOptions returns the Spartan-6 programming sequence with the
// clock budgets the flow was tuned with.
func DefaultProgramOptions() ProgramOptions {
	return ProgramOptions{
		Shutdown:      InstrJShutdown,
		Config:        InstrCfgIn,
		Start:         InstrJStart,
		ShutdownSpins: 500,
		StartupSpins:  500,
		SpinCycles:    tap.DefaultSpinCycles,
	}
}

func (s *Session) spin(rounds, cycles int) error {
	for i := 0; i < rounds; i++ {
		if err := s.engine.TAP().SpinIdle(cycles); err != nil {
			return err
		}
		if err := s.engine.Flush(); err != nil {
			return fmt.Errorf("jtag: spin: %w", err)
		}
	}
	return nil
}

// Program uploads a configuration payload of bits bits: shutdown
// instruction, shutdown spin, configuration instruction, write-only
// transfer of the payload, start instruction, startup spin, then a forced
// reset. Every step is sequential and blocking; a failure at any step
// aborts the sequence. The payload must already be bit-reversed per byte
// (the device consumes configuration bits MSB-first while the engine
// shifts LSB-first).
func (s *Session) Program(payload []byte, bits int, o ProgramOptions) error {
	if len(payload) == 0 || bits < 1 || (bits+7)/8 > len(payload) {
		return mpsse.ErrInvalidArgument
	}
	cycles := o.SpinCycles
	if cycles <= 0 {
		cycles = tap.DefaultSpinCycles
	}

	if err := s.engine.WriteIR(o.Shutdown); err != nil {
		return fmt.Errorf("jtag: program shutdown: %w", err)
	}
	if err := s.spin(o.ShutdownSpins, cycles); err != nil {
		return err
	}
	if err := s.engine.WriteIR(o.Config); err != nil {
		return fmt.Errorf("jtag: program config: %w", err)
	}
	if _, err := s.engine.TransferDR(Shift{Bits: bits, In: payload, Progress: o.Progress}); err != nil {
		return fmt.Errorf("jtag: program payload: %w", err)
	}
	if err := s.engine.WriteIR(o.Start); err != nil {
		return fmt.Errorf("jtag: program start: %w", err)
	}
	if err := s.spin(o.StartupSpins, cycles); err != nil {
		return err
	}
	if err := s.engine.TAP().ForceReset(); err != nil {
		return err
	}
	if err := s.engine.Flush(); err != nil {
		return fmt.Errorf("jtag: program reset: %w", err)
	}
	return nil
}

// Reset discards anything still buffered, forces the TAP into
// Test-Logic-Reset and flushes. Used to recover a known state after a
// failed operation.
func (s *Session) Reset() error {
	s.engine.Buffer().Reset()
	if err := s.engine.TAP().ForceReset(); err != nil {
		return err
	}
	if err := s.engine.Flush(); err != nil {
		return fmt.Errorf("jtag: reset: %w", err)
	}
	return nil
}

// Close resets the TAP on a best-effort basis and closes the transport.
// It is idempotent and safe to call after any failure.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.Reset()
	return s.conn.Close()
}
