package jtag

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/tap"
)

// Engine turns instruction and data register operations into MPSSE command
// streams. It owns the command buffer and the TAP controller for the
// duration of a session; no other component touches them. Any failed flush
// or receive leaves the TAP in an indeterminate position, so the engine
// never retries: the caller must force a reset before further use.
type Engine struct {
	buf      *mpsse.Buffer
	tap      *tap.Controller
	conn     mpsse.Transport
	attempts int
	chunkMax int
}

// EngineOption adjusts engine construction.
type EngineOption func(*Engine)

// WithChunkMax overrides the whole-byte chunk bound.
func WithChunkMax(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.chunkMax = n
		}
	}
}

// WithRecvAttempts overrides the receive retry budget.
func WithRecvAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithBufferSize overrides the command buffer capacity.
func WithBufferSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.buf = mpsse.NewBuffer(n)
		}
	}
}

// NewEngine returns an engine bound to conn with a fresh command buffer and
// TAP controller.
func NewEngine(conn mpsse.Transport, opts ...EngineOption) *Engine {
	e := &Engine{
		buf:      mpsse.NewBuffer(mpsse.DefaultBufferSize),
		conn:     conn,
		attempts: mpsse.DefaultRecvAttempts,
		chunkMax: ChunkMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tap = tap.NewController(e.buf)
	return e
}

// Buffer exposes the command buffer for raw appends (the resync probe) and
// for tests that inspect the encoded stream.
func (e *Engine) Buffer() *mpsse.Buffer {
	return e.buf
}

// TAP exposes the controller for session-level state sequencing.
func (e *Engine) TAP() *tap.Controller {
	return e.tap
}

// Flush drains the command buffer to the transport.
func (e *Engine) Flush() error {
	return e.buf.Flush(e.conn)
}

func (e *Engine) receive(op string, buf []byte) error {
	if err := mpsse.Receive(e.conn, buf, e.attempts); err != nil {
		return fmt.Errorf("jtag: %s: %w", op, err)
	}
	return nil
}

// WriteIR shifts a six-bit instruction into the instruction register and
// returns the TAP to Run-Test/Idle. The commands are buffered; nothing is
// flushed until a dependent read or an explicit Flush.
func (e *Engine) WriteIR(code byte) error {
	if err := e.tap.IdleToShiftIR(); err != nil {
		return err
	}
	if err := e.buf.ShiftTail(code, IRLength, true, false); err != nil {
		return err
	}
	if err := e.tap.ShiftExit(); err != nil {
		return err
	}
	return e.tap.Exit1IRToIdle()
}

// TransferDR shifts s.Bits bits through the data register, returning the
// captured bytes when s.Capture is set and nil otherwise.
//
// Whole bytes move in byte-mode chunks of at most the chunk bound; between
// chunks the stream is flushed and, when capturing, that chunk's reply is
// received before the next chunk is encoded. The final 1..8 bits go through
// the bit-mode tail path, whose last command also drives the TMS transition
// out of Shift-DR on the same clock edge as the last data bit.
func (e *Engine) TransferDR(s Shift) ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	whole, tail := SplitBits(s.Bits)

	if err := e.tap.IdleToShiftDR(); err != nil {
		return nil, err
	}

	var captured []byte
	if s.Capture {
		captured = make([]byte, (s.Bits+7)/8)
	}

	in, out := 0, 0
	remaining := whole
	lastChunk := 0
	for remaining > 0 {
		chunk := remaining
		if chunk > e.chunkMax {
			chunk = e.chunkMax
		}
		var tdi []byte
		if s.In != nil {
			tdi = s.In[in : in+chunk]
			in += chunk
		}
		if err := e.buf.ShiftBytes(tdi, chunk, s.Capture); err != nil {
			return nil, err
		}
		remaining -= chunk
		lastChunk = chunk

		// The last chunk stays buffered so the tail and the state
		// transitions ride in the same write.
		if remaining > 0 {
			if err := e.Flush(); err != nil {
				return nil, fmt.Errorf("jtag: transfer chunk: %w", err)
			}
			if s.Capture {
				if err := e.receive("transfer chunk", captured[out:out+chunk]); err != nil {
					return nil, err
				}
				out += chunk
			}
			if s.Progress != nil {
				s.Progress(in, whole)
			}
		}
	}

	var tailData byte
	if s.In != nil {
		tailData = s.In[in]
	}
	if err := e.buf.ShiftTail(tailData, tail, s.In != nil, s.Capture); err != nil {
		return nil, err
	}
	if err := e.tap.ShiftExit(); err != nil {
		return nil, err
	}
	if err := e.tap.Exit1DRToIdle(); err != nil {
		return nil, err
	}
	if err := e.Flush(); err != nil {
		return nil, fmt.Errorf("jtag: transfer tail: %w", err)
	}
	if s.Progress != nil {
		s.Progress(whole, whole)
	}

	if !s.Capture {
		return nil, nil
	}

	if lastChunk > 0 {
		if err := e.receive("transfer last chunk", captured[out:out+lastChunk]); err != nil {
			return nil, err
		}
		out += lastChunk
	}

	reply := make([]byte, 1, 2)
	if tail > 1 {
		reply = reply[:2]
	}
	if err := e.receive("transfer tail", reply); err != nil {
		return nil, err
	}
	var second byte
	if tail > 1 {
		second = reply[1]
	}
	captured[out] = mpsse.CombineTail(reply[0], second, tail)
	return captured, nil
}
