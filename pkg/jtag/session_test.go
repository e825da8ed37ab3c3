package jtag

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/tap"
)

// echoTransport answers every read with a fixed reply, for exercising the
// sync handshake without the full simulator.
type echoTransport struct {
	reply []byte
}

func (e *echoTransport) Write(p []byte) (int, error) { return len(p), nil }

func (e *echoTransport) Read(p []byte) (int, error) {
	n := copy(p, e.reply)
	e.reply = e.reply[n:]
	return n, nil
}

func (e *echoTransport) Close() error { return nil }

func newTestSession(t *testing.T) (*Session, *SimTransport) {
	t.Helper()
	sim := NewSimTransport(simIDCODE)
	sess := NewSession(sim)
	if err := sess.Setup(0); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if err := sess.Sync(); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if err := sess.Attach(); err != nil {
		t.Fatalf("Attach returned error: %v", err)
	}
	return sess, sim
}

func TestSyncDetectsDesync(t *testing.T) {
	sess := NewSession(&echoTransport{reply: []byte{mpsse.BadCommandEcho, 0x00}})
	if err := sess.Sync(); !errors.Is(err, mpsse.ErrDesync) {
		t.Fatalf("Sync = %v, want ErrDesync", err)
	}
}

func TestReadIDCODE(t *testing.T) {
	sess, _ := newTestSession(t)

	got, err := sess.ReadIDCODE()
	if err != nil {
		t.Fatalf("ReadIDCODE returned error: %v", err)
	}
	if got != simIDCODE {
		t.Errorf("ReadIDCODE = %08x, want %08x", got, uint32(simIDCODE))
	}
}

func TestProgramSequence(t *testing.T) {
	sess, sim := newTestSession(t)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	o := DefaultProgramOptions()
	o.ShutdownSpins = 2
	o.StartupSpins = 2
	o.SpinCycles = 16
	var progressCalls int
	o.Progress = func(done, total int) { progressCalls++ }

	if err := sess.Program(payload, len(payload)*8, o); err != nil {
		t.Fatalf("Program returned error: %v", err)
	}

	// The sequence ends with a forced reset, which also relatches IDCODE.
	if got := sim.State(); got != tap.StateTestLogicReset {
		t.Errorf("simulated state = %s, want TestLogicReset", got)
	}
	if got := sim.Instruction(); got != InstrIDCODE {
		t.Errorf("latched instruction = %02x, want IDCODE relatched by reset", got)
	}
	if progressCalls == 0 {
		t.Error("progress callback never fired")
	}
}

func TestProgramValidatesArguments(t *testing.T) {
	sess, _ := newTestSession(t)
	o := DefaultProgramOptions()
	o.ShutdownSpins, o.StartupSpins = 0, 0

	if err := sess.Program(nil, 8, o); !errors.Is(err, mpsse.ErrInvalidArgument) {
		t.Errorf("Program(nil payload) = %v, want ErrInvalidArgument", err)
	}
	if err := sess.Program([]byte{1}, 0, o); !errors.Is(err, mpsse.ErrInvalidArgument) {
		t.Errorf("Program(0 bits) = %v, want ErrInvalidArgument", err)
	}
	if err := sess.Program([]byte{1}, 16, o); !errors.Is(err, mpsse.ErrInvalidArgument) {
		t.Errorf("Program(short payload) = %v, want ErrInvalidArgument", err)
	}
}

func TestResetRecoversKnownState(t *testing.T) {
	sess, sim := newTestSession(t)

	// Leave something half-encoded, then recover.
	if err := sess.Engine().TAP().IdleToShiftDR(); err != nil {
		t.Fatalf("IdleToShiftDR returned error: %v", err)
	}
	if err := sess.Reset(); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if got := sim.State(); got != tap.StateTestLogicReset {
		t.Errorf("simulated state = %s, want TestLogicReset", got)
	}
	if got, known := sess.Engine().TAP().State(); !known || got != tap.StateTestLogicReset {
		t.Errorf("assumed state = %s (known=%v), want TestLogicReset", got, known)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sess, sim := newTestSession(t)

	if err := sess.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !sim.Closed() {
		t.Fatal("transport not closed")
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}
