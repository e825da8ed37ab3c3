package jtag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/tap"
)

const simIDCODE = 0x34008093

// attach parks the engine and the simulated TAP in Run-Test/Idle.
func attach(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.TAP().ForceReset(); err != nil {
		t.Fatalf("ForceReset returned error: %v", err)
	}
	if err := e.TAP().ResetToIdle(); err != nil {
		t.Fatalf("ResetToIdle returned error: %v", err)
	}
}

func countTrace(sim *SimTransport, substr string) int {
	n := 0
	for _, line := range sim.Trace {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func TestWriteIRLatchesInstruction(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	e := NewEngine(sim)
	attach(t, e)

	if err := e.WriteIR(InstrCfgIn); err != nil {
		t.Fatalf("WriteIR returned error: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	if got := sim.Instruction(); got != InstrCfgIn {
		t.Errorf("latched instruction = %02x, want %02x", got, InstrCfgIn)
	}
	if got := sim.State(); got != tap.StateRunTestIdle {
		t.Errorf("simulated state = %s, want RunTestIdle", got)
	}
	if got, known := e.TAP().State(); !known || got != tap.StateRunTestIdle {
		t.Errorf("assumed state = %s (known=%v), want RunTestIdle", got, known)
	}
}

func TestTransferDRPassThrough(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	e := NewEngine(sim)
	attach(t, e)

	if err := e.WriteIR(InstrCfgIn); err != nil {
		t.Fatalf("WriteIR returned error: %v", err)
	}

	// Write-only pass fills the register; a read-only pass gets it back.
	payload := []byte{0xDE, 0xAD, 0xBE, 0x7F}
	if _, err := e.TransferDR(Shift{Bits: 32, In: payload}); err != nil {
		t.Fatalf("write TransferDR returned error: %v", err)
	}
	got, err := e.TransferDR(Shift{Bits: 32, Capture: true})
	if err != nil {
		t.Fatalf("read TransferDR returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read back %x, want %x", got, payload)
	}
}

func TestTransferDRCommandShape(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	e := NewEngine(sim)
	attach(t, e)
	if err := e.WriteIR(InstrCfgIn); err != nil {
		t.Fatalf("WriteIR returned error: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	sim.Trace = nil

	// 24 bits: two whole bytes in one byte-mode command, then the
	// eight-bit tail through the bit-mode path.
	if _, err := e.TransferDR(Shift{Bits: 24, In: []byte{0x01, 0x02, 0x03}}); err != nil {
		t.Fatalf("TransferDR returned error: %v", err)
	}

	if n := countTrace(sim, "bytes n=2 write=true read=false"); n != 1 {
		t.Errorf("byte-mode commands = %d, want 1\ntrace: %v", n, sim.Trace)
	}
	if n := countTrace(sim, "bits n=7 write=true read=false"); n != 1 {
		t.Errorf("tail bit-mode commands = %d, want 1\ntrace: %v", n, sim.Trace)
	}
	if got := sim.State(); got != tap.StateRunTestIdle {
		t.Errorf("simulated state = %s, want RunTestIdle", got)
	}
}

func TestTransferDRChunked(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	sim.RegisterLength = 128
	e := NewEngine(sim, WithChunkMax(4))
	attach(t, e)
	if err := e.WriteIR(InstrCfgIn); err != nil {
		t.Fatalf("WriteIR returned error: %v", err)
	}

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(0x10 + i)
	}

	var progress [][2]int
	s := Shift{
		Bits:    128,
		In:      payload,
		Capture: true,
		Progress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	}
	if _, err := e.TransferDR(s); err != nil {
		t.Fatalf("first TransferDR returned error: %v", err)
	}

	// 15 whole bytes split into 4+4+4+3 byte-mode commands.
	if n := countTrace(sim, "bytes n=4"); n != 3 {
		t.Errorf("full chunks = %d, want 3\ntrace: %v", n, sim.Trace)
	}
	if n := countTrace(sim, "bytes n=3"); n != 1 {
		t.Errorf("final chunk commands = %d, want 1\ntrace: %v", n, sim.Trace)
	}
	want := [][2]int{{4, 15}, {8, 15}, {12, 15}, {15, 15}}
	if len(progress) != len(want) {
		t.Fatalf("progress calls = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress calls = %v, want %v", progress, want)
		}
	}

	// Round trip through the 128-bit register proves chunk reassembly.
	s.Progress = nil
	got, err := e.TransferDR(s)
	if err != nil {
		t.Fatalf("second TransferDR returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("second capture = %x, want %x", got, payload)
	}
}

func TestTransferDRReceiveTimeout(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	sim.Starve = true
	e := NewEngine(sim, WithRecvAttempts(3))
	attach(t, e)

	_, err := e.TransferDR(Shift{Bits: 32, Capture: true})
	var to *mpsse.TimeoutError
	if !errors.As(err, &to) {
		t.Fatalf("TransferDR = %v, want TimeoutError", err)
	}
	if to.Attempts != 3 {
		t.Errorf("TimeoutError attempts = %d, want 3", to.Attempts)
	}
}

func TestTransferDRShortWrite(t *testing.T) {
	sim := NewSimTransport(simIDCODE)
	sim.WriteLimit = 2
	e := NewEngine(sim)
	attach(t, e)

	_, err := e.TransferDR(Shift{Bits: 32, In: []byte{1, 2, 3, 4}})
	var sw *mpsse.ShortWriteError
	if !errors.As(err, &sw) {
		t.Fatalf("TransferDR = %v, want ShortWriteError", err)
	}
}
