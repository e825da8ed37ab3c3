package tap

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
)

// Transition patterns, one per exported operation. Bit 7 of the data byte is
// the TDI level held while the sequence clocks; the low bits carry TMS
// LSB-first. These are fixed by the TAP state graph, not configurable.
const (
	patternForceReset  = 0x9F // TMS 1,1,1,1,1 with TDI held high
	patternResetToIdle = 0x80 // TMS 0
	patternIdleToIR    = 0x83 // TMS 1,1,0,0
	patternIdleToDR    = 0x81 // TMS 1,0,0
	patternExit1ToIdle = 0x81 // TMS 1,0
	bitsForceReset     = 5
	bitsResetToIdle    = 1
	bitsIdleToIR       = 4
	bitsIdleToDR       = 3
	bitsExit1ToIdle    = 2
)

// DefaultSpinCycles is the number of TCK edges one SpinIdle call burns when
// the caller has no better number: 128 clock-only commands of 8 edges each,
// matching the clock budget FPGA shutdown/startup sequencing was tuned with.
const DefaultSpinCycles = 128 * 8

// Controller encodes TAP state transitions as TMS commands into a command
// buffer while tracking the state the hardware is assumed to be in. The
// model is write-only: there is no hardware read-back, so the tracked state
// is only correct if every clocked TMS bit goes through this controller (or
// is reported to it via ShiftExit). Calling a transition from the wrong
// assumed state is an immediate error rather than a silently wrong bit
// sequence.
type Controller struct {
	buf   *mpsse.Buffer
	state State
	known bool
}

// NewController returns a controller bound to buf. The assumed state starts
// unknown; ForceReset is the only transition valid before the first reset.
func NewController(buf *mpsse.Buffer) *Controller {
	return &Controller{buf: buf}
}

// State reports the assumed TAP state. The second return is false until the
// first ForceReset establishes a known state.
func (c *Controller) State() (State, bool) {
	return c.state, c.known
}

func (c *Controller) require(op string, from State) error {
	if !c.known {
		return fmt.Errorf("tap: %s: assumed state unknown, force a reset first", op)
	}
	if c.state != from {
		return fmt.Errorf("tap: %s requires %s, assumed state is %s", op, from, c.state)
	}
	return nil
}

func (c *Controller) emit(bits int, pattern byte, to State) error {
	if err := c.buf.TMSSequence(bits, pattern); err != nil {
		return err
	}
	c.state = to
	c.known = true
	return nil
}

// ForceReset clocks five TMS=1 cycles, reaching Test-Logic-Reset from any
// state. It is the only transition valid when the assumed state is unknown.
func (c *Controller) ForceReset() error {
	return c.emit(bitsForceReset, patternForceReset, StateTestLogicReset)
}

// ResetToIdle moves Test-Logic-Reset to Run-Test/Idle.
func (c *Controller) ResetToIdle() error {
	if err := c.require("ResetToIdle", StateTestLogicReset); err != nil {
		return err
	}
	return c.emit(bitsResetToIdle, patternResetToIdle, StateRunTestIdle)
}

// IdleToShiftIR moves Run-Test/Idle to Shift-IR.
func (c *Controller) IdleToShiftIR() error {
	if err := c.require("IdleToShiftIR", StateRunTestIdle); err != nil {
		return err
	}
	return c.emit(bitsIdleToIR, patternIdleToIR, StateShiftIR)
}

// IdleToShiftDR moves Run-Test/Idle to Shift-DR.
func (c *Controller) IdleToShiftDR() error {
	if err := c.require("IdleToShiftDR", StateRunTestIdle); err != nil {
		return err
	}
	return c.emit(bitsIdleToDR, patternIdleToDR, StateShiftDR)
}

// Exit1IRToIdle moves Exit1-IR back to Run-Test/Idle.
func (c *Controller) Exit1IRToIdle() error {
	if err := c.require("Exit1IRToIdle", StateExit1IR); err != nil {
		return err
	}
	return c.emit(bitsExit1ToIdle, patternExit1ToIdle, StateRunTestIdle)
}

// Exit1DRToIdle moves Exit1-DR back to Run-Test/Idle.
func (c *Controller) Exit1DRToIdle() error {
	if err := c.require("Exit1DRToIdle", StateExit1DR); err != nil {
		return err
	}
	return c.emit(bitsExit1ToIdle, patternExit1ToIdle, StateRunTestIdle)
}

// ShiftExit records that the transfer engine's final-bit command drove
// TMS=1, moving Shift-IR to Exit1-IR or Shift-DR to Exit1-DR. The engine
// owns that command because exiting the shift state must coincide with the
// last data bit's clock edge; the controller only tracks the result.
func (c *Controller) ShiftExit() error {
	if !c.known {
		return fmt.Errorf("tap: ShiftExit: assumed state unknown")
	}
	switch c.state {
	case StateShiftIR:
		c.state = StateExit1IR
	case StateShiftDR:
		c.state = StateExit1DR
	default:
		return fmt.Errorf("tap: ShiftExit: assumed state is %s, not a shift state", c.state)
	}
	return nil
}

// SpinIdle holds TMS low and appends clock-only commands totalling cycles
// TCK edges, letting the target consume clock time while the TAP sits in
// Run-Test/Idle. This is a clock budget, not a wall-clock delay.
func (c *Controller) SpinIdle(cycles int) error {
	if err := c.require("SpinIdle", StateRunTestIdle); err != nil {
		return err
	}
	if cycles < 1 {
		return mpsse.ErrInvalidArgument
	}
	// One explicit TMS=0 cycle pins the TMS level before the clock-only
	// commands free-run; the TAP stays in Run-Test/Idle throughout.
	if err := c.buf.TMSSequence(1, 0x80); err != nil {
		return err
	}
	return c.buf.ClockOnly(cycles)
}
