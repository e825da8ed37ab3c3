// Package mpsse implements the command language of the FTDI MPSSE engine
// as used for JTAG: TMS sequencing, byte- and bit-mode shift commands,
// clock-only commands, and the framing of captured TDO data.
//
// The package is transport-agnostic. Commands are encoded into a Buffer and
// handed to a Transport in a single write; captured data comes back through
// Receive. Opening and configuring the FTDI device itself lives in
// USBTransport.
package mpsse

// Shift command flag bits. A shift opcode is built by OR-ing these together;
// the flag selection per operation type is fixed (write on the falling TCK
// edge, read on the rising edge, LSB-first throughout).
const (
	FlagWriteNeg byte = 0x01 // write TDI on negative TCK edge
	FlagBitMode  byte = 0x02 // shift bits, not bytes
	FlagReadNeg  byte = 0x04 // sample TDO on negative TCK edge
	FlagLSBFirst byte = 0x08 // LSB first
	FlagDoWrite  byte = 0x10 // shift data out on TDI
	FlagDoRead   byte = 0x20 // capture data from TDO
	FlagWriteTMS byte = 0x40 // drive TMS from the data byte
)

// Engine configuration and clocking commands.
const (
	CmdSetBitsLow         byte = 0x80 // value, direction for ADBUS
	CmdSetBitsHigh        byte = 0x82 // value, direction for ACBUS
	CmdLoopbackOff        byte = 0x85
	CmdTCKDivisor         byte = 0x86 // divisor low, divisor high
	CmdSendImmediate      byte = 0x87 // flush device buffer to host
	CmdDisableClkDiv5     byte = 0x8A
	CmdEnableClkDiv5      byte = 0x8B
	CmdEnable3PhaseClk    byte = 0x8C
	CmdDisable3PhaseClk   byte = 0x8D
	CmdClockBits          byte = 0x8E // clock out n+1 TCK edges, no data
	CmdClockBytes         byte = 0x8F // clock out 8*(n+1) TCK edges, no data
	CmdEnableAdaptiveClk  byte = 0x96
	CmdDisableAdaptiveClk byte = 0x97
)

// BadCommandEcho is the first byte of the two-byte reply the engine produces
// when it encounters an opcode it does not understand. The second byte is the
// offending opcode itself.
const BadCommandEcho byte = 0xFA

// BadCommandProbe is an opcode that is guaranteed to be invalid, used to
// verify that the engine's command parser is in sync with the host.
const BadCommandProbe byte = 0xAA

// TMSSequence appends a TMS drive command clocking len(pattern in bits)
// TCK cycles. The low seven bits of data carry the TMS pattern LSB-first;
// bit 7 is the TDI level held throughout the sequence. bits must be 1..7.
func (b *Buffer) TMSSequence(bits int, data byte) error {
	if bits < 1 || bits > 7 {
		return ErrInvalidArgument
	}
	cmd := FlagWriteTMS | FlagBitMode | FlagLSBFirst | FlagWriteNeg
	return b.Append(cmd, byte(bits-1), data)
}

// ShiftBytes appends a byte-mode shift of n whole bytes. tdi supplies the
// outgoing data and may be nil for a capture-only shift; read requests TDO
// capture. The encoded length field is the 16-bit little-endian value n-1,
// so n must be 1..65536.
func (b *Buffer) ShiftBytes(tdi []byte, n int, read bool) error {
	if n < 1 || n > 65536 {
		return ErrInvalidArgument
	}
	if tdi != nil && len(tdi) < n {
		return ErrInvalidArgument
	}
	cmd := FlagLSBFirst
	if tdi != nil {
		cmd |= FlagDoWrite | FlagWriteNeg
	}
	if read {
		cmd |= FlagDoRead
	}
	if err := b.Append(cmd, byte((n-1)&0xFF), byte((n-1)>>8)); err != nil {
		return err
	}
	if tdi != nil {
		return b.AppendBytes(tdi[:n])
	}
	return nil
}

// ShiftTail appends the commands that shift the final 1..8 bits of a
// register transfer and exit the shift state on the last bit's clock edge.
//
// For bits > 1 it emits a bit-mode shift of bits-1 bits followed by a
// single-bit TMS command; for bits == 1 only the TMS command is emitted.
// The TMS command drives TMS=1 so the TAP leaves Shift-IR/Shift-DR exactly
// as the last data bit is clocked; its data byte carries the final TDI bit
// in bit 7. When read is set the engine replies with one byte per emitted
// command, which CombineTail reassembles.
func (b *Buffer) ShiftTail(data byte, bits int, write, read bool) error {
	if bits < 1 || bits > 8 {
		return ErrInvalidArgument
	}
	if bits > 1 {
		cmd := FlagBitMode | FlagLSBFirst
		if write {
			cmd |= FlagDoWrite | FlagWriteNeg
		}
		if read {
			cmd |= FlagDoRead
		}
		if err := b.Append(cmd, byte(bits-2)); err != nil {
			return err
		}
		if write {
			if err := b.Append(data & byte((1<<(bits-1))-1)); err != nil {
				return err
			}
		}
	}

	cmd := FlagWriteTMS | FlagBitMode | FlagLSBFirst | FlagWriteNeg
	if read {
		cmd |= FlagDoRead
	}
	// TMS=1 in bit 0, final TDI bit in bit 7.
	last := byte(0x01)
	if write && data&(1<<(bits-1)) != 0 {
		last = 0x81
	}
	return b.Append(cmd, 0, last)
}

// ClockOnly appends clock-only commands totalling the given number of TCK
// edges, eight edges per command. TMS and TDI hold their last driven levels.
func (b *Buffer) ClockOnly(edges int) error {
	if edges < 1 {
		return ErrInvalidArgument
	}
	for edges >= 8 {
		if err := b.Append(CmdClockBits, 7); err != nil {
			return err
		}
		edges -= 8
	}
	if edges > 0 {
		return b.Append(CmdClockBits, byte(edges-1))
	}
	return nil
}

// EngineSetup appends the MPSSE initialization block: pin levels and
// directions (TMS high, TCK/TDI low, TDO input), high port all inputs,
// divide-by-5 prescaler off, TCK divisor, 3-phase clocking off, adaptive
// clocking off, then a send-immediate so any queued replies drain.
func (b *Buffer) EngineSetup(divisor uint16) error {
	return b.Append(
		CmdSetBitsLow, 0x08, 0x0B,
		CmdSetBitsHigh, 0x00, 0x00,
		CmdDisableClkDiv5,
		CmdTCKDivisor, byte(divisor&0xFF), byte(divisor>>8),
		CmdDisable3PhaseClk,
		CmdDisableAdaptiveClk,
		CmdSendImmediate,
	)
}
