package jtag

// Spartan-6 instruction register opcodes. The IR is six bits wide; the
// engine treats these as opaque values defined by the target device.
const (
	InstrExtest     byte = 0x0F
	InstrSample     byte = 0x01
	InstrPreload    byte = 0x01
	InstrUsercode   byte = 0x08
	InstrIDCODE     byte = 0x09
	InstrHighZ      byte = 0x0A
	InstrJProgram   byte = 0x0B
	InstrJStart     byte = 0x0C
	InstrJShutdown  byte = 0x0D
	InstrCfgIn      byte = 0x05
	InstrIntest     byte = 0x07
	InstrISCEnable  byte = 0x10
	InstrISCProgram byte = 0x11
	InstrISCNoop    byte = 0x14
	InstrISCDisable byte = 0x16
	InstrISCDNA     byte = 0x30
	InstrBypass     byte = 0x3F
)

// IRLength is the instruction register width of the devices this engine
// drives. Chains with other widths are out of scope.
const IRLength = 6
