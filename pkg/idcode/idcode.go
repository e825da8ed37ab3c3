// Package idcode decodes IEEE 1149.1 device identification codes and holds
// the device-identification policy the programmer applies before touching a
// target: the 32-bit value splits into version, part number and a JEP106
// manufacturer code, and a family mask decides whether the part is one we
// know how to configure.
package idcode

import "fmt"

// IDCode represents a parsed IEEE 1149.1 JTAG IDCODE.
type IDCode struct {
	Raw              uint32 // full IDCODE
	Version          uint8  // [31:28]
	PartNumber       uint16 // [27:12]
	ManufacturerCode uint16 // [11:1] JEP106
	HasIDCode        bool   // bit 0 == 1
}

// Parse splits a raw 32-bit IDCODE into its component fields.
func Parse(raw uint32) IDCode {
	return IDCode{
		Raw:              raw,
		Version:          uint8((raw >> 28) & 0xF),
		PartNumber:       uint16((raw >> 12) & 0xFFFF),
		ManufacturerCode: uint16((raw >> 1) & 0x7FF),
		HasIDCode:        (raw & 0x1) == 0x1,
	}
}

// String returns a formatted representation of the IDCODE.
func (id IDCode) String() string {
	m, _ := LookupManufacturer(id.ManufacturerCode)
	return fmt.Sprintf("0x%08X (Mfg: %s, Part: 0x%04X, Ver: %d)",
		id.Raw, m.Name, id.PartNumber, id.Version)
}

// Xilinx family policy: the low 21 bits carry the manufacturer code and the
// family field shared by the Spartan-6 parts this tool programs.
const (
	xilinxFamilyMask  = 0x001FFFFF
	xilinxFamilyValue = 0x00008093
)

// IsSupportedFPGA reports whether the decoded IDCODE belongs to a device
// family the programming sequence is known to work on.
func IsSupportedFPGA(raw uint32) bool {
	return raw&xilinxFamilyMask == xilinxFamilyValue
}
