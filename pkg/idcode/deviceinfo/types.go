// Package deviceinfo maps parsed IDCODEs to human-readable device entries:
// part name, family and programming hints for the targets the tool is used
// with. The database is informational; whether a device can actually be
// programmed is decided by the idcode family policy, not by a lookup hit.
package deviceinfo

import "github.com/OpenTraceLab/OpenTraceFlash/pkg/idcode"

// DeviceInfo describes one known JTAG device.
type DeviceInfo struct {
	IDCode       idcode.IDCode
	Manufacturer idcode.Manufacturer

	Name        string // "XC6SLX45"
	Family      string // "Spartan-6"
	Description string

	IsFPGA   bool
	IRLength int

	DatasheetURL string
}
