package deviceinfo

// Xilinx device entries. Part numbers are IDCODE bits [27:12] of the
// family's published codes.
func init() {
	const xilinx = 0x049 // Xilinx JEP106 code

	// Spartan-6 LX series
	register(key{ManufacturerCode: xilinx, PartNumber: 0x4000}, DeviceInfo{
		Name:        "XC6SLX4",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 3840 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x4001}, DeviceInfo{
		Name:         "XC6SLX9",
		Family:       "Spartan-6",
		Description:  "Spartan-6 LX FPGA, 9152 logic cells",
		IsFPGA:       true,
		IRLength:     6,
		DatasheetURL: "https://docs.amd.com/v/u/en-US/ds160",
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x4002}, DeviceInfo{
		Name:        "XC6SLX16",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 14579 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x4004}, DeviceInfo{
		Name:        "XC6SLX25",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 24051 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x4008}, DeviceInfo{
		Name:        "XC6SLX45",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 43661 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x400E}, DeviceInfo{
		Name:        "XC6SLX75",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 74637 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x4011}, DeviceInfo{
		Name:        "XC6SLX100",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 101261 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})

	register(key{ManufacturerCode: xilinx, PartNumber: 0x401D}, DeviceInfo{
		Name:        "XC6SLX150",
		Family:      "Spartan-6",
		Description: "Spartan-6 LX FPGA, 147443 logic cells",
		IsFPGA:      true,
		IRLength:    6,
	})
}
