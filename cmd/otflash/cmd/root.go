package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "otflash",
	Short: "OpenTraceFlash - FPGA configuration over FTDI MPSSE JTAG",
	Long: `OpenTraceFlash (otflash) uploads configuration bitstreams into FPGAs
through an FTDI FT232H-family bridge chip in MPSSE mode.

Examples:
  otflash program design.bin          # Program a Spartan-6 from a .bin file
  otflash idcode                      # Read and decode the device IDCODE
  otflash sync                        # Check the MPSSE command parser handshake
  otflash conf                        # Show the effective configuration`,
	Version: "0.2.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to otflash.yml")
}
