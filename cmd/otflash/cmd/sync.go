package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlash/internal/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Verify the MPSSE command parser handshake",
	Long: `Sync sends a deliberately invalid opcode and checks for the engine's
fixed two-byte bad-command echo. A mismatch means the command parser is
desynchronized and the bridge chip needs reinitializing.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// openSession already performs the handshake; reaching here means it
	// passed once. Run it again explicitly so the command exercises the
	// same path a recovering caller would.
	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Sync(); err != nil {
		return err
	}
	fmt.Println("command parser in sync")
	return nil
}
