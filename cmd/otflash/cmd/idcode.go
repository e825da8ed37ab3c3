package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlash/internal/config"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/idcode/deviceinfo"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Read and decode the device IDCODE",
	RunE:  runIDCode,
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}

func runIDCode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Attach(); err != nil {
		return err
	}
	id, err := sess.ReadIDCODE()
	if err != nil {
		return err
	}

	fmt.Println(idcode.Parse(id))
	info := deviceinfo.Lookup(id)
	if info.Family != "" {
		fmt.Printf("device: %s (%s)\n", info.Name, info.Family)
	} else {
		fmt.Printf("device: %s\n", info.Name)
	}
	if info.Description != "" {
		fmt.Println(info.Description)
	}
	if idcode.IsSupportedFPGA(id) {
		fmt.Println("supported FPGA family")
	} else {
		fmt.Println("not a supported FPGA family")
	}
	return nil
}
