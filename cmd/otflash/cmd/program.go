package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"

	"github.com/OpenTraceLab/OpenTraceFlash/internal/config"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/jtag"
)

var skipIDCheck bool

var programCmd = &cobra.Command{
	Use:   "program <bitstream.bin>",
	Short: "Upload a configuration bitstream to the FPGA",
	Long: `Program reads a .bin bitstream, checks that the attached device is a
supported FPGA family, and runs the shutdown/configure/start sequence to
load the design.

Examples:
  otflash program design.bin
  otflash program --transport sim design.bin     # dry run against the simulator
  otflash program --skip-id-check design.bin     # program regardless of IDCODE`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(programCmd)
	programCmd.Flags().BoolVar(&skipIDCheck, "skip-id-check", false,
		"program even if the IDCODE is not a recognized FPGA family")
}

func runProgram(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	img, err := bitstream.Load(args[0], cfg.MaxBitstream)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("loaded %d payload bytes (%d bits)\n", len(img.Data), img.Bits)
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
	fmt.Printf("idcode = %s\n", idcode.Parse(id))
	if !skipIDCheck && !idcode.IsSupportedFPGA(id) {
		return fmt.Errorf("device 0x%08X is not a supported FPGA family (use --skip-id-check to override)", id)
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " programming",
		SuffixAutoColon: true,
		StopCharacter:   "done",
	})
	if err == nil {
		spinner.Start()
	}

	opts := jtag.DefaultProgramOptions()
	opts.ShutdownSpins = cfg.ShutdownSpins
	opts.StartupSpins = cfg.StartupSpins
	opts.SpinCycles = cfg.SpinCycles
	if spinner != nil {
		opts.Progress = func(done, total int) {
			if total > 0 {
				spinner.Message(fmt.Sprintf("%d/%d bytes", done, total))
			}
		}
	}

	perr := sess.Program(img.Data, img.Bits, opts)
	if spinner != nil {
		if perr != nil {
			spinner.StopFail()
		} else {
			spinner.Stop()
		}
	}
	if perr != nil {
		return perr
	}

	fmt.Printf("sent %d configuration bytes\n", len(img.Data))
	return nil
}
