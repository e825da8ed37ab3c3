package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yml "gopkg.in/yaml.v2"

	"github.com/OpenTraceLab/OpenTraceFlash/internal/config"
)

var writeConf bool

var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "Show the effective configuration",
	Long: `Conf prints the configuration the tool would run with, defaults layered
under the optional otflash.yml. With --write it saves the defaults as a
starting point for editing.`,
	RunE: runConf,
}

func init() {
	rootCmd.AddCommand(confCmd)
	confCmd.Flags().BoolVar(&writeConf, "write", false,
		"write the default configuration to otflash.yml")
}

func runConf(cmd *cobra.Command, args []string) error {
	if writeConf {
		path := configPath
		if path == "" {
			path = config.DefaultFileName
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := yml.NewEncoder(f).Encode(config.Default()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return yml.NewEncoder(os.Stdout).Encode(cfg)
}
