// Package config loads the tool configuration. Everything has a working
// default; a YAML file only needs to exist when a board wants different
// clock budgets or a rebadged bridge chip.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
)

// DefaultFileName is looked for in the working directory when no explicit
// path is given.
const DefaultFileName = "otflash.yml"

// Config carries the programming parameters that are board- or
// device-dependent rather than protocol-mandated: the spin counts are
// empirically chosen clock budgets, and the chunk/retry/capacity values
// trade throughput against buffering.
type Config struct {
	VendorID      uint16 `koanf:"vendor_id" yaml:"vendor_id"`
	ProductID     uint16 `koanf:"product_id" yaml:"product_id"`
	TCKDivisor    uint16 `koanf:"tck_divisor" yaml:"tck_divisor"`
	ChunkSize     int    `koanf:"chunk_size" yaml:"chunk_size"`
	RecvAttempts  int    `koanf:"recv_attempts" yaml:"recv_attempts"`
	BufferSize    int    `koanf:"buffer_size" yaml:"buffer_size"`
	ShutdownSpins int    `koanf:"shutdown_spins" yaml:"shutdown_spins"`
	StartupSpins  int    `koanf:"startup_spins" yaml:"startup_spins"`
	SpinCycles    int    `koanf:"spin_cycles" yaml:"spin_cycles"`
	MaxBitstream  int    `koanf:"max_bitstream" yaml:"max_bitstream"`
}

// Default returns the configuration the tool ships with: an FT232H at full
// TCK rate, 32 KiB chunks, and the Spartan-6 clock budgets.
func Default() Config {
	return Config{
		VendorID:      0x0403,
		ProductID:     0x6014,
		TCKDivisor:    0,
		ChunkSize:     32768,
		RecvAttempts:  20,
		BufferSize:    1 << 20,
		ShutdownSpins: 500,
		StartupSpins:  500,
		SpinCycles:    1024,
		MaxBitstream:  16 * 1024 * 1024,
	}
}

// Load layers an optional YAML file over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}
	if path == "" {
		path = DefaultFileName
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such") {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}
