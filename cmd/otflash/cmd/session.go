package cmd

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceFlash/internal/config"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
)

var (
	transportKind string
	simIDCode     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&transportKind, "transport", "t", "ftdi",
		"transport backend (ftdi or sim)")
	rootCmd.PersistentFlags().StringVar(&simIDCode, "sim-idcode", "0x34008093",
		"simulator: IDCODE to report")
}

// openSession builds a session on the selected transport, runs the MPSSE
// setup block and verifies the command-parser handshake. The caller owns
// the returned session and must Close it.
func openSession(cfg config.Config) (*jtag.Session, error) {
	var conn mpsse.Transport
	switch transportKind {
	case "sim":
		id, err := strconv.ParseUint(simIDCode, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --sim-idcode %q: %w", simIDCode, err)
		}
		conn = jtag.NewSimTransport(uint32(id))
	case "ftdi":
		t, err := mpsse.OpenFTDI(cfg.VendorID, cfg.ProductID)
		if err != nil {
			return nil, err
		}
		conn = t
	default:
		return nil, fmt.Errorf("unknown transport %q (want ftdi or sim)", transportKind)
	}

	sess := jtag.NewSession(conn,
		jtag.WithChunkMax(cfg.ChunkSize),
		jtag.WithRecvAttempts(cfg.RecvAttempts),
		jtag.WithBufferSize(cfg.BufferSize),
	)
	if err := sess.Setup(cfg.TCKDivisor); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.Sync(); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}
