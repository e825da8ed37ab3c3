// Package bitstream loads FPGA configuration payloads and prepares them for
// the wire. The payload itself is opaque; the only transformation applied
// is the per-byte bit reversal the shift path requires, because the device
// consumes configuration bits MSB-first while the MPSSE engine always
// shifts LSB-first.
package bitstream

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceFlash/pkg/mpsse"
)

// DefaultMaxSize caps how much payload is read. Spartan-6 bitstreams top
// out well below this.
const DefaultMaxSize = 16 * 1024 * 1024

// Image is a wire-ready configuration payload: bytes already bit-reversed,
// with the bit length the data register transfer needs.
type Image struct {
	Data []byte
	Bits int
}

// Load reads a .bin bitstream from path and returns it wire-ready.
func Load(path string, maxSize int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bitstream: %w", err)
	}
	defer f.Close()
	img, err := FromReader(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("bitstream: %s: %w", path, err)
	}
	return img, nil
}

// FromReader reads at most maxSize payload bytes from r (DefaultMaxSize if
// maxSize <= 0). An empty payload or one that does not fit under the cap is
// an error: a truncated bitstream would brick the configuration attempt in
// a way the transfer layer cannot detect.
func FromReader(r io.Reader, maxSize int) (*Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("payload exceeds %d byte cap", maxSize)
	}
	mpsse.ReverseBuffer(data)
	return &Image{Data: data, Bits: len(data) * 8}, nil
}
