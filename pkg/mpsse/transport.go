package mpsse

import "fmt"

// Transport moves raw bytes to and from the bridge chip. Write hands a
// complete command stream to the device; Read returns whatever reply bytes
// are available, possibly fewer than requested. Both block. The core uses
// no other device operations: open, mode configuration, and reset are
// established by whoever constructs the Transport.
type Transport interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// DefaultRecvAttempts bounds the Receive retry loop. USB latency means a
// reply rarely arrives in one read, but a device that produces nothing for
// this many rounds is not going to.
const DefaultRecvAttempts = 20

// Receive reads from t until buf is full. The attempt counter decrements on
// every read, whether or not it made progress; when it runs out with bytes
// still outstanding a TimeoutError is returned instead of looping forever.
func Receive(t Transport, buf []byte, attempts int) error {
	if attempts <= 0 {
		attempts = DefaultRecvAttempts
	}
	total := len(buf)
	off := 0
	remaining := attempts
	for off < total {
		n, err := t.Read(buf[off:])
		if err != nil {
			return fmt.Errorf("mpsse: receive: %w", err)
		}
		off += n
		remaining--
		if remaining <= 0 && off < total {
			return &TimeoutError{Op: "receive", Want: total, Got: off, Attempts: attempts}
		}
	}
	return nil
}
