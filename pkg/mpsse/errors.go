package mpsse

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow reports an append past the command buffer's capacity.
	// This is a programming error: callers size the buffer for the largest
	// command sequence they ever queue between flushes.
	ErrOverflow = errors.New("mpsse: command buffer overflow")

	// ErrInvalidArgument reports an out-of-range length or a missing buffer.
	ErrInvalidArgument = errors.New("mpsse: invalid argument")

	// ErrDesync reports that the engine's command parser no longer agrees
	// with the host about command boundaries. The device must be
	// reinitialized before further use.
	ErrDesync = errors.New("mpsse: command stream desynchronized")
)

// ShortWriteError reports that the transport accepted fewer bytes than were
// handed to it. A partial command-stream write corrupts the engine's parser
// state, so this is never retried.
type ShortWriteError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("mpsse: %s: short write: %d of %d bytes accepted", e.Op, e.Got, e.Want)
}

// TimeoutError reports that the retry budget ran out before the transport
// delivered the expected number of bytes.
type TimeoutError struct {
	Op       string
	Want     int
	Got      int
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("mpsse: %s: timed out after %d attempts with %d of %d bytes received",
		e.Op, e.Attempts, e.Got, e.Want)
}
