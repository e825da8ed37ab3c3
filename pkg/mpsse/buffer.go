package mpsse

import "fmt"

// DefaultBufferSize is the default command buffer capacity. It comfortably
// holds one transfer chunk's worth of commands plus payload.
const DefaultBufferSize = 1 << 20

// Buffer is a capacity-bounded command queue. Commands accumulate until the
// caller flushes them to the transport in a single write; there is no
// implicit flush. A Buffer is not safe for concurrent use: exactly one
// session owns it for its lifetime.
type Buffer struct {
	data []byte
	max  int
}

// NewBuffer returns an empty buffer that holds at most capacity bytes.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{data: make([]byte, 0, capacity), max: capacity}
}

// Append queues the given bytes, failing with ErrOverflow if the capacity
// would be exceeded. On overflow the buffer is left unchanged.
func (b *Buffer) Append(p ...byte) error {
	return b.AppendBytes(p)
}

// AppendBytes queues the given bytes, failing with ErrOverflow if the
// capacity would be exceeded.
func (b *Buffer) AppendBytes(p []byte) error {
	if len(b.data)+len(p) > b.max {
		return ErrOverflow
	}
	b.data = append(b.data, p...)
	return nil
}

// Len reports the number of queued bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns a copy of the queued bytes.
func (b *Buffer) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Reset discards any queued bytes.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Flush hands the queued bytes to the transport in one write and empties the
// buffer on success. A transport that accepts fewer bytes than given leaves
// the engine's parser in an unknown state, so the error is surfaced and the
// buffer is left intact for diagnosis. Flushing an empty buffer is a no-op.
func (b *Buffer) Flush(t Transport) error {
	if len(b.data) == 0 {
		return nil
	}
	n, err := t.Write(b.data)
	if err != nil {
		return fmt.Errorf("mpsse: flush: %w", err)
	}
	if n != len(b.data) {
		return &ShortWriteError{Op: "flush", Want: len(b.data), Got: n}
	}
	b.data = b.data[:0]
	return nil
}
