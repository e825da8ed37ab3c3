package mpsse

import (
	"bytes"
	"errors"
	"testing"
)

func TestReceiveWholeReply(t *testing.T) {
	tr := &fakeTransport{replies: []byte{1, 2, 3, 4}}
	buf := make([]byte, 4)

	if err := Receive(tr, buf, 0); err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
		t.Fatalf("Receive got %v", buf)
	}
}

func TestReceiveSplitReply(t *testing.T) {
	tr := &fakeTransport{replies: []byte{1, 2, 3, 4, 5}, chunk: 2}
	buf := make([]byte, 5)

	if err := Receive(tr, buf, 0); err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Receive got %v", buf)
	}
	if tr.reads != 3 {
		t.Fatalf("reads = %d, want 3", tr.reads)
	}
}

func TestReceiveTimesOutInsteadOfHanging(t *testing.T) {
	tr := &fakeTransport{starve: true}
	buf := make([]byte, 4)

	err := Receive(tr, buf, 5)
	var to *TimeoutError
	if !errors.As(err, &to) {
		t.Fatalf("Receive = %v, want TimeoutError", err)
	}
	if to.Attempts != 5 || to.Got != 0 || to.Want != 4 {
		t.Fatalf("TimeoutError = %+v", to)
	}
	if tr.reads != 5 {
		t.Fatalf("reads = %d, want exactly the attempt budget", tr.reads)
	}
}

func TestReceivePartialThenTimeout(t *testing.T) {
	tr := &fakeTransport{replies: []byte{1, 2}, chunk: 1}
	buf := make([]byte, 4)

	err := Receive(tr, buf, 3)
	var to *TimeoutError
	if !errors.As(err, &to) {
		t.Fatalf("Receive = %v, want TimeoutError", err)
	}
	if to.Got != 2 || to.Want != 4 {
		t.Fatalf("TimeoutError counts = %d of %d, want 2 of 4", to.Got, to.Want)
	}
}

func TestReceiveTransportError(t *testing.T) {
	cause := errors.New("pipe error")
	tr := &fakeTransport{readErr: cause}

	err := Receive(tr, make([]byte, 1), 0)
	if !errors.Is(err, cause) {
		t.Fatalf("Receive = %v, want wrapped transport error", err)
	}
}
