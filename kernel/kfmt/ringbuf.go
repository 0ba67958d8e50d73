package kfmt

import "io"

// earlyBufferSize defines the size of the ring buffer that captures Printf
// output generated before a console is registered. It must be a power of 2.
const earlyBufferSize = 2048

// ringBuffer is a fixed-size overwriting ring. When the buffer fills up, the
// oldest captured output is discarded so the most recent boot messages are
// the ones that survive until a console shows up.
type ringBuffer struct {
	buffer         [earlyBufferSize]byte
	rIndex, wIndex int
}

// Write writes len(p) bytes from p to the ring, advancing the read index
// whenever the write index laps it.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (earlyBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (earlyBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p, returning io.EOF once the captured
// output is fully drained.
func (rb *ringBuffer) Read(p []byte) (n int, err error) {
	switch {
	case rb.rIndex < rb.wIndex:
		n = rb.wIndex - rb.rIndex
		if len(p) < n {
			n = len(p)
		}

		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex += n

		return n, nil
	case rb.rIndex > rb.wIndex:
		// read the tail segment first; the next Read call picks up the
		// wrapped-around head
		n = len(rb.buffer) - rb.rIndex
		if len(p) < n {
			n = len(p)
		}

		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex += n

		if rb.rIndex == len(rb.buffer) {
			rb.rIndex = 0
		}

		return n, nil
	default:
		return 0, io.EOF
	}
}
