package kfmt

import (
	"bytes"
	"io"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	expStr := "the big brown fox jumped over the lazy dog"

	t.Run("read/write", func(t *testing.T) {
		var rb ringBuffer
		if _, err := rb.Write([]byte(expStr)); err != nil {
			t.Fatal(err)
		}

		if got := readByteByByte(&rb); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}

		if _, err := rb.Read(make([]byte, 1)); err != io.EOF {
			t.Fatalf("expected io.EOF after draining the buffer; got %v", err)
		}
	})

	t.Run("write overwrites oldest data", func(t *testing.T) {
		var rb ringBuffer
		rb.wIndex = earlyBufferSize - 1
		rb.rIndex = earlyBufferSize - 1

		if _, err := rb.Write([]byte(expStr)); err != nil {
			t.Fatal(err)
		}

		if got := readByteByByte(&rb); got != expStr {
			t.Fatalf("expected wrapped read to return %q; got %q", expStr, got)
		}
	})

	t.Run("full buffer keeps most recent output", func(t *testing.T) {
		var rb ringBuffer
		payload := make([]byte, earlyBufferSize+8)
		for i := range payload {
			payload[i] = byte('a' + (i % 16))
		}

		if _, err := rb.Write(payload); err != nil {
			t.Fatal(err)
		}

		got := readByteByByte(&rb)
		exp := string(payload[len(payload)-(earlyBufferSize-1):])
		if got != exp {
			t.Fatalf("expected the most recent %d bytes to survive; got %d bytes", len(exp), len(got))
		}
	})
}

func readByteByByte(r io.Reader) string {
	var (
		buf bytes.Buffer
		b   [1]byte
	)

	for {
		n, err := r.Read(b[:])
		if n == 1 {
			buf.WriteByte(b[0])
		}
		if err != nil {
			return buf.String()
		}
	}
}
