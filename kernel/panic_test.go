package kernel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/humblenginr/go-os/kernel/kfmt"
)

func TestPanic(t *testing.T) {
	defer func(origHaltFn func()) { haltFn = origHaltFn }(haltFn)

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)
	defer kfmt.SetOutputSink(nil)

	specs := []struct {
		input  interface{}
		expMsg string
	}{
		{&Error{Module: "test", Message: "error message"}, "[test] unrecoverable error: error message"},
		{"string panic", "[rt] unrecoverable error: string panic"},
		{nil, "kernel panic: system halted"},
	}

	for specIndex, spec := range specs {
		buf.Reset()

		haltCallCount := 0
		haltFn = func() { haltCallCount++ }

		Panic(spec.input)

		if haltCallCount != 1 {
			t.Errorf("[spec %d] expected Panic to halt the CPU exactly once; got %d calls", specIndex, haltCallCount)
		}

		if got := buf.String(); !strings.Contains(got, spec.expMsg) {
			t.Errorf("[spec %d] expected panic output to contain %q; got %q", specIndex, spec.expMsg, got)
		}
	}
}
