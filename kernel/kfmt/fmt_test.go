package kfmt

import (
	"bytes"
	"testing"
)

func TestFprintf(t *testing.T) {
	specs := []struct {
		fmt  string
		args []interface{}
		exp  string
	}{
		{"no verbs", nil, "no verbs"},
		{"literal %% percent", nil, "literal % percent"},
		{"%s and %s", []interface{}{"foo", []byte("bar")}, "foo and bar"},
		{"%5s|", []interface{}{"ab"}, "   ab|"},
		{"%d", []interface{}{42}, "42"},
		{"%d", []interface{}{-42}, "-42"},
		{"%5d|", []interface{}{-42}, "  -42|"},
		{"%d", []interface{}{uint64(18446744073709551615)}, "18446744073709551615"},
		{"%o", []interface{}{uint8(8)}, "10"},
		{"%x", []interface{}{uintptr(0xbadf00d)}, "badf00d"},
		{"%8x|", []interface{}{uint32(0xf00)}, "00000f00|"},
		{"%t %t", []interface{}{true, false}, "true false"},
		{"%c%c%c", []interface{}{byte('a'), 'b', 'λ'}, "abλ"},
		{"%d", nil, "(MISSING)"},
		{"%d", []interface{}{"nan"}, "%!(WRONGTYPE)"},
		{"%s", []interface{}{42}, "%!(WRONGTYPE)"},
		{"%t", []interface{}{42}, "%!(WRONGTYPE)"},
		{"%q", []interface{}{42}, "%!(NOVERB)%!(EXTRA)"},
		{"", []interface{}{42}, "%!(EXTRA)"},
	}

	var buf bytes.Buffer
	for specIndex, spec := range specs {
		buf.Reset()
		Fprintf(&buf, spec.fmt, spec.args...)

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected Fprintf(%q) to emit %q; got %q", specIndex, spec.fmt, spec.exp, got)
		}
	}
}

func TestPrintfRedirectsToEarlyBufferWithoutSink(t *testing.T) {
	defer func() {
		outputSink = nil
		earlyBuffer.rIndex = 0
		earlyBuffer.wIndex = 0
	}()
	outputSink = nil
	earlyBuffer.rIndex = 0
	earlyBuffer.wIndex = 0

	Printf("frame %d", 123)

	var buf bytes.Buffer
	SetOutputSink(&buf)

	if exp, got := "frame 123", buf.String(); got != exp {
		t.Fatalf("expected SetOutputSink to drain %q from the early buffer; got %q", exp, got)
	}

	// with a sink registered, output must bypass the early buffer
	Printf(" and %d", 456)
	if exp, got := "frame 123 and 456", buf.String(); got != exp {
		t.Fatalf("expected output to go directly to the sink; got %q", got)
	}
}
