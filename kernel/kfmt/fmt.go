// Package kfmt provides a minimal, allocation-free Printf implementation
// that can be safely invoked from any kernel context, including interrupt
// handlers that run before the heap allocator is available.
package kfmt

import (
	"io"
	"unsafe"
)

// maxNumBufSize defines the buffer size for formatting numbers. It is large
// enough to hold a 64-bit value formatted in base 8.
const maxNumBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numBuf [maxNumBufSize]byte

	// singleByte is a shared one-byte buffer used to emit individual
	// characters without triggering a string-to-slice conversion (which
	// would allocate).
	singleByte = []byte{0}

	// earlyBuffer captures Printf output emitted before a console has
	// been registered via SetOutputSink.
	earlyBuffer ringBuffer

	// outputSink is the io.Writer that receives Printf output. While nil,
	// output is redirected to earlyBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for Printf output to w and drains any output
// accumulated in the early boot buffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuffer)
	}
}

// Printf formats its arguments and writes them to the active output sink. It
// supports a subset of the fmt verbs:
//
//	%s  string or []byte
//	%c  byte or rune
//	%d  base-10 integer
//	%o  base-8 integer
//	%x  base-16 integer, lower-case
//	%t  boolean
//
// An optional decimal width may precede the verb; strings and base-10 values
// are left-padded with spaces, base-8/16 values with zeroes. Printf performs
// no memory allocations so it is usable from interrupt context.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes the formatted output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		nextArg int
		i       int
	)

	for i = 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			emitByte(w, ch)
			continue
		}

		// scan optional width followed by the verb
		width := 0
		i++
	scanVerb:
		for ; i < len(format); i++ {
			ch = format[i]
			switch {
			case ch == '%':
				emitByte(w, '%')
				break scanVerb
			case ch >= '0' && ch <= '9':
				width = (width * 10) + int(ch-'0')
				continue
			case ch == 'd' || ch == 'o' || ch == 'x' || ch == 's' || ch == 'c' || ch == 't':
				if nextArg >= len(args) {
					doWrite(w, errMissingArg)
					break scanVerb
				}

				switch ch {
				case 'd':
					fmtInt(w, args[nextArg], 10, width)
				case 'o':
					fmtInt(w, args[nextArg], 8, width)
				case 'x':
					fmtInt(w, args[nextArg], 16, width)
				case 's':
					fmtString(w, args[nextArg], width)
				case 'c':
					fmtChar(w, args[nextArg])
				case 't':
					fmtBool(w, args[nextArg])
				}

				nextArg++
				break scanVerb
			default:
				doWrite(w, errNoVerb)
				break scanVerb
			}
		}
	}

	for ; nextArg < len(args); nextArg++ {
		doWrite(w, errExtraArg)
	}
}

// fmtBool emits "true" or "false".
func fmtBool(w io.Writer, v interface{}) {
	bv, isBool := v.(bool)
	if !isBool {
		doWrite(w, errWrongArgType)
		return
	}

	if bv {
		doWrite(w, trueValue)
	} else {
		doWrite(w, falseValue)
	}
}

// fmtChar emits a single byte or rune argument.
func fmtChar(w io.Writer, v interface{}) {
	switch cv := v.(type) {
	case byte:
		emitByte(w, cv)
	case rune:
		// emit the UTF-8 encoding without calling utf8.EncodeRune on a
		// heap-allocated buffer
		switch {
		case cv < 0x80:
			emitByte(w, byte(cv))
		case cv < 0x800:
			emitByte(w, 0xc0|byte(cv>>6))
			emitByte(w, 0x80|byte(cv&0x3f))
		default:
			emitByte(w, 0xe0|byte(cv>>12))
			emitByte(w, 0x80|byte((cv>>6)&0x3f))
			emitByte(w, 0x80|byte(cv&0x3f))
		}
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtString emits a string or []byte value left-padded with spaces to width.
func fmtString(w io.Writer, v interface{}, width int) {
	switch sv := v.(type) {
	case string:
		emitPad(w, ' ', width-len(sv))
		// converting the string to a byte slice would allocate so emit
		// it one byte at a time
		for i := 0; i < len(sv); i++ {
			emitByte(w, sv[i])
		}
	case []byte:
		emitPad(w, ' ', width-len(sv))
		doWrite(w, sv)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtInt emits v in the requested base. Base-10 values are space-padded,
// base-8 and base-16 values are zero-padded.
func fmtInt(w io.Writer, v interface{}, base, width int) {
	var (
		sval  int64
		uval  uint64
		padCh byte = '0'
	)

	if base == 10 {
		padCh = ' '
	}

	if width >= maxNumBufSize {
		width = maxNumBufSize - 1
	}

	switch iv := v.(type) {
	case uint8:
		uval = uint64(iv)
	case uint16:
		uval = uint64(iv)
	case uint32:
		uval = uint64(iv)
	case uint64:
		uval = iv
	case uint:
		uval = uint64(iv)
	case uintptr:
		uval = uint64(iv)
	case int8:
		sval = int64(iv)
	case int16:
		sval = int64(iv)
	case int32:
		sval = int64(iv)
	case int64:
		sval = iv
	case int:
		sval = int64(iv)
	default:
		doWrite(w, errWrongArgType)
		return
	}

	negative := sval < 0
	if negative {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	// format digits in reverse order
	end := 0
	for {
		digit := byte(uval % uint64(base))
		if digit < 10 {
			numBuf[end] = digit + '0'
		} else {
			numBuf[end] = digit - 10 + 'a'
		}
		end++

		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}

	if negative && padCh == '0' {
		numBuf[end] = '-'
		end++
		negative = false
	}

	for ; end < width; end++ {
		numBuf[end] = padCh
	}

	if negative {
		// place the sign on the rightmost blank pad char or append it
		pos := end - 1
		for pos > 0 && numBuf[pos] == ' ' && numBuf[pos-1] == ' ' {
			pos--
		}
		if numBuf[pos] != ' ' {
			pos = end
			end++
		}
		numBuf[pos] = '-'
	}

	// reverse in place and emit
	for left, right := 0, end-1; left < right; left, right = left+1, right-1 {
		numBuf[left], numBuf[right] = numBuf[right], numBuf[left]
	}

	doWrite(w, numBuf[0:end])
}

// emitByte writes a single byte through the shared one-byte buffer.
func emitByte(w io.Writer, ch byte) {
	singleByte[0] = ch
	doWrite(w, singleByte)
}

// emitPad writes count copies of ch; count may be negative.
func emitPad(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		emitByte(w, ch)
	}
}

// doWrite is a proxy that uses the runtime noescape hack to hide p from the
// compiler's escape analysis. Without it the compiler cannot prove that p
// does not escape through the io.Writer and every Printf call would allocate,
// crashing the kernel when invoked before the Go allocator is bootstrapped.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
