package kernel

import "github.com/humblenginr/go-os/kernel/kfmt"

var (
	// haltFn permanently halts the CPU. It is overridable so tests can
	// observe panics without hanging the test binary. On real hardware
	// the boot collaborator installs a hlt-loop here.
	haltFn = func() {
		for {
		}
	}

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the console and halts the
// CPU. Calls to Panic never return.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	kfmt.Printf("\n-----------------------------------\n")
	if err != nil {
		kfmt.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	kfmt.Printf("*** kernel panic: system halted ***")
	kfmt.Printf("\n-----------------------------------\n")

	haltFn()
}

// SetHaltFn overrides the function invoked by Panic to halt the CPU. The boot
// collaborator installs the real hlt-loop here before any subsystem can
// panic.
func SetHaltFn(fn func()) {
	haltFn = fn
}
