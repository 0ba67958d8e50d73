// Package kmain wires the memory and task subsystems together into the
// kernel entry point invoked by the boot collaborator.
package kmain

import (
	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/hal/bootinfo"
	"github.com/humblenginr/go-os/kernel/kfmt"
	"github.com/humblenginr/go-os/kernel/mm"
	"github.com/humblenginr/go-os/kernel/mm/kheap"
	"github.com/humblenginr/go-os/kernel/mm/pmm"
	"github.com/humblenginr/go-os/kernel/mm/vmm"
	"github.com/humblenginr/go-os/kernel/task"
	"github.com/humblenginr/go-os/kernel/task/keyboard"
)

var (
	// The process-wide singletons live here as statics so they exist
	// before any heap does; every subsystem receives them as explicit
	// references instead of reaching for package globals.
	frameAllocator pmm.BootFrameAllocator
	kernelHeap     kheap.BumpAllocator
	keyboardBridge keyboard.Bridge

	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// KeyboardBridge exposes the producer end of the scancode bridge. The
// interrupt-dispatch collaborator routes the keyboard IRQ handler's
// PutScancode calls through it after reading the scancode from the I/O
// port, and acknowledges the interrupt controller once the call returns
// regardless of the push outcome.
func KeyboardBridge() *keyboard.Bridge {
	return &keyboardBridge
}

// Kmain is invoked by the boot collaborator after it has set up the CPU
// descriptor tables, the interrupt dispatch table and the linear mapping of
// physical memory at physMemOffset. memoryMap describes the firmware-usable
// physical memory and pml4 is the frame holding the active top-level page
// table.
//
// Kmain is not expected to return: with the keyboard consumer spawned the
// executor loop runs forever.
func Kmain(memoryMap bootinfo.MemoryMap, physMemOffset uintptr, pml4 mm.Frame) {
	memoryMap.Print()

	frameAllocator.Init(memoryMap)
	addrSpace := vmm.NewAddressSpace(physMemOffset, pml4, frameAllocator.AllocFrame)

	if err := kheap.InitHeap(&addrSpace, frameAllocator.AllocFrame, &kernelHeap); err != nil {
		kernel.Panic(err)
	}
	kfmt.Printf("[kmain] heap initialized: %d bytes at 0x%x\n", uint64(kheap.HeapSize), kheap.HeapStart)

	stream, err := keyboardBridge.OpenStream()
	if err != nil {
		kernel.Panic(err)
	}

	var executor task.Executor
	executor.Spawn(keyboard.PrintKeypresses(stream))
	executor.Run()

	kernel.Panic(errKmainReturned)
}
