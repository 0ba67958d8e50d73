package keyboard

import (
	"github.com/humblenginr/go-os/kernel/kfmt"
	"github.com/humblenginr/go-os/kernel/task"
)

// keymap translates scancode set 1 make-codes to characters for a US QWERTY
// layout. Break codes (bit 7 set), modifiers and extended codes map to 0 and
// are ignored by the printing task.
var keymap = [128]rune{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0a: '9', 0x0b: '0',
	0x0c: '-', 0x0d: '=',
	0x0f: '\t',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1a: '[', 0x1b: ']',
	0x1c: '\n',
	0x1e: 'a', 0x1f: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l',
	0x27: ';', 0x28: '\'', 0x29: '`',
	0x2b: '\\',
	0x2c: 'z', 0x2d: 'x', 0x2e: 'c', 0x2f: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm',
	0x33: ',', 0x34: '.', 0x35: '/',
	0x37: '*',
	0x39: ' ',
}

// decodeScancode returns the character for a scancode or 0 if the scancode
// does not produce one.
func decodeScancode(code byte) rune {
	if code >= 0x80 {
		// break code (key release)
		return 0
	}

	return keymap[code]
}

// printKeypressesTask drains the scancode stream and echoes decoded
// characters to the console. It never completes.
type printKeypressesTask struct {
	stream *ScancodeStream
}

// PrintKeypresses returns the long-lived consumer task that echoes keyboard
// input. The boot code spawns it on the executor.
func PrintKeypresses(stream *ScancodeStream) task.Task {
	return &printKeypressesTask{stream: stream}
}

// Poll drains every scancode currently buffered before suspending so a
// burst of keystrokes costs a single executor round trip.
func (t *printKeypressesTask) Poll(ctx *task.Context) task.Poll {
	for {
		code, state := t.stream.PollScancode(ctx)
		if state == task.Pending {
			return task.Pending
		}

		if ch := decodeScancode(code); ch != 0 {
			kfmt.Printf("%c", ch)
		}
	}
}
