// Package breakpoint implements the single software breakpoint of
// spec.md §4.3: enabling saves the original byte at an address and
// writes the INT3 trap opcode; disabling restores it. The tracing API
// only supports word-granularity memory I/O on x86-64, so a breakpoint
// must splice exactly the low-order byte of the word it touches and
// leave the other seven untouched.
package breakpoint

import (
	"github.com/SamuelVanie/vdebugger/internal/tracer"
	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

// Int3 is the single-byte x86 INT3 instruction, the breakpoint opcode
// spec.md §6 fixes.
const Int3 = 0xCC

// Breakpoint is a software breakpoint bound to one debuggee address.
type Breakpoint struct {
	tracer    tracer.Tracer
	pid       tracer.PID
	addr      uint64
	savedByte byte
	enabled   bool
}

// New constructs a Breakpoint for addr. It is not installed until
// Enable is called.
func New(t tracer.Tracer, pid tracer.PID, addr uint64) *Breakpoint {
	return &Breakpoint{tracer: t, pid: pid, addr: addr}
}

// Addr returns the breakpoint's address.
func (b *Breakpoint) Addr() uint64 { return b.addr }

// Enabled reports whether the trap byte is currently installed.
func (b *Breakpoint) Enabled() bool { return b.enabled }

// SavedByte returns the byte this breakpoint would restore on Disable.
func (b *Breakpoint) SavedByte() byte { return b.savedByte }

// AdoptEnabled marks b enabled with savedByte already known, without
// touching the debuggee. It exists for the case spec.md §9 calls out:
// installing a new breakpoint at an address that already holds 0xCC
// from a just-replaced entry must not re-peek that trap byte into
// savedByte as if it were the process-original value.
func (b *Breakpoint) AdoptEnabled(savedByte byte) {
	b.savedByte = savedByte
	b.enabled = true
}

// Enable peeks the word at the breakpoint's address, saves its
// low-order byte, splices in 0xCC, and writes the result back. Enabling
// an already-enabled breakpoint is a no-op except for refreshing
// savedByte, per spec.md §3's idempotence invariant.
//
// A failed peek is fatal: the address is unreachable. A failed poke
// after a successful peek is also fatal: the saved byte was never
// committed anywhere durable.
func (b *Breakpoint) Enable() error {
	word, err := b.tracer.PeekWord(b.pid, uintptr(b.addr))
	if err != nil {
		return vderrors.NewTraceError("breakpoint.enable.peek", vderrors.KindMemory, err)
	}

	b.savedByte = byte(word)
	trapped := (word &^ 0xFF) | Int3

	if err := b.tracer.PokeWord(b.pid, uintptr(b.addr), trapped); err != nil {
		return vderrors.NewTraceError("breakpoint.enable.poke", vderrors.KindMemory, err)
	}

	b.enabled = true
	return nil
}

// Disable peeks the word at the breakpoint's address and restores the
// saved byte. Disabling an already-disabled breakpoint is a no-op.
//
// A failed peek is fatal: it indicates the breakpoint's own address is
// gone.
func (b *Breakpoint) Disable() error {
	if !b.enabled {
		return nil
	}

	word, err := b.tracer.PeekWord(b.pid, uintptr(b.addr))
	if err != nil {
		return vderrors.NewTraceError("breakpoint.disable.peek", vderrors.KindMemory, err)
	}

	restored := (word &^ 0xFF) | uint64(b.savedByte)

	if err := b.tracer.PokeWord(b.pid, uintptr(b.addr), restored); err != nil {
		return vderrors.NewTraceError("breakpoint.disable.poke", vderrors.KindMemory, err)
	}

	b.enabled = false
	return nil
}
