package tracer

import (
	"golang.org/x/sys/unix"
)

// Fake is an in-memory Tracer used only by tests. It simulates a
// debuggee's byte-addressable memory and register bank without a real
// kernel or child process, satisfying the injectable-capability
// requirement of spec.md's Design Notes (and the mockall-style PtraceOps
// trait original_source/breakpoint.rs builds for the same reason).
//
// Continue and Step treat every byte as a one-byte instruction: stepping
// advances Rip by one, and continuing scans forward byte by byte until
// it finds the trap opcode 0xCC or the configured exit address.
type Fake struct {
	Mem      map[uint64]byte
	Regs     unix.PtraceRegs
	ExitAddr uint64
	exited   bool
	killed   bool
}

var _ Tracer = (*Fake)(nil)

// NewFake returns a Fake tracer with an empty memory image and Rip at 0.
func NewFake() *Fake {
	return &Fake{Mem: make(map[uint64]byte)}
}

// SetWord seeds the fake debuggee's memory at addr with an 8-byte
// little-endian word, the granularity spec.md fixes for peek/poke.
func (f *Fake) SetWord(addr uint64, word uint64) {
	for i := uint64(0); i < 8; i++ {
		f.Mem[addr+i] = byte(word >> (8 * i))
	}
}

func (f *Fake) PeekWord(pid PID, addr uintptr) (uint64, error) {
	if f.exited || f.killed {
		return 0, unix.ESRCH
	}
	var word uint64
	for i := uint64(0); i < 8; i++ {
		word |= uint64(f.Mem[uint64(addr)+i]) << (8 * i)
	}
	return word, nil
}

func (f *Fake) PokeWord(pid PID, addr uintptr, word uint64) error {
	if f.exited || f.killed {
		return unix.ESRCH
	}
	f.SetWord(uint64(addr), word)
	return nil
}

func (f *Fake) GetRegs(pid PID) (unix.PtraceRegs, error) {
	if f.exited || f.killed {
		return unix.PtraceRegs{}, unix.ESRCH
	}
	return f.Regs, nil
}

func (f *Fake) SetRegs(pid PID, regs unix.PtraceRegs) error {
	if f.exited || f.killed {
		return unix.ESRCH
	}
	f.Regs = regs
	return nil
}

func (f *Fake) Step(pid PID) error {
	if f.exited || f.killed {
		return unix.ESRCH
	}
	f.Regs.Rip++
	if f.Regs.Rip == f.ExitAddr {
		f.exited = true
	}
	return nil
}

func (f *Fake) Cont(pid PID) error {
	if f.exited || f.killed {
		return unix.ESRCH
	}
	for {
		if f.Regs.Rip == f.ExitAddr {
			f.exited = true
			return nil
		}
		hit := f.Mem[f.Regs.Rip] == 0xCC
		f.Regs.Rip++
		if hit {
			return nil
		}
	}
}

func (f *Fake) Wait(pid PID) (WaitStatus, error) {
	if f.exited {
		return WaitStatus{raw: makeExitedStatus(0)}, nil
	}
	if f.killed {
		return WaitStatus{raw: makeSignaledStatus(unix.SIGKILL)}, nil
	}
	return WaitStatus{raw: makeStoppedStatus(unix.SIGTRAP)}, nil
}

// Kill simulates the debuggee being killed, for tests of the
// DebuggeeTermination path. It never touches a real process.
func (f *Fake) Kill(pid PID) error {
	f.killed = true
	return nil
}

func makeExitedStatus(code int) unix.WaitStatus {
	return unix.WaitStatus(code << 8)
}

func makeSignaledStatus(sig unix.Signal) unix.WaitStatus {
	return unix.WaitStatus(sig)
}

func makeStoppedStatus(sig unix.Signal) unix.WaitStatus {
	return unix.WaitStatus(sig<<8 | 0x7f)
}
