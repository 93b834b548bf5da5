// Package tracer provides the injectable tracing-primitives capability
// spec.md §4.1 requires: a thin, testable adapter over the kernel's
// process-tracing syscall. Engine code never calls the kernel directly;
// it only ever holds a Tracer.
package tracer

import "golang.org/x/sys/unix"

// PID identifies a traced debuggee. It is a defined type, not a bare
// int, so register-file and breakpoint code cannot be invoked with an
// unrelated integer by accident.
type PID int

// WaitStatus reports what happened the last time the debuggee changed
// state: stopped by a signal, exited, or killed.
type WaitStatus struct {
	raw unix.WaitStatus
}

func (w WaitStatus) Exited() bool       { return w.raw.Exited() }
func (w WaitStatus) ExitStatus() int    { return w.raw.ExitStatus() }
func (w WaitStatus) Signaled() bool     { return w.raw.Signaled() }
func (w WaitStatus) Signal() unix.Signal { return w.raw.Signal() }
func (w WaitStatus) Stopped() bool      { return w.raw.Stopped() }
func (w WaitStatus) StopSignal() unix.Signal {
	return w.raw.StopSignal()
}
func (w WaitStatus) TrapCause() int { return w.raw.TrapCause() }

// Tracer is the capability set spec.md §4.1 names. Every method returns
// the raw syscall error; the callers (engine, registers, breakpoint) map
// it into a vderrors.TraceError, so this package stays a thin adapter.
type Tracer interface {
	PeekWord(pid PID, addr uintptr) (uint64, error)
	PokeWord(pid PID, addr uintptr, word uint64) error
	GetRegs(pid PID) (unix.PtraceRegs, error)
	SetRegs(pid PID, regs unix.PtraceRegs) error
	Step(pid PID) error
	Cont(pid PID) error
	Wait(pid PID) (WaitStatus, error)
	Kill(pid PID) error
}

// Unix is the production Tracer, backed by golang.org/x/sys/unix. It is
// the only implementation in this repository that touches the kernel.
type Unix struct{}

var _ Tracer = Unix{}

// wordSize is the width of a single peek/poke on x86-64: spec.md §4.1
// fixes tracing memory I/O at machine-word granularity.
const wordSize = 8

func (Unix) PeekWord(pid PID, addr uintptr) (uint64, error) {
	buf := make([]byte, wordSize)
	if _, err := unix.PtracePeekData(int(pid), addr, buf); err != nil {
		return 0, err
	}
	return littleEndianUint64(buf), nil
}

func (Unix) PokeWord(pid PID, addr uintptr, word uint64) error {
	buf := make([]byte, wordSize)
	putLittleEndianUint64(buf, word)
	_, err := unix.PtracePokeData(int(pid), addr, buf)
	return err
}

func (Unix) GetRegs(pid PID) (unix.PtraceRegs, error) {
	var regs unix.PtraceRegs
	err := unix.PtraceGetRegs(int(pid), &regs)
	return regs, err
}

func (Unix) SetRegs(pid PID, regs unix.PtraceRegs) error {
	return unix.PtraceSetRegs(int(pid), &regs)
}

func (Unix) Step(pid PID) error {
	return unix.PtraceSingleStep(int(pid))
}

func (Unix) Cont(pid PID) error {
	return unix.PtraceCont(int(pid), 0)
}

func (Unix) Kill(pid PID) error {
	return unix.Kill(int(pid), unix.SIGKILL)
}

func (Unix) Wait(pid PID) (WaitStatus, error) {
	var status unix.WaitStatus
	var rusage unix.Rusage
	_, err := unix.Wait4(int(pid), &status, 0, &rusage)
	if err != nil {
		return WaitStatus{}, err
	}
	return WaitStatus{raw: status}, nil
}

func littleEndianUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putLittleEndianUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}
