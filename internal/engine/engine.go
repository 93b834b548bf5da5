// Package engine implements the Debug Engine of spec.md §4.4: it owns
// the debuggee PID, the breakpoint map, and the execution-control
// routines that coordinate continue, step, wait, and the
// step-over-breakpoint sequence so resuming at a trapped address
// transparently re-executes the displaced instruction and re-arms the
// trap.
package engine

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/SamuelVanie/vdebugger/internal/breakpoint"
	"github.com/SamuelVanie/vdebugger/internal/present"
	"github.com/SamuelVanie/vdebugger/internal/registers"
	"github.com/SamuelVanie/vdebugger/internal/tracer"
	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

// Prompt is the literal session prompt spec.md §6 mandates.
const Prompt = "vdebugger> "

// Engine owns the debuggee handle, the tracing capability, and the
// breakpoint map for one debugging session.
type Engine struct {
	progName    string
	pid         tracer.PID
	trc         tracer.Tracer
	breakpoints map[uint64]*breakpoint.Breakpoint
	log         *slog.Logger

	terminated bool

	interruptFd *int
}

// New constructs an Engine bound to a traced debuggee. Run performs the
// first wait, for the debuggee's initial stop.
func New(progName string, pid tracer.PID, t tracer.Tracer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		progName:    progName,
		pid:         pid,
		trc:         t,
		breakpoints: make(map[uint64]*breakpoint.Breakpoint),
		log:         log,
	}
}

// PID returns the debuggee's process id.
func (e *Engine) PID() tracer.PID { return e.pid }

// EnableInterruptForwarding arranges for a Ctrl-C received on fd while
// ContinueExecution is blocked in wait to be forwarded to the debuggee
// as SIGINT instead of killing the debugger session. The caller is
// expected to pass a file descriptor only when it is a real terminal
// (term.IsTerminal); this is a small ergonomics feature original_source/
// never implements, so it is skipped entirely when fd is not a tty.
func (e *Engine) EnableInterruptForwarding(fd int) {
	e.interruptFd = &fd
}

// SetBreakpoint installs a software breakpoint at addr, overwriting any
// existing entry at the same address. If a breakpoint is already
// enabled there, the on-target byte is already 0xCC; the new entry
// adopts the old enabled state and saved byte instead of re-peeking the
// trap opcode as if it were the original instruction byte (spec.md §9).
func (e *Engine) SetBreakpoint(addr uint64) error {
	bp := breakpoint.New(e.trc, e.pid, addr)

	if existing, ok := e.breakpoints[addr]; ok && existing.Enabled() {
		bp.AdoptEnabled(existing.SavedByte())
	} else if err := bp.Enable(); err != nil {
		return err
	}

	e.breakpoints[addr] = bp
	return nil
}

// BreakpointEnabled reports whether a breakpoint exists at addr and, if
// so, whether its trap byte is currently installed.
func (e *Engine) BreakpointEnabled(addr uint64) (enabled bool, exists bool) {
	bp, ok := e.breakpoints[addr]
	if !ok {
		return false, false
	}
	return bp.Enabled(), true
}

// ListBreakpoints returns installed breakpoint addresses in ascending
// order.
func (e *Engine) ListBreakpoints() []uint64 {
	addrs := make([]uint64, 0, len(e.breakpoints))
	for addr := range e.breakpoints {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// DeleteBreakpoint disables and removes the breakpoint at addr. This is
// a supplemented operation: spec.md §3 says breakpoints are never
// removed from the map by the core step-over machinery, so removal
// happens only here, on explicit user request.
func (e *Engine) DeleteBreakpoint(addr uint64) error {
	bp, ok := e.breakpoints[addr]
	if !ok {
		return vderrors.NewUserInputError("no breakpoint at 0x%x", addr)
	}
	if err := bp.Disable(); err != nil {
		return err
	}
	delete(e.breakpoints, addr)
	return nil
}

// stepOverBreakpoint implements spec.md §4.4's critical state
// transition. After an INT3 fires, the debuggee stops with rip one byte
// past the trap. To resume correctly: rewind rip onto the trap site,
// disable the breakpoint, single-step past the restored instruction,
// wait for the resulting SIGTRAP, then re-enable the breakpoint. Only
// after this sequence may continue_execution issue cont.
func (e *Engine) stepOverBreakpoint() error {
	rip, err := registers.Get(e.trc, e.pid, registers.Rip)
	if err != nil {
		return err
	}

	candidate := rip - 1
	bp, ok := e.breakpoints[candidate]
	if !ok || !bp.Enabled() {
		return nil
	}

	if err := registers.Set(e.trc, e.pid, registers.Rip, candidate); err != nil {
		return err
	}
	if err := bp.Disable(); err != nil {
		return err
	}
	if err := e.trc.Step(e.pid); err != nil {
		return vderrors.NewTraceError("step_over.step", vderrors.KindState, err)
	}
	if _, err := e.trc.Wait(e.pid); err != nil {
		return vderrors.NewTraceError("step_over.wait", vderrors.KindState, err)
	}
	if err := bp.Enable(); err != nil {
		return err
	}

	return nil
}

// ContinueExecution steps over any breakpoint the debuggee is currently
// stopped at, then continues and waits for the next stop.
func (e *Engine) ContinueExecution() (*vderrors.DebuggeeTermination, error) {
	if err := e.stepOverBreakpoint(); err != nil {
		return nil, err
	}
	if err := e.trc.Cont(e.pid); err != nil {
		return nil, vderrors.NewTraceError("continue.cont", vderrors.KindState, err)
	}
	return e.waitInterruptible()
}

// waitInterruptible blocks in wait exactly like wait, except that when
// EnableInterruptForwarding has been called it also watches for a
// Ctrl-C (os.Interrupt) on the registered fd: instead of letting Go's
// default signal handling tear down the debugger process, it forwards
// SIGINT to the debuggee and keeps waiting.
func (e *Engine) waitInterruptible() (*vderrors.DebuggeeTermination, error) {
	if e.interruptFd == nil {
		return e.wait()
	}

	oldState, err := term.MakeRaw(*e.interruptFd)
	if err != nil {
		return e.wait()
	}
	defer term.Restore(*e.interruptFd, oldState)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	type result struct {
		term *vderrors.DebuggeeTermination
		err  error
	}
	done := make(chan result, 1)
	go func() {
		t, err := e.wait()
		done <- result{t, err}
	}()

	for {
		select {
		case res := <-done:
			return res.term, res.err
		case <-sigCh:
			_ = unix.Kill(int(e.pid), unix.SIGINT)
		}
	}
}

func (e *Engine) wait() (*vderrors.DebuggeeTermination, error) {
	status, err := e.trc.Wait(e.pid)
	if err != nil {
		return nil, vderrors.NewTraceError("wait", vderrors.KindState, err)
	}

	if status.Exited() {
		e.terminated = true
		return &vderrors.DebuggeeTermination{Exited: true, ExitStatus: status.ExitStatus()}, nil
	}
	if status.Signaled() {
		e.terminated = true
		return &vderrors.DebuggeeTermination{Signaled: true, Signal: status.Signal().String()}, nil
	}
	return nil, nil
}

// DumpRegisters formats every register in descriptor-table order, per
// spec.md §4.2.
func (e *Engine) DumpRegisters() ([]string, error) {
	return registers.Dump(e.trc, e.pid)
}

// ReadMemory reads the 64-bit word at addr in the debuggee.
func (e *Engine) ReadMemory(addr uint64) (uint64, error) {
	word, err := e.trc.PeekWord(e.pid, uintptr(addr))
	if err != nil {
		return 0, vderrors.NewTraceError("read_memory", vderrors.KindMemory, err)
	}
	return word, nil
}

// WriteMemory writes word at addr in the debuggee.
func (e *Engine) WriteMemory(addr uint64, word uint64) error {
	if err := e.trc.PokeWord(e.pid, uintptr(addr), word); err != nil {
		return vderrors.NewTraceError("write_memory", vderrors.KindMemory, err)
	}
	return nil
}

// ReadRegister resolves name and returns its value.
func (e *Engine) ReadRegister(name string) (uint64, error) {
	reg, ok := registers.FromName(name)
	if !ok {
		return 0, vderrors.NewUserInputError("unknown register %q", name)
	}
	return registers.Get(e.trc, e.pid, reg)
}

// WriteRegister resolves name and sets its value.
func (e *Engine) WriteRegister(name string, value uint64) error {
	reg, ok := registers.FromName(name)
	if !ok {
		return vderrors.NewUserInputError("unknown register %q", name)
	}
	return registers.Set(e.trc, e.pid, reg, value)
}

// Kill sends the debuggee SIGKILL and reaps it, the way
// jackc-delve/main.go's handleExit offers to kill on exit instead of
// leaving an orphaned traced process.
func (e *Engine) Kill() error {
	if e.terminated {
		return nil
	}
	if err := e.trc.Kill(e.pid); err != nil {
		return vderrors.NewTraceError("kill", vderrors.KindNoSuchProcess, err)
	}
	_, _ = e.trc.Wait(e.pid)
	e.terminated = true
	return nil
}

// Terminated reports whether the debuggee has exited or been killed.
func (e *Engine) Terminated() bool { return e.terminated }

// offerKill asks "Would you like to kill the process? [y/n]" the way
// jackc-delve/main.go's handleExit does before its PtraceDetach, and
// calls Kill on a "y"/"yes" answer. It is a no-op once the debuggee has
// already exited or been killed.
func (e *Engine) offerKill(scanner *bufio.Scanner, out io.Writer) {
	if e.terminated {
		return
	}

	present.Info(out, "Would you like to kill the process? [y/n]")
	if !scanner.Scan() {
		return
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer != "y" && answer != "yes" {
		return
	}

	if err := e.Kill(); err != nil {
		present.Error(out, err)
	}
}

// Run waits once for the initial stop that follows the child's
// request-to-trace plus exec (or the attach stop), then reads lines
// from in until EOF or an explicit exit, dispatching each to Dispatch.
// End-of-input at the prompt terminates the session as if exit had been
// typed, per spec.md §6.
func (e *Engine) Run(in io.Reader, out io.Writer, dispatch func(line string, e *Engine, out io.Writer) (exit bool, err error)) error {
	if _, err := e.trc.Wait(e.pid); err != nil {
		return vderrors.NewTraceError("run.initial_wait", vderrors.KindState, err)
	}

	scanner := bufio.NewScanner(in)
	for {
		present.Prompt(out, Prompt)
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()

		exit, err := dispatch(line, e, out)
		if exit {
			e.offerKill(scanner, out)
			return nil
		}
		if err == nil {
			continue
		}

		switch err.(type) {
		case *vderrors.UserInputError:
			present.Error(out, err)
		default:
			e.log.Error("session terminated", "error", err)
			return err
		}
	}
}
