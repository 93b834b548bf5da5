// Package bootstrap is the external collaborator of spec.md §4.6: it
// forks, disables ASLR in the child, requests tracing, and execs the
// target binary (or attaches to an already-running process), handing
// the parent a DebuggeeHandle to build a Debug Engine around.
package bootstrap

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/SamuelVanie/vdebugger/internal/tracer"
	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

// Launch forks and execs path, tracing the child from before its first
// instruction, the way jackc-delve/main.go's start() launches a target
// and jackc-delve/proctl.NewDebugProcess attaches to it, combined into
// one step. The child requests tracing via SysProcAttr.Ptrace (Go's
// runtime issues PTRACE_TRACEME between fork and exec entirely off the
// Go scheduler, which is why this repository does not hand-roll a raw
// fork: the stdlib's own forkAndExecInChild already gives the exact
// sequence spec.md §4.6 describes).
//
// personality() flags are inherited across fork and exec, so when
// noASLR is set, ADDR_NO_RANDOMIZE is toggled on this process
// immediately before Start and restored immediately after: the forked
// child carries the flag into its exec image, and the debugger's own
// address space is unaffected once the toggle is undone.
func Launch(path string, noASLR bool) (tracer.PID, error) {
	if noASLR {
		old, err := unix.Personality(unix.ADDR_NO_RANDOMIZE)
		if err != nil {
			return 0, &vderrors.BootstrapError{Op: "personality", Err: err}
		}
		defer unix.Personality(uintptr(old))
	}

	cmd := exec.Command(path)
	cmd.Args = []string{path}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return 0, &vderrors.BootstrapError{Op: "exec", Err: err}
	}

	return tracer.PID(cmd.Process.Pid), nil
}

// Attach traces an already-running process by pid, the supplemental
// path SPEC_FULL.md §4.6 adds (grounded on
// jackc-delve/proctl.NewDebugProcess's PtraceAttach). The caller's
// engine.Run performs the matching initial wait, the same as after
// Launch.
func Attach(pid int) (tracer.PID, error) {
	if err := unix.PtraceAttach(pid); err != nil {
		return 0, &vderrors.BootstrapError{Op: "ptrace_attach", Err: err}
	}
	return tracer.PID(pid), nil
}
