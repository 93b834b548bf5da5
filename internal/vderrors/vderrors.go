// Package vderrors defines the error taxonomy shared across the debugger
// core: malformed user input, failed trace syscalls, bootstrap failures,
// and debuggee termination observed through wait.
package vderrors

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// TraceKind classifies a failed tracing primitive by the underlying
// errno it was mapped from.
type TraceKind int

const (
	KindUnknown TraceKind = iota
	KindPermission
	KindNoSuchProcess
	KindMemory
	KindState
)

func (k TraceKind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindNoSuchProcess:
		return "no such process"
	case KindMemory:
		return "memory"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// UserInputError is recoverable: the command loop prints it and reprompts.
type UserInputError struct {
	Msg string
}

func (e *UserInputError) Error() string { return e.Msg }

// NewUserInputError builds a UserInputError from a format string.
func NewUserInputError(format string, args ...interface{}) *UserInputError {
	return &UserInputError{Msg: fmt.Sprintf(format, args...)}
}

// TraceError wraps a failed tracing primitive. It is fatal to the
// session wherever spec.md §7 says so: engine operations at rest and
// every step-over.
type TraceError struct {
	Kind TraceKind
	Op   string
	Err  error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Err, e.Kind)
}

func (e *TraceError) Unwrap() error { return e.Err }

// NewTraceError wraps err for the operation op, classifying it by the
// underlying syscall errno per spec.md §4.1: ESRCH means the debuggee is
// gone (KindNoSuchProcess), EPERM means tracing is not permitted
// (KindPermission), EIO/EFAULT mean the address was bad (KindMemory).
// fallback is used when err is not one of those errnos (another errno,
// or an error that wraps none), so call sites keep naming the kind that
// is typical for their own operation.
func NewTraceError(op string, fallback TraceKind, err error) *TraceError {
	return &TraceError{Kind: classifyErrno(err, fallback), Op: op, Err: err}
}

func classifyErrno(err error, fallback TraceKind) TraceKind {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return fallback
	}
	switch errno {
	case unix.ESRCH:
		return KindNoSuchProcess
	case unix.EPERM:
		return KindPermission
	case unix.EIO, unix.EFAULT:
		return KindMemory
	default:
		return fallback
	}
}

// BootstrapError is fatal before the command loop ever starts: fork,
// exec, traceme, or personality failed.
type BootstrapError struct {
	Op  string
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap failed during %s: %s", e.Op, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// DebuggeeTermination is not an error: it is the status reported by wait
// when the debuggee exited or was killed instead of stopping. The
// engine surfaces it as a value, not an error, and the front end reports
// it before reprompting.
type DebuggeeTermination struct {
	Exited     bool
	ExitStatus int
	Signaled   bool
	Signal     string
}

func (t DebuggeeTermination) String() string {
	if t.Exited {
		return fmt.Sprintf("process exited with status %d", t.ExitStatus)
	}
	if t.Signaled {
		return fmt.Sprintf("process killed by signal %s", t.Signal)
	}
	return "process terminated"
}
