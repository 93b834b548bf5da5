package vderrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

func TestNewTraceErrorClassifiesKnownErrno(t *testing.T) {
	err := vderrors.NewTraceError("read_memory", vderrors.KindMemory, unix.ESRCH)
	assert.Equal(t, vderrors.KindNoSuchProcess, err.Kind)

	err = vderrors.NewTraceError("get_registers", vderrors.KindState, unix.EPERM)
	assert.Equal(t, vderrors.KindPermission, err.Kind)

	err = vderrors.NewTraceError("read_memory", vderrors.KindState, unix.EIO)
	assert.Equal(t, vderrors.KindMemory, err.Kind)

	err = vderrors.NewTraceError("read_memory", vderrors.KindState, unix.EFAULT)
	assert.Equal(t, vderrors.KindMemory, err.Kind)
}

func TestNewTraceErrorFallsBackForUnrecognizedError(t *testing.T) {
	err := vderrors.NewTraceError("step_over.step", vderrors.KindState, errors.New("boom"))
	assert.Equal(t, vderrors.KindState, err.Kind)
}

func TestNewTraceErrorUnwrapsWrappedErrno(t *testing.T) {
	wrapped := fmt.Errorf("ptrace: %w", unix.ESRCH)
	err := vderrors.NewTraceError("peek", vderrors.KindMemory, wrapped)
	assert.Equal(t, vderrors.KindNoSuchProcess, err.Kind)
}
