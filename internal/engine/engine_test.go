package engine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelVanie/vdebugger/internal/engine"
	"github.com/SamuelVanie/vdebugger/internal/frontend"
	"github.com/SamuelVanie/vdebugger/internal/tracer"
)

func newTestEngine() (*engine.Engine, *tracer.Fake) {
	fake := tracer.NewFake()
	eng := engine.New("testprog", tracer.PID(1), fake, nil)
	return eng, fake
}

func TestContinuePastBreakpoint(t *testing.T) {
	eng, fake := newTestEngine()
	fake.Regs.Rip = 0x400000
	fake.ExitAddr = 0x402000

	require.NoError(t, eng.SetBreakpoint(0x401000))

	word, err := fake.PeekWord(tracer.PID(1), 0x401000)
	require.NoError(t, err)
	assert.Equal(t, byte(0xCC), byte(word), "trap byte should be installed")

	term, err := eng.ContinueExecution()
	require.NoError(t, err)
	assert.Nil(t, term, "debuggee should merely be stopped, not terminated")
	assert.Equal(t, uint64(0x401001), fake.Regs.Rip, "rip should land one byte past the trap")

	enabled, exists := eng.BreakpointEnabled(0x401000)
	require.True(t, exists)
	assert.True(t, enabled)

	term2, err := eng.ContinueExecution()
	require.NoError(t, err)
	require.NotNil(t, term2)
	assert.True(t, term2.Exited)

	enabled, exists = eng.BreakpointEnabled(0x401000)
	require.True(t, exists)
	assert.True(t, enabled, "breakpoint must be re-armed after step-over")
}

func TestSetBreakpointReplacesExistingEntryWithoutReSavingTrapByte(t *testing.T) {
	eng, fake := newTestEngine()
	fake.SetWord(0x401000, 0x1122334455667788)

	require.NoError(t, eng.SetBreakpoint(0x401000))
	require.NoError(t, eng.SetBreakpoint(0x401000))

	addrs := eng.ListBreakpoints()
	require.Len(t, addrs, 1, "map size must not grow when replacing at the same address")

	word, err := fake.PeekWord(tracer.PID(1), 0x401000)
	require.NoError(t, err)
	assert.Equal(t, byte(0xCC), byte(word))
}

func TestBreakpointMapKeyIsMonotoneNonDecreasing(t *testing.T) {
	eng, fake := newTestEngine()
	fake.SetWord(0x401000, 0)
	fake.SetWord(0x402000, 0)

	require.NoError(t, eng.SetBreakpoint(0x401000))
	require.Len(t, eng.ListBreakpoints(), 1)

	require.NoError(t, eng.SetBreakpoint(0x402000))
	require.Len(t, eng.ListBreakpoints(), 2)

	require.NoError(t, eng.SetBreakpoint(0x401000))
	require.Len(t, eng.ListBreakpoints(), 2, "replacing an existing key must not grow the map")
}

func TestRegisterWriteThenRead(t *testing.T) {
	eng, _ := newTestEngine()
	require.NoError(t, eng.WriteRegister("rax", 0x2a))
	val, err := eng.ReadRegister("rax")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), val)
}

func TestMemoryRoundTrip(t *testing.T) {
	eng, _ := newTestEngine()
	require.NoError(t, eng.WriteMemory(0x600000, 0xdeadbeefcafebabe))
	word, err := eng.ReadMemory(0x600000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeefcafebabe), word)
}

func TestRegisterDumpHas27Lines(t *testing.T) {
	eng, _ := newTestEngine()
	lines, err := eng.DumpRegisters()
	require.NoError(t, err)
	assert.Len(t, lines, 27)
}

func TestUnknownCommandLeavesStateUntouched(t *testing.T) {
	eng, fake := newTestEngine()
	require.NoError(t, eng.SetBreakpoint(0x401000))
	before := fake.Regs

	var out bytes.Buffer
	exit, err := frontend.Dispatch("foo", eng, &out)
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Contains(t, out.String(), "Commands:")
	assert.Equal(t, before, fake.Regs)
	assert.Len(t, eng.ListBreakpoints(), 1)
}

func TestExitOffersToKillAndHonorsYes(t *testing.T) {
	eng, _ := newTestEngine()
	var out bytes.Buffer

	err := eng.Run(strings.NewReader("exit\ny\n"), &out, frontend.Dispatch)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "kill the process")
	assert.True(t, eng.Terminated())
}

func TestExitOffersToKillAndHonorsNo(t *testing.T) {
	eng, _ := newTestEngine()
	var out bytes.Buffer

	err := eng.Run(strings.NewReader("exit\nn\n"), &out, frontend.Dispatch)
	require.NoError(t, err)
	assert.False(t, eng.Terminated())
}
