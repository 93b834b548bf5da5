package registers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/SamuelVanie/vdebugger/internal/registers"
	"github.com/SamuelVanie/vdebugger/internal/tracer"
)

func TestNameCaseInsensitivity(t *testing.T) {
	upper, ok := registers.FromName("RAX")
	require.True(t, ok)
	lower, ok := registers.FromName("rax")
	require.True(t, ok)
	assert.Equal(t, lower, upper)
}

func TestFromNameUnknown(t *testing.T) {
	_, ok := registers.FromName("not_a_register")
	assert.False(t, ok)
}

func TestDwarfNumbersMatchTable(t *testing.T) {
	cases := map[int]registers.Register{
		0:  registers.Rax,
		1:  registers.Rdx,
		2:  registers.Rcx,
		3:  registers.Rbx,
		4:  registers.Rsi,
		5:  registers.Rdi,
		6:  registers.Rbp,
		7:  registers.Rsp,
		8:  registers.R8,
		15: registers.R15,
		49: registers.Rflags,
		50: registers.Es,
		51: registers.Cs,
		52: registers.Ss,
		53: registers.Ds,
		54: registers.Fs,
		55: registers.Gs,
		58: registers.FsBase,
		59: registers.GsBase,
	}

	for dwarf, want := range cases {
		got, ok := registers.FromDwarf(dwarf)
		require.True(t, ok, "dwarf %d should resolve", dwarf)
		assert.Equal(t, want, got)
	}
}

func TestDwarfUniqueness(t *testing.T) {
	seen := make(map[int]registers.Register)
	for dwarf := 0; dwarf < 64; dwarf++ {
		reg, ok := registers.FromDwarf(dwarf)
		if !ok {
			continue
		}
		if prior, exists := seen[dwarf]; exists {
			t.Fatalf("dwarf number %d maps to both %v and %v", dwarf, prior, reg)
		}
		seen[dwarf] = reg
	}
}

func TestRipAndOrigRaxHaveNoDwarfNumber(t *testing.T) {
	for dwarf := 0; dwarf < 64; dwarf++ {
		reg, ok := registers.FromDwarf(dwarf)
		if !ok {
			continue
		}
		assert.NotEqual(t, registers.Rip, reg)
		assert.NotEqual(t, registers.OrigRax, reg)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	fake := tracer.NewFake()
	pid := tracer.PID(1)

	for _, reg := range []registers.Register{registers.Rax, registers.Rsp, registers.Rip, registers.Gs, registers.OrigRax} {
		want := uint64(0x1122334455667788)
		require.NoError(t, registers.Set(fake, pid, reg, want))
		got, err := registers.Get(fake, pid, reg)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDumpOrderingAndFormat(t *testing.T) {
	fake := tracer.NewFake()
	fake.Regs = unix.PtraceRegs{}
	lines, err := registers.Dump(fake, tracer.PID(1))
	require.NoError(t, err)
	require.Len(t, lines, 27)

	wantOrder := []string{
		"rax", "rdx", "rcx", "rbx", "rsi", "rdi", "rbp", "rsp",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
		"rflags", "es", "cs", "ss", "ds", "fs", "gs",
		"fs_base", "gs_base", "rip", "orig_rax",
	}
	require.Len(t, wantOrder, 27)

	for i, name := range wantOrder {
		assert.Contains(t, lines[i], name+" 0x")
	}
}
