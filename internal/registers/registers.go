// Package registers implements the x86-64 register file abstraction of
// spec.md §4.2: a closed, ordered enumeration of 27 registers mapped to
// fields in the kernel's user_regs_struct, with name/DWARF lookup and
// get/set against a tracer.Tracer.
package registers

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/SamuelVanie/vdebugger/internal/tracer"
	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

// Register is a symbolic identifier drawn from the closed x86-64
// register enumeration spec.md §3 names.
type Register int

const (
	Rax Register = iota
	Rbx
	Rcx
	Rdx
	Rdi
	Rsi
	Rbp
	Rsp
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	Rip
	Rflags
	Cs
	Ss
	Ds
	Es
	Fs
	Gs
	FsBase
	GsBase
	OrigRax
)

// noDwarf marks rip and orig_rax, which spec.md §3 says carry no DWARF
// number.
const noDwarf = -1

type descriptor struct {
	reg   Register
	name  string
	dwarf int
	get   func(*unix.PtraceRegs) uint64
	set   func(*unix.PtraceRegs, uint64)
}

// descriptors is the mandatory table of spec.md §4.2, in its declared
// display order. It is built once, at package init, and never mutated:
// Design Notes requires any register descriptor table to be a
// process-lifetime immutable datum.
var descriptors = [...]descriptor{
	{Rax, "rax", 0, func(r *unix.PtraceRegs) uint64 { return r.Rax }, func(r *unix.PtraceRegs, v uint64) { r.Rax = v }},
	{Rdx, "rdx", 1, func(r *unix.PtraceRegs) uint64 { return r.Rdx }, func(r *unix.PtraceRegs, v uint64) { r.Rdx = v }},
	{Rcx, "rcx", 2, func(r *unix.PtraceRegs) uint64 { return r.Rcx }, func(r *unix.PtraceRegs, v uint64) { r.Rcx = v }},
	{Rbx, "rbx", 3, func(r *unix.PtraceRegs) uint64 { return r.Rbx }, func(r *unix.PtraceRegs, v uint64) { r.Rbx = v }},
	{Rsi, "rsi", 4, func(r *unix.PtraceRegs) uint64 { return r.Rsi }, func(r *unix.PtraceRegs, v uint64) { r.Rsi = v }},
	{Rdi, "rdi", 5, func(r *unix.PtraceRegs) uint64 { return r.Rdi }, func(r *unix.PtraceRegs, v uint64) { r.Rdi = v }},
	{Rbp, "rbp", 6, func(r *unix.PtraceRegs) uint64 { return r.Rbp }, func(r *unix.PtraceRegs, v uint64) { r.Rbp = v }},
	{Rsp, "rsp", 7, func(r *unix.PtraceRegs) uint64 { return r.Rsp }, func(r *unix.PtraceRegs, v uint64) { r.Rsp = v }},
	{R8, "r8", 8, func(r *unix.PtraceRegs) uint64 { return r.R8 }, func(r *unix.PtraceRegs, v uint64) { r.R8 = v }},
	{R9, "r9", 9, func(r *unix.PtraceRegs) uint64 { return r.R9 }, func(r *unix.PtraceRegs, v uint64) { r.R9 = v }},
	{R10, "r10", 10, func(r *unix.PtraceRegs) uint64 { return r.R10 }, func(r *unix.PtraceRegs, v uint64) { r.R10 = v }},
	{R11, "r11", 11, func(r *unix.PtraceRegs) uint64 { return r.R11 }, func(r *unix.PtraceRegs, v uint64) { r.R11 = v }},
	{R12, "r12", 12, func(r *unix.PtraceRegs) uint64 { return r.R12 }, func(r *unix.PtraceRegs, v uint64) { r.R12 = v }},
	{R13, "r13", 13, func(r *unix.PtraceRegs) uint64 { return r.R13 }, func(r *unix.PtraceRegs, v uint64) { r.R13 = v }},
	{R14, "r14", 14, func(r *unix.PtraceRegs) uint64 { return r.R14 }, func(r *unix.PtraceRegs, v uint64) { r.R14 = v }},
	{R15, "r15", 15, func(r *unix.PtraceRegs) uint64 { return r.R15 }, func(r *unix.PtraceRegs, v uint64) { r.R15 = v }},
	{Rflags, "rflags", 49, func(r *unix.PtraceRegs) uint64 { return r.Eflags }, func(r *unix.PtraceRegs, v uint64) { r.Eflags = v }},
	{Es, "es", 50, func(r *unix.PtraceRegs) uint64 { return r.Es }, func(r *unix.PtraceRegs, v uint64) { r.Es = v }},
	{Cs, "cs", 51, func(r *unix.PtraceRegs) uint64 { return r.Cs }, func(r *unix.PtraceRegs, v uint64) { r.Cs = v }},
	{Ss, "ss", 52, func(r *unix.PtraceRegs) uint64 { return r.Ss }, func(r *unix.PtraceRegs, v uint64) { r.Ss = v }},
	{Ds, "ds", 53, func(r *unix.PtraceRegs) uint64 { return r.Ds }, func(r *unix.PtraceRegs, v uint64) { r.Ds = v }},
	{Fs, "fs", 54, func(r *unix.PtraceRegs) uint64 { return r.Fs }, func(r *unix.PtraceRegs, v uint64) { r.Fs = v }},
	{Gs, "gs", 55, func(r *unix.PtraceRegs) uint64 { return r.Gs }, func(r *unix.PtraceRegs, v uint64) { r.Gs = v }},
	{FsBase, "fs_base", 58, func(r *unix.PtraceRegs) uint64 { return r.Fs_base }, func(r *unix.PtraceRegs, v uint64) { r.Fs_base = v }},
	{GsBase, "gs_base", 59, func(r *unix.PtraceRegs) uint64 { return r.Gs_base }, func(r *unix.PtraceRegs, v uint64) { r.Gs_base = v }},
	{Rip, "rip", noDwarf, func(r *unix.PtraceRegs) uint64 { return r.Rip }, func(r *unix.PtraceRegs, v uint64) { r.Rip = v }},
	{OrigRax, "orig_rax", noDwarf, func(r *unix.PtraceRegs) uint64 { return r.Orig_rax }, func(r *unix.PtraceRegs, v uint64) { r.Orig_rax = v }},
}

func descriptorFor(r Register) descriptor {
	for _, d := range descriptors {
		if d.reg == r {
			return d
		}
	}
	panic(fmt.Sprintf("registers: no descriptor for %v", r))
}

// NameOf returns the canonical lowercase name of r.
func NameOf(r Register) string { return descriptorFor(r).name }

// FromName resolves the canonical Register for name, matched
// case-insensitively, or false if no register has that name.
func FromName(name string) (Register, bool) {
	lower := strings.ToLower(name)
	for _, d := range descriptors {
		if d.name == lower {
			return d.reg, true
		}
	}
	return 0, false
}

// FromDwarf resolves the Register assigned DWARF number n. rip and
// orig_rax never match, since spec.md §3 defines them as having no
// DWARF number.
func FromDwarf(n int) (Register, bool) {
	for _, d := range descriptors {
		if d.dwarf == n && d.dwarf != noDwarf {
			return d.reg, true
		}
	}
	return 0, false
}

// Get performs a full GetRegs call and selects the field for r.
func Get(t tracer.Tracer, pid tracer.PID, r Register) (uint64, error) {
	regs, err := t.GetRegs(pid)
	if err != nil {
		return 0, vderrors.NewTraceError("get_registers", vderrors.KindState, err)
	}
	return descriptorFor(r).get(&regs), nil
}

// Set performs a full GetRegs call, assigns the field for r, and writes
// the bank back with SetRegs.
func Set(t tracer.Tracer, pid tracer.PID, r Register, value uint64) error {
	regs, err := t.GetRegs(pid)
	if err != nil {
		return vderrors.NewTraceError("get_registers", vderrors.KindState, err)
	}
	descriptorFor(r).set(&regs, value)
	if err := t.SetRegs(pid, regs); err != nil {
		return vderrors.NewTraceError("set_registers", vderrors.KindState, err)
	}
	return nil
}

// Dump iterates the descriptor table in its declared order, formatting
// each entry as "<name> 0x<16-hex-digits>" per spec.md §4.2.
func Dump(t tracer.Tracer, pid tracer.PID) ([]string, error) {
	regs, err := t.GetRegs(pid)
	if err != nil {
		return nil, vderrors.NewTraceError("get_registers", vderrors.KindState, err)
	}
	lines := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		lines = append(lines, fmt.Sprintf("%s 0x%016x", d.name, d.get(&regs)))
	}
	return lines, nil
}
