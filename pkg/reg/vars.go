// Package reg publishes the fixed table of named architectural variables
// (general registers, flags, segment bases, SSE/FPU state, memory) and the
// sub-register aliasing rules for reading and writing them, generalized
// from the Z80 F-register bit-table idiom in the teacher's pkg/cpu/flags.go
// to x86's EFLAGS and EAX/AX/AH/AL-style overlapping registers.
package reg

import "github.com/oisee/x86lift/pkg/il"

// The fixed variable table. Every named architectural cell the lifter can
// reference lives here; there is no dynamic variable creation outside of
// il.TempAllocator-minted temporaries.
var (
	EAX = il.Var{Name: "EAX", Typ: il.Bit32}
	EBX = il.Var{Name: "EBX", Typ: il.Bit32}
	ECX = il.Var{Name: "ECX", Typ: il.Bit32}
	EDX = il.Var{Name: "EDX", Typ: il.Bit32}
	ESI = il.Var{Name: "ESI", Typ: il.Bit32}
	EDI = il.Var{Name: "EDI", Typ: il.Bit32}
	EBP = il.Var{Name: "EBP", Typ: il.Bit32}
	ESP = il.Var{Name: "ESP", Typ: il.Bit32}
	EIP = il.Var{Name: "EIP", Typ: il.Bit32}

	CF = il.Var{Name: "CF", Typ: il.Bit1}
	PF = il.Var{Name: "PF", Typ: il.Bit1}
	AF = il.Var{Name: "AF", Typ: il.Bit1}
	ZF = il.Var{Name: "ZF", Typ: il.Bit1}
	SF = il.Var{Name: "SF", Typ: il.Bit1}
	OF = il.Var{Name: "OF", Typ: il.Bit1}

	// DFLAG holds +1 or -1, selected by CLD/STD, used as the string-op
	// stride multiplier.
	DFLAG = il.Var{Name: "DFLAG", Typ: il.Bit32}

	FSBase = il.Var{Name: "FS_BASE", Typ: il.Bit32}
	GSBase = il.Var{Name: "GS_BASE", Typ: il.Bit32}

	FPUControl = il.Var{Name: "FPU_CONTROL", Typ: il.Bit16}
	MXCSR      = il.Var{Name: "MXCSR", Typ: il.Bit32}

	// FPUStatusC0..FPUStatusC3 are the x87 FPU status word's condition-code
	// bits, set by FCOM/FUCOM/FIST-family instructions and historically
	// copied into the integer EFLAGS (CF/PF/ZF) via FSTSW AX; FNSTSW/SAHF.
	// This lifter doesn't model x87 arithmetic (spec Non-goals), so nothing
	// ever writes these; they're declared opaque and 32-bit wide, matching
	// the fixed variable table verbatim, so a caller's variable set lines up
	// with the architecture's even where this lifter has no emitter for the
	// instructions that would drive them.
	FPUStatusC0 = il.Var{Name: "FPU_STATUS_C0", Typ: il.Bit32}
	FPUStatusC1 = il.Var{Name: "FPU_STATUS_C1", Typ: il.Bit32}
	FPUStatusC2 = il.Var{Name: "FPU_STATUS_C2", Typ: il.Bit32}
	FPUStatusC3 = il.Var{Name: "FPU_STATUS_C3", Typ: il.Bit32}

	// M is the single global little-endian memory array.
	M = il.Var{Name: "M", Typ: il.Mem32}
)

// XMM holds the eight 128-bit SSE registers, indexed 0..7.
var XMM [8]il.Var

func init() {
	names := [8]string{"XMM0", "XMM1", "XMM2", "XMM3", "XMM4", "XMM5", "XMM6", "XMM7"}
	for i, n := range names {
		XMM[i] = il.Var{Name: n, Typ: il.Bit128}
	}
}

// GP32 indexes the eight 32-bit general-purpose registers by their ModR/M
// register-field encoding: 0=EAX,1=ECX,2=EDX,3=EBX,4=ESP,5=EBP,6=ESI,7=EDI.
var GP32 = [8]il.Var{EAX, ECX, EDX, EBX, ESP, EBP, ESI, EDI}

// Segment identifies a segment-override prefix byte's segment; Base maps it
// to its base variable, or nil for segments with a zero base (CS/DS/ES/SS).
type Segment int

const (
	SegNone Segment = iota
	SegCS
	SegSS
	SegDS
	SegES
	SegFS
	SegGS
)

// Base returns the segment's base variable, or nil if the segment
// architecturally contributes no base (CS/DS/ES/SS, or no override).
func (s Segment) Base() *il.Var {
	switch s {
	case SegFS:
		return &FSBase
	case SegGS:
		return &GSBase
	default:
		return nil
	}
}
