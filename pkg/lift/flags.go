// Package lift translates decode.Insn values into il.Stmt sequences,
// generalizing the teacher's pkg/cpu/exec.go concrete-execution switch into
// symbolic emission: each execXxx-style helper there becomes an xxxFlags
// helper here (addFlags, subFlags, logicFlags, ...) that builds il.Expr flag formulas instead of mutating a
// concrete byte.
package lift

import (
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/reg"
)

// flagSet holds the six arithmetic flags as freshly-built expressions,
// mirroring the teacher's FlagC/FlagN/FlagP/FlagV/FlagH/FlagZ/FlagS bit
// constants but as symbolic formulas rather than table lookups.
type flagSet struct {
	CF, PF, AF, ZF, SF, OF il.Expr
}

// move returns the Move statements installing fs into the architectural
// flag variables.
func (fs flagSet) move(attrs il.Attrs) []il.Stmt {
	return []il.Stmt{
		il.Move(reg.CF, fs.CF, attrs),
		il.Move(reg.PF, fs.PF, attrs),
		il.Move(reg.AF, fs.AF, attrs),
		il.Move(reg.ZF, fs.ZF, attrs),
		il.Move(reg.SF, fs.SF, attrs),
		il.Move(reg.OF, fs.OF, attrs),
	}
}

// moveExceptCF installs every flag but CF, for INC/DEC which preserve it.
func (fs flagSet) moveExceptCF(attrs il.Attrs) []il.Stmt {
	return []il.Stmt{
		il.Move(reg.PF, fs.PF, attrs),
		il.Move(reg.AF, fs.AF, attrs),
		il.Move(reg.ZF, fs.ZF, attrs),
		il.Move(reg.SF, fs.SF, attrs),
		il.Move(reg.OF, fs.OF, attrs),
	}
}

// highBit extracts e's sign bit as a Bit1 expression.
func highBit(e il.Expr) il.Expr {
	w := e.Type().Width
	return il.Extract(w-1, w-1, e)
}

// bit4 extracts bit 4 (the nibble boundary used by the half-carry/AF
// formula) as a Bit1 expression.
func bit4(e il.Expr) il.Expr {
	return il.Extract(4, 4, e)
}

// parityExpr computes even-parity of e's low 8 bits via an xor-cascade,
// generalizing the teacher's precomputed ParityTable into a symbolic
// formula: PF = NOT(b0^b1^...^b7).
func parityExpr(e il.Expr) il.Expr {
	low := il.Cast(il.CastLow, il.Bit8, e)
	acc := il.Extract(0, 0, low)
	for i := 1; i < 8; i++ {
		acc = il.BinOp(il.OpXor, acc, il.Extract(i, i, low))
	}
	return il.BinOp(il.OpXor, acc, il.One(il.Bit1))
}

// pszFromResult fills PF/SF/ZF from a result value, the common tail of
// every flag family (spec §4.6's "PSZ as above").
func pszFromResult(r il.Expr) (pf, sf, zf il.Expr) {
	w := r.Type().Width
	return parityExpr(r), highBit(r), il.BinOp(il.OpEq, r, il.Zero(il.Reg(w)))
}

// addFlags computes the full flag set for a + b = r (spec §4.6 Addition).
func addFlags(a, b, r il.Expr) flagSet {
	pf, sf, zf := pszFromResult(r)
	cf := il.BinOp(il.OpULt, r, a)
	af := bit4(il.BinOp(il.OpXor, il.BinOp(il.OpXor, r, a), b))
	sameSign := negate1(il.BinOp(il.OpXor, highBit(a), highBit(b)))
	of := il.BinOp(il.OpAnd, sameSign, highBit(il.BinOp(il.OpXor, a, r)))
	return flagSet{CF: cf, PF: pf, AF: af, ZF: zf, SF: sf, OF: of}
}

// subFlags computes the full flag set for a - b = r (spec §4.6 Subtraction).
func subFlags(a, b, r il.Expr) flagSet {
	pf, sf, zf := pszFromResult(r)
	cf := il.BinOp(il.OpULt, a, b)
	af := bit4(il.BinOp(il.OpXor, il.BinOp(il.OpXor, r, a), b))
	of := il.BinOp(il.OpAnd, highBit(il.BinOp(il.OpXor, a, b)), highBit(il.BinOp(il.OpXor, a, r)))
	return flagSet{CF: cf, PF: pf, AF: af, ZF: zf, SF: sf, OF: of}
}

// logicFlags computes the flag set for AND/OR/XOR: OF=CF=0, AF=Unknown,
// PSZ from the result (spec §4.6 AND/OR/XOR).
func logicFlags(r il.Expr) flagSet {
	pf, sf, zf := pszFromResult(r)
	return flagSet{
		CF: il.Zero(il.Bit1),
		PF: pf,
		AF: il.Unknown("AF after logic op", il.Bit1),
		ZF: zf,
		SF: sf,
		OF: il.Zero(il.Bit1),
	}
}

// selfXorFlags is the spec-mandated short circuit for XOR reg, reg: a
// literal zero result with ZF=1, PF=1, SF=CF=OF=0 — not derived from
// logicFlags(0) because the spec calls it out as its own boundary case.
func selfXorFlags(width int) (il.Expr, flagSet) {
	zero := il.Zero(il.Reg(width))
	return zero, flagSet{
		CF: il.Zero(il.Bit1),
		PF: il.One(il.Bit1),
		AF: il.Unknown("AF after logic op", il.Bit1),
		ZF: il.One(il.Bit1),
		SF: il.Zero(il.Bit1),
		OF: il.Zero(il.Bit1),
	}
}

// incDecFlags computes OF/SF/ZF/AF/PF for INC/DEC, preserving CF (the
// caller must not overwrite it). a is the operand before the update, r is
// the result; isDec selects the subtraction- vs addition-shaped OF/AF
// formula (INC behaves like "+1", DEC like "-1").
func incDecFlags(a, r il.Expr, isDec bool) flagSet {
	one := il.One(il.Reg(a.Type().Width))
	var full flagSet
	if isDec {
		full = subFlags(a, one, r)
	} else {
		full = addFlags(a, one, r)
	}
	full.CF = nil // caller preserves CF; see moveExceptCF
	return full
}

// shiftFlags computes the flag set for a non-rotate shift (SHL/SHR/SAR),
// given the pre-shift value a, the result r, the effective count (already
// masked with 31), and the shift's direction. CF is the last bit
// shifted out; OF is only defined for a 1-bit shift and is Unknown
// otherwise; AF is always Unknown (spec §4.6 Shifts). The caller must wrap
// the returned flags in the count==0-preserves-flags Ite itself, since that
// requires the pre-shift flag values too.
type shiftDir int

const (
	shiftLeft shiftDir = iota
	shiftRightLogical
	shiftRightArith
)

func shiftFlags(dir shiftDir, a, r il.Expr, count il.Expr, countIsOne il.Expr) flagSet {
	width := a.Type().Width
	var cf il.Expr
	switch dir {
	case shiftLeft:
		// Last bit shifted out of the top: bit (width - count) of a. Extract
		// does not support a dynamic index, so the same bit is taken as the
		// sign bit of a shifted left by (count-1).
		shiftedOnce := il.BinOp(il.OpShl, a, il.BinOp(il.OpSub, count, il.One(il.Reg(width))))
		cf = highBit(shiftedOnce)
	case shiftRightLogical, shiftRightArith:
		shiftedOnce := il.BinOp(il.OpShr, a, il.BinOp(il.OpSub, count, il.One(il.Reg(width))))
		cf = il.Extract(0, 0, shiftedOnce)
	}
	pf, sf, zf := pszFromResult(r)
	var of il.Expr
	switch dir {
	case shiftLeft:
		// OF = 1 iff the sign bit changed, i.e. the result's MSB differs
		// from the bit shifted out.
		of = il.Ite(countIsOne, il.BinOp(il.OpXor, highBit(r), cf), il.Unknown("OF after shift count>1", il.Bit1))
	case shiftRightLogical:
		of = il.Ite(countIsOne, highBit(a), il.Unknown("OF after shift count>1", il.Bit1))
	case shiftRightArith:
		of = il.Ite(countIsOne, il.Zero(il.Bit1), il.Unknown("OF after shift count>1", il.Bit1))
	}
	return flagSet{
		CF: cf,
		PF: pf,
		AF: il.Unknown("AF after shift", il.Bit1),
		ZF: zf,
		SF: sf,
		OF: of,
	}
}

func negate1(e il.Expr) il.Expr {
	return il.BinOp(il.OpXor, e, il.One(il.Bit1))
}
