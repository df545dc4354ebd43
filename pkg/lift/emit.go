package lift

import (
	"fmt"

	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/reg"
)

// Lifter threads a per-call temporary allocator through emission, mirroring
// the decoder's (address, prefix) threading style (spec §9 "decoder as
// stateless function") applied to temporary identity (spec §9
// "fresh-temporary identity").
type Lifter struct {
	temps *il.TempAllocator
}

// NewLifter returns a Lifter with a fresh per-call temporary allocator.
func NewLifter() *Lifter {
	return &Lifter{temps: il.NewTempAllocator()}
}

func (lf *Lifter) fresh(width int) il.Var {
	return lf.temps.Fresh(width)
}

// Emit translates one classified instruction into an IL statement sequence.
// endAddr is the address immediately after the instruction's encoding,
// needed for relative branch targets (Jcc/Jmp/Call); startAddr is only used
// for deriving REP-loop label names.
func (lf *Lifter) Emit(insn decode.Insn, startAddr, endAddr uint32, attrs il.Attrs) ([]il.Stmt, error) {
	seg := insn.Prefix.Segment
	switch insn.Kind {
	case decode.KArith:
		return lf.emitArith(insn, seg, attrs)
	case decode.KIncDecReg:
		a := reg.ReadSub(insn.RegIndex, insn.Width)
		r := incDecResult(a, insn.IsDec)
		fs := incDecFlags(a, r, insn.IsDec)
		stmts := fs.moveExceptCF(attrs)
		stmts = append(stmts, reg.WriteSub(insn.RegIndex, insn.Width, r, attrs))
		return stmts, nil
	case decode.KIncDecRM:
		a := readOperand(insn.Dst, insn.Width, seg, false)
		r := incDecResult(a, insn.IsDec)
		fs := incDecFlags(a, r, insn.IsDec)
		stmts := fs.moveExceptCF(attrs)
		stmts = append(stmts, writeOperand(insn.Dst, insn.Width, r, seg, false, attrs))
		return stmts, nil
	case decode.KPushReg:
		return lf.emitPush(reg.ReadSub(insn.RegIndex, insn.Width), insn.Width, attrs), nil
	case decode.KPushImm:
		return lf.emitPush(il.Int(uint64(insn.Src.Imm), il.Reg(insn.Width)), insn.Width, attrs), nil
	case decode.KPopReg:
		return emitPop(insn.RegIndex, insn.Width, attrs), nil
	case decode.KImul3:
		return lf.emitImul(insn.Dst, readOperand(insn.Src, insn.Width, seg, false), readOperand(insn.Src2, insn.Width, seg, false), insn.Width, seg, attrs), nil
	case decode.KImul2:
		return lf.emitImul(insn.Dst, readOperand(insn.Dst, insn.Width, seg, false), readOperand(insn.Src, insn.Width, seg, false), insn.Width, seg, attrs), nil
	case decode.KJcc:
		target := relTarget(endAddr, insn.Src.Imm)
		cond := decode.CondExpr(insn.Cond)
		fallthroughTarget := il.Int(uint64(endAddr), il.Bit32)
		return []il.Stmt{il.CJmp(cond, target, fallthroughTarget, attrs)}, nil
	case decode.KJmpRel:
		return []il.Stmt{il.Jmp(relTarget(endAddr, insn.Src.Imm), attrs)}, nil
	case decode.KCallRel:
		target := relTarget(endAddr, insn.Src.Imm)
		callAttrs := attrs
		callAttrs.Role = "call"
		return []il.Stmt{
			il.Move(reg.ESP, il.BinOp(il.OpSub, il.VarOf(reg.ESP), il.Int(4, il.Bit32)), attrs),
			storeS(reg.SegSS, il.VarOf(reg.ESP), il.Int(uint64(endAddr), il.Bit32), attrs),
			il.Jmp(target, callAttrs),
		}, nil
	case decode.KRet:
		extra := uint64(0)
		if insn.Src.Kind == decode.OperandImm {
			extra = uint64(insn.Src.Imm)
		}
		ra := lf.fresh(32)
		retAttrs := attrs
		retAttrs.Role = "ret"
		return []il.Stmt{
			il.Move(ra, loadS(reg.SegSS, il.VarOf(reg.ESP), 32), attrs),
			il.Move(reg.ESP, il.BinOp(il.OpAdd, il.VarOf(reg.ESP), il.Int(4+extra, il.Bit32)), attrs),
			il.Jmp(il.VarOf(ra), retAttrs),
		}, nil
	case decode.KLea:
		addrExpr := insn.Src.Addr
		if addrExpr.Type().Width != insn.Width {
			if addrExpr.Type().Width < insn.Width {
				addrExpr = il.Cast(il.CastUnsignedExtend, il.Reg(insn.Width), addrExpr)
			} else {
				addrExpr = il.Cast(il.CastLow, il.Reg(insn.Width), addrExpr)
			}
		}
		return []il.Stmt{writeOperand(insn.Dst, insn.Width, addrExpr, seg, false, attrs)}, nil
	case decode.KNop:
		return nil, nil
	case decode.KHlt:
		return []il.Stmt{il.Jmp(il.Lab("General_protection_fault"), attrs)}, nil
	case decode.KInt:
		return []il.Stmt{il.Special(fmt.Sprintf("int %d", insn.Src.Imm), attrs)}, nil
	case decode.KCld:
		return []il.Stmt{il.Move(reg.DFLAG, il.One(il.Bit32), attrs)}, nil
	case decode.KStd:
		return []il.Stmt{il.Move(reg.DFLAG, il.UnOp(il.OpNeg, il.One(il.Bit32)), attrs)}, nil
	case decode.KStringOp:
		return lf.emitStringOp(insn, startAddr, endAddr, attrs)
	case decode.KTest:
		a := readOperand(insn.Dst, insn.Width, seg, false)
		b := readOperand(insn.Src, insn.Width, seg, false)
		r := il.BinOp(il.OpAnd, a, b)
		return logicFlags(r).move(attrs), nil
	case decode.KMovRM, decode.KMovImmReg, decode.KMovImmRM:
		val := readOperand(insn.Src, insn.Width, seg, false)
		return []il.Stmt{writeOperand(insn.Dst, insn.Width, val, seg, false, attrs)}, nil
	case decode.K0FMovSSE:
		return lf.emitSSEMove(insn, seg, attrs)
	case decode.KRdtsc:
		return []il.Stmt{
			il.Move(reg.EAX, il.Unknown("RDTSC low", il.Bit32), attrs),
			il.Move(reg.EDX, il.Unknown("RDTSC high", il.Bit32), attrs),
		}, nil
	case decode.KSysenter:
		return []il.Stmt{il.Special("syscall", attrs)}, nil
	case decode.KSetcc:
		cond := decode.CondExpr(insn.Cond)
		widened := il.Cast(il.CastUnsignedExtend, il.Bit8, cond)
		return []il.Stmt{writeOperand(insn.Dst, 8, widened, seg, false, attrs)}, nil
	case decode.KCpuid:
		return []il.Stmt{
			il.Move(reg.EAX, il.Unknown("CPUID EAX", il.Bit32), attrs),
			il.Move(reg.EBX, il.Unknown("CPUID EBX", il.Bit32), attrs),
			il.Move(reg.ECX, il.Unknown("CPUID ECX", il.Bit32), attrs),
			il.Move(reg.EDX, il.Unknown("CPUID EDX", il.Bit32), attrs),
		}, nil
	case decode.KBt:
		return lf.emitBt(insn, seg, attrs)
	case decode.KShiftDouble:
		return lf.emitShiftDouble(insn, seg, attrs)
	case decode.KMxcsr:
		if insn.IsDec {
			return []il.Stmt{writeOperand(insn.Dst, 32, il.VarOf(reg.MXCSR), seg, false, attrs)}, nil
		}
		return []il.Stmt{il.Move(reg.MXCSR, readOperand(insn.Dst, 32, seg, false), attrs)}, nil
	case decode.KCmpxchg:
		return lf.emitCmpxchg(insn, seg, attrs)
	case decode.KMovExt:
		srcWidth := int(insn.Src2.Imm)
		srcVal := readOperand(insn.Src, srcWidth, seg, false)
		kind := il.CastUnsignedExtend
		if insn.IsDec {
			kind = il.CastSignedExtend
		}
		widened := il.Cast(kind, il.Reg(insn.Width), srcVal)
		return []il.Stmt{writeOperand(insn.Dst, insn.Width, widened, seg, false, attrs)}, nil
	case decode.KBsf:
		return lf.emitBsf(insn, seg, attrs)
	case decode.KXadd:
		return lf.emitXadd(insn, seg, attrs)
	case decode.KCmpxchg8b:
		return lf.emitCmpxchg8b(insn, seg, attrs)
	case decode.KPmovmskb:
		return lf.emitPmovmskb(insn, attrs)
	case decode.KPxor:
		a := il.VarOf(reg.XMM[insn.Dst.Reg])
		b := readOperand(insn.Src, 128, seg, true)
		return []il.Stmt{il.Move(reg.XMM[insn.Dst.Reg], il.BinOp(il.OpXor, a, b), attrs)}, nil
	case decode.KGrp3:
		return lf.emitGrp3(insn, seg, attrs)
	case decode.KGrp2Shift:
		return lf.emitGrp2Shift(insn, seg, attrs)
	case decode.KGrp5:
		return lf.emitGrp5(insn, endAddr, seg, attrs)
	default:
		return nil, &decode.Error{Kind: decode.UnsupportedOpcode, Detail: "lift: unhandled InsnKind"}
	}
}

func relTarget(endAddr uint32, rel int64) il.Expr {
	return il.Int(uint64(endAddr)+uint64(rel), il.Bit32)
}

func incDecResult(a il.Expr, isDec bool) il.Expr {
	one := il.One(a.Type())
	if isDec {
		return il.BinOp(il.OpSub, a, one)
	}
	return il.BinOp(il.OpAdd, a, one)
}

// emitArith handles the 00-3D/Grp1 eight-way arithmetic/logic family.
func (lf *Lifter) emitArith(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	if insn.ArithOp == decode.ArithXor && insn.Dst.Kind == decode.OperandReg && insn.Src.Kind == decode.OperandReg && insn.Dst.Reg == insn.Src.Reg {
		zero, fs := selfXorFlags(width)
		stmts := fs.move(attrs)
		stmts = append(stmts, writeOperand(insn.Dst, width, zero, seg, false, attrs))
		return stmts, nil
	}
	a := readOperand(insn.Dst, width, seg, false)
	b := readOperand(insn.Src, width, seg, false)
	switch insn.ArithOp {
	case decode.ArithAdd:
		r := il.BinOp(il.OpAdd, a, b)
		fs := addFlags(a, b, r)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithAdc:
		bAdj := adjustByCarry(b, width, false)
		r := il.BinOp(il.OpAdd, a, bAdj)
		fs := addFlags(a, bAdj, r)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithSub:
		r := il.BinOp(il.OpSub, a, b)
		fs := subFlags(a, b, r)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithSbb:
		bAdj := adjustByCarry(b, width, false)
		r := il.BinOp(il.OpSub, a, bAdj)
		fs := subFlags(a, bAdj, r)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithCmp:
		r := il.BinOp(il.OpSub, a, b)
		return subFlags(a, b, r).move(attrs), nil
	case decode.ArithAnd:
		r := il.BinOp(il.OpAnd, a, b)
		stmts := logicFlags(r).move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithOr:
		r := il.BinOp(il.OpOr, a, b)
		stmts := logicFlags(r).move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ArithXor:
		r := il.BinOp(il.OpXor, a, b)
		stmts := logicFlags(r).move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	}
	return nil, &decode.Error{Kind: decode.UnsupportedOpcode, Detail: "lift: unhandled ArithOp"}
}

// adjustByCarry folds CF into operand b before the add/sub, the deliberate
// ADC/SBB simplification recorded in DESIGN.md: the exact borrow-propagation
// edge case (b at its max value plus CF=1 overflowing before the main op)
// is not handled separately: CF is added to b at the operand width and the
// two-input add/sub flag formulas are reused, rather than a three-input adder.
func adjustByCarry(b il.Expr, width int, _ bool) il.Expr {
	cf := il.Cast(il.CastUnsignedExtend, il.Reg(width), il.VarOf(reg.CF))
	return il.BinOp(il.OpAdd, b, cf)
}

// emitGrp3 handles F6/F7: TEST/NOT/NEG modeled fully; MUL/IMUL/DIV/IDIV's
// dual-destination (AH:AL / DX:AX / EDX:EAX) update is left unimplemented,
// extending spec's explicit "single-operand IMUL's dual-destination update
// is absent" open question to the whole multiply/divide quartet rather
// than inventing divide-by-zero and partial-product semantics (see
// DESIGN.md).
func (lf *Lifter) emitGrp3(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	a := readOperand(insn.Dst, width, seg, false)
	switch insn.Grp3Op {
	case decode.Grp3Test, decode.Grp3Test2:
		b := readOperand(insn.Src, width, seg, false)
		r := il.BinOp(il.OpAnd, a, b)
		return logicFlags(r).move(attrs), nil
	case decode.Grp3Not:
		r := il.UnOp(il.OpNot, a)
		return []il.Stmt{writeOperand(insn.Dst, width, r, seg, false, attrs)}, nil
	case decode.Grp3Neg:
		zero := il.Zero(il.Reg(width))
		r := il.BinOp(il.OpSub, zero, a)
		fs := subFlags(zero, a, r)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	default:
		return nil, &decode.Error{Kind: decode.UnsupportedOperandForm, Detail: "MUL/IMUL/DIV/IDIV dual-destination update not modeled"}
	}
}

// emitGrp2Shift handles C0/C1/D0-D3: ROL/ROR/SHL/SHR/SAR; through-carry
// rotates are a deliberately unimplemented open question (spec §9).
func (lf *Lifter) emitGrp2Shift(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	a := readOperand(insn.Dst, width, seg, false)
	count := readOperand(insn.Src, 8, seg, false)
	countW := il.Cast(il.CastUnsignedExtend, il.Reg(width), count)
	masked := il.BinOp(il.OpAnd, countW, il.Int(31, il.Reg(width)))
	countIsZero := il.BinOp(il.OpEq, masked, il.Zero(il.Reg(width)))
	countIsOne := il.BinOp(il.OpEq, masked, il.One(il.Reg(width)))

	switch insn.ShiftOp {
	case decode.ShiftRol, decode.ShiftRor:
		widthConst := il.Int(uint64(width), il.Reg(width))
		comp := il.BinOp(il.OpSub, widthConst, masked)
		var rotated il.Expr
		if insn.ShiftOp == decode.ShiftRol {
			rotated = il.BinOp(il.OpOr, il.BinOp(il.OpShl, a, masked), il.BinOp(il.OpShr, a, comp))
		} else {
			rotated = il.BinOp(il.OpOr, il.BinOp(il.OpShr, a, masked), il.BinOp(il.OpShl, a, comp))
		}
		result := il.Ite(countIsZero, a, rotated)
		cf := il.Ite(countIsZero, il.VarOf(reg.CF), highBit(rotated))
		of := il.Ite(countIsOne, il.Unknown("OF after rotate", il.Bit1), il.Unknown("OF after rotate count!=1", il.Bit1))
		return []il.Stmt{
			il.Move(reg.CF, cf, attrs),
			il.Move(reg.OF, of, attrs),
			writeOperand(insn.Dst, width, result, seg, false, attrs),
		}, nil
	case decode.ShiftRcl, decode.ShiftRcr:
		return nil, &decode.Error{Kind: decode.InvalidEncoding, Detail: "through-carry rotate (RCL/RCR) not modeled"}
	case decode.ShiftShl, decode.ShiftSalDup:
		r := il.Ite(countIsZero, a, il.BinOp(il.OpShl, a, masked))
		fs := shiftFlags(shiftLeft, a, r, masked, countIsOne)
		fs = preserveOnZero(fs, countIsZero)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ShiftShr:
		r := il.Ite(countIsZero, a, il.BinOp(il.OpShr, a, masked))
		fs := shiftFlags(shiftRightLogical, a, r, masked, countIsOne)
		fs = preserveOnZero(fs, countIsZero)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	case decode.ShiftSar:
		r := il.Ite(countIsZero, a, il.BinOp(il.OpSar, a, masked))
		fs := shiftFlags(shiftRightArith, a, r, masked, countIsOne)
		fs = preserveOnZero(fs, countIsZero)
		stmts := fs.move(attrs)
		return append(stmts, writeOperand(insn.Dst, width, r, seg, false, attrs)), nil
	}
	return nil, &decode.Error{Kind: decode.UnsupportedOpcode, Detail: "lift: unhandled ShiftOp"}
}

// preserveOnZero wraps CF/PF/AF/ZF/SF/OF in an Ite that keeps the pre-shift
// flag values when the effective count is zero (spec §4.6 Shifts). OF's
// count==1 special case is already encoded inside shiftFlags.
func preserveOnZero(fs flagSet, countIsZero il.Expr) flagSet {
	return flagSet{
		CF: il.Ite(countIsZero, il.VarOf(reg.CF), fs.CF),
		PF: il.Ite(countIsZero, il.VarOf(reg.PF), fs.PF),
		AF: il.Ite(countIsZero, il.VarOf(reg.AF), fs.AF),
		ZF: il.Ite(countIsZero, il.VarOf(reg.ZF), fs.ZF),
		SF: il.Ite(countIsZero, il.VarOf(reg.SF), fs.SF),
		OF: il.Ite(countIsZero, il.VarOf(reg.OF), fs.OF),
	}
}

// emitGrp5 handles FF: INC/DEC/CALL/JMP/PUSH Ev.
func (lf *Lifter) emitGrp5(insn decode.Insn, endAddr uint32, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	switch insn.Grp5Op {
	case decode.Grp5Inc, decode.Grp5Dec:
		isDec := insn.Grp5Op == decode.Grp5Dec
		a := readOperand(insn.Dst, insn.Width, seg, false)
		r := incDecResult(a, isDec)
		fs := incDecFlags(a, r, isDec)
		stmts := fs.moveExceptCF(attrs)
		return append(stmts, writeOperand(insn.Dst, insn.Width, r, seg, false, attrs)), nil
	case decode.Grp5Push:
		return lf.emitPush(readOperand(insn.Dst, insn.Width, seg, false), insn.Width, attrs), nil
	case decode.Grp5CallNear:
		target := readOperand(insn.Dst, insn.Width, seg, false)
		callAttrs := attrs
		callAttrs.Role = "call"
		return []il.Stmt{
			il.Move(reg.ESP, il.BinOp(il.OpSub, il.VarOf(reg.ESP), il.Int(4, il.Bit32)), attrs),
			storeS(reg.SegSS, il.VarOf(reg.ESP), il.Int(uint64(endAddr), il.Bit32), attrs),
			il.Jmp(target, callAttrs),
		}, nil
	case decode.Grp5JmpNear:
		return []il.Stmt{il.Jmp(readOperand(insn.Dst, insn.Width, seg, false), attrs)}, nil
	default:
		return nil, &decode.Error{Kind: decode.UnsupportedOperandForm, Detail: "Grp5 far call/jmp form not modeled (no separate code segment)"}
	}
}

func (lf *Lifter) emitPush(value il.Expr, width int, attrs il.Attrs) []il.Stmt {
	t := lf.fresh(width)
	return []il.Stmt{
		il.Move(t, value, attrs),
		il.Move(reg.ESP, il.BinOp(il.OpSub, il.VarOf(reg.ESP), il.Int(uint64(width/8), il.Bit32)), attrs),
		storeS(reg.SegSS, il.VarOf(reg.ESP), il.VarOf(t), attrs),
	}
}

func emitPop(regIndex, width int, attrs il.Attrs) []il.Stmt {
	val := loadS(reg.SegSS, il.VarOf(reg.ESP), width)
	stmts := []il.Stmt{reg.WriteSub(regIndex, width, val, attrs)}
	if regIndex != 4 { // POP ESP suppresses the ESP increment (spec §4.6/§8).
		stmts = append(stmts, il.Move(reg.ESP, il.BinOp(il.OpAdd, il.VarOf(reg.ESP), il.Int(uint64(width/8), il.Bit32)), attrs))
	}
	return stmts
}

// emitImul computes r = a * b at double width and derives exact CF/OF from
// whether the truncated low half sign-extends back to the full product;
// SF/ZF/AF/PF are spec-mandated Unknown for this flag-unimplemented family.
func (lf *Lifter) emitImul(dst decode.Operand, a, b il.Expr, width int, seg reg.Segment, attrs il.Attrs) []il.Stmt {
	dw := width * 2
	aExt := il.Cast(il.CastSignedExtend, il.Reg(dw), a)
	bExt := il.Cast(il.CastSignedExtend, il.Reg(dw), b)
	product := il.BinOp(il.OpMul, aExt, bExt)
	lo := il.Cast(il.CastLow, il.Reg(width), product)
	truncSignExt := il.Cast(il.CastSignedExtend, il.Reg(dw), lo)
	mismatch := il.BinOp(il.OpXor, il.BinOp(il.OpEq, truncSignExt, product), il.One(il.Bit1))
	stmts := []il.Stmt{
		il.Move(reg.CF, mismatch, attrs),
		il.Move(reg.OF, mismatch, attrs),
		il.Move(reg.PF, il.Unknown("PF after imul", il.Bit1), attrs),
		il.Move(reg.AF, il.Unknown("AF after imul", il.Bit1), attrs),
		il.Move(reg.ZF, il.Unknown("ZF after imul", il.Bit1), attrs),
		il.Move(reg.SF, il.Unknown("SF after imul", il.Bit1), attrs),
	}
	return append(stmts, writeOperand(dst, width, lo, seg, false, attrs))
}

func (lf *Lifter) emitCmpxchg(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	acc := reg.ReadSub(0, width)
	dstVal := readOperand(insn.Dst, width, seg, false)
	srcVal := readOperand(insn.Src, width, seg, false)
	tAcc := lf.fresh(width)
	tDst := lf.fresh(width)
	stmts := []il.Stmt{
		il.Move(tAcc, acc, attrs),
		il.Move(tDst, dstVal, attrs),
	}
	zf := il.BinOp(il.OpEq, il.VarOf(tAcc), il.VarOf(tDst))
	cmpResult := il.BinOp(il.OpSub, il.VarOf(tAcc), il.VarOf(tDst))
	fs := subFlags(il.VarOf(tAcc), il.VarOf(tDst), cmpResult)
	fs.ZF = zf
	stmts = append(stmts, fs.move(attrs)...)
	newAcc := il.Ite(zf, il.VarOf(tAcc), il.VarOf(tDst))
	newDst := il.Ite(zf, srcVal, il.VarOf(tDst))
	stmts = append(stmts, reg.WriteSub(0, width, newAcc, attrs))
	stmts = append(stmts, writeOperand(insn.Dst, width, newDst, seg, false, attrs))
	return stmts, nil
}

func (lf *Lifter) emitCmpxchg8b(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	memVal := loadS(seg, insn.Dst.Addr, 64)
	tMem := lf.fresh(64)
	stmts := []il.Stmt{il.Move(tMem, memVal, attrs)}
	edxEax := il.Concat(il.VarOf(reg.EDX), il.VarOf(reg.EAX))
	zf := il.BinOp(il.OpEq, edxEax, il.VarOf(tMem))
	ecxEbx := il.Concat(il.VarOf(reg.ECX), il.VarOf(reg.EBX))
	newMem := il.Ite(zf, ecxEbx, il.VarOf(tMem))
	newEax := il.Ite(zf, il.VarOf(reg.EAX), il.Cast(il.CastLow, il.Bit32, il.VarOf(tMem)))
	newEdx := il.Ite(zf, il.VarOf(reg.EDX), il.Cast(il.CastHigh, il.Bit32, il.VarOf(tMem)))
	stmts = append(stmts,
		il.Move(reg.ZF, zf, attrs),
		il.Move(reg.EAX, newEax, attrs),
		il.Move(reg.EDX, newEdx, attrs),
		storeS(seg, insn.Dst.Addr, newMem, attrs),
	)
	return stmts, nil
}

// emitBsf builds a nested Ite chain checking bit 0 upward: the loop
// constructs from high index to low so that the final wrap (bit 0) ends up
// outermost and is therefore checked first, matching "least-set bit wins".
func (lf *Lifter) emitBsf(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	src := readOperand(insn.Src, width, seg, false)
	result := il.Unknown("BSF of zero source", il.Reg(width))
	for i := width - 1; i >= 0; i-- {
		bitSet := il.Extract(i, i, src)
		result = il.Ite(bitSet, il.Int(uint64(i), il.Reg(width)), result)
	}
	zf := il.BinOp(il.OpEq, src, il.Zero(il.Reg(width)))
	stmts := []il.Stmt{
		il.Move(reg.ZF, zf, attrs),
		il.Move(reg.CF, il.Unknown("CF after bsf", il.Bit1), attrs),
		il.Move(reg.PF, il.Unknown("PF after bsf", il.Bit1), attrs),
		il.Move(reg.AF, il.Unknown("AF after bsf", il.Bit1), attrs),
		il.Move(reg.SF, il.Unknown("SF after bsf", il.Bit1), attrs),
		il.Move(reg.OF, il.Unknown("OF after bsf", il.Bit1), attrs),
	}
	return append(stmts, writeOperand(insn.Dst, width, result, seg, false, attrs)), nil
}

func (lf *Lifter) emitXadd(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	dstVal := readOperand(insn.Dst, width, seg, false)
	srcVal := readOperand(insn.Src, width, seg, false)
	tDst := lf.fresh(width)
	tSrc := lf.fresh(width)
	stmts := []il.Stmt{
		il.Move(tDst, dstVal, attrs),
		il.Move(tSrc, srcVal, attrs),
	}
	sum := il.BinOp(il.OpAdd, il.VarOf(tDst), il.VarOf(tSrc))
	fs := addFlags(il.VarOf(tDst), il.VarOf(tSrc), sum)
	stmts = append(stmts, fs.move(attrs)...)
	stmts = append(stmts, writeOperand(insn.Src, width, il.VarOf(tDst), seg, false, attrs))
	stmts = append(stmts, writeOperand(insn.Dst, width, sum, seg, false, attrs))
	return stmts, nil
}

// emitBt handles BT/BTS (spec §4.6): a memory base splits the offset into a
// byte offset and a bit-within-byte; a register base masks the offset to
// the operand width and shifts in place.
func (lf *Lifter) emitBt(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	if insn.Dst.Kind == decode.OperandMem {
		offset := readOperand(insn.Src, width, seg, false)
		offset32 := offset
		if width != 32 {
			offset32 = il.Cast(il.CastSignedExtend, il.Bit32, offset)
		}
		byteOff := il.BinOp(il.OpShr, offset32, il.Int(3, il.Bit32))
		bitWithin := il.Cast(il.CastLow, il.Bit8, il.BinOp(il.OpAnd, offset32, il.Int(7, il.Bit32)))
		fullAddr := il.BinOp(il.OpAdd, canonAddr(insn.Dst.Addr), byteOff)
		byteVal := loadS(seg, fullAddr, 8)
		cf := il.Extract(0, 0, il.BinOp(il.OpShr, byteVal, bitWithin))
		stmts := btFlagMoves(cf, attrs)
		if insn.BtOp == decode.BtSet {
			newByte := il.BinOp(il.OpOr, byteVal, il.BinOp(il.OpShl, il.One(il.Bit8), bitWithin))
			stmts = append(stmts, storeS(seg, fullAddr, newByte, attrs))
		}
		return stmts, nil
	}
	regVal := readOperand(insn.Dst, width, seg, false)
	offset := readOperand(insn.Src, width, seg, false)
	bitIdx := il.BinOp(il.OpAnd, offset, il.Int(uint64(width-1), il.Reg(width)))
	cf := il.Extract(0, 0, il.BinOp(il.OpShr, regVal, bitIdx))
	stmts := btFlagMoves(cf, attrs)
	if insn.BtOp == decode.BtSet {
		newVal := il.BinOp(il.OpOr, regVal, il.BinOp(il.OpShl, il.One(il.Reg(width)), bitIdx))
		stmts = append(stmts, writeOperand(insn.Dst, width, newVal, seg, false, attrs))
	}
	return stmts, nil
}

func btFlagMoves(cf il.Expr, attrs il.Attrs) []il.Stmt {
	return []il.Stmt{
		il.Move(reg.CF, cf, attrs),
		il.Move(reg.OF, il.Unknown("OF after bt", il.Bit1), attrs),
		il.Move(reg.SF, il.Unknown("SF after bt", il.Bit1), attrs),
		il.Move(reg.AF, il.Unknown("AF after bt", il.Bit1), attrs),
		il.Move(reg.PF, il.Unknown("PF after bt", il.Bit1), attrs),
	}
}

// emitShiftDouble handles SHLD/SHRD (spec §4.6/§9; flags beyond CF/PSZ are
// not specified by spec and are left Unknown, a DESIGN.md decision).
func (lf *Lifter) emitShiftDouble(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	width := insn.Width
	dst := readOperand(insn.Dst, width, seg, false)
	src := readOperand(insn.Src, width, seg, false)
	countRaw := readOperand(insn.Src2, 8, seg, false)
	count := il.Cast(il.CastUnsignedExtend, il.Reg(width), countRaw)
	masked := il.BinOp(il.OpAnd, count, il.Int(31, il.Reg(width)))
	countIsZero := il.BinOp(il.OpEq, masked, il.Zero(il.Reg(width)))
	widthConst := il.Int(uint64(width), il.Reg(width))
	comp := il.BinOp(il.OpSub, widthConst, masked)

	var merged, cf il.Expr
	if insn.IsDec { // SHRD
		merged = il.BinOp(il.OpOr, il.BinOp(il.OpShr, dst, masked), il.BinOp(il.OpShl, src, comp))
		oneShift := il.BinOp(il.OpShr, dst, il.BinOp(il.OpSub, masked, il.One(il.Reg(width))))
		cf = il.Extract(0, 0, oneShift)
	} else { // SHLD
		merged = il.BinOp(il.OpOr, il.BinOp(il.OpShl, dst, masked), il.BinOp(il.OpShr, src, comp))
		oneShift := il.BinOp(il.OpShl, dst, il.BinOp(il.OpSub, masked, il.One(il.Reg(width))))
		cf = highBit(oneShift)
	}
	result := il.Ite(countIsZero, dst, merged)
	pf, sf, zf := pszFromResult(result)
	fs := flagSet{
		CF: il.Ite(countIsZero, il.VarOf(reg.CF), cf),
		PF: il.Ite(countIsZero, il.VarOf(reg.PF), pf),
		AF: il.Unknown("AF after shld/shrd", il.Bit1),
		ZF: il.Ite(countIsZero, il.VarOf(reg.ZF), zf),
		SF: il.Ite(countIsZero, il.VarOf(reg.SF), sf),
		OF: il.Unknown("OF after shld/shrd", il.Bit1),
	}
	stmts := fs.move(attrs)
	return append(stmts, writeOperand(insn.Dst, width, result, seg, false, attrs)), nil
}

func (lf *Lifter) emitSSEMove(insn decode.Insn, seg reg.Segment, attrs il.Attrs) ([]il.Stmt, error) {
	switch insn.Width {
	case 128:
		val := readOperand(insn.Src, 128, seg, true)
		return []il.Stmt{writeOperand(insn.Dst, 128, val, seg, true, attrs)}, nil
	case 32:
		if insn.IsDec { // 0x6E: XMM(dst) <- zero-extended GP32/mem(src)
			srcVal := readOperand(insn.Src, 32, seg, false)
			widened := il.Cast(il.CastUnsignedExtend, il.Bit128, srcVal)
			return []il.Stmt{il.Move(reg.XMM[insn.Dst.Reg], widened, attrs)}, nil
		}
		// 0x7E: GP32/mem(dst) <- low 32 bits of XMM(src)
		srcVal := readOperand(insn.Src, 128, seg, true)
		low := il.Cast(il.CastLow, il.Bit32, srcVal)
		return []il.Stmt{writeOperand(insn.Dst, 32, low, seg, false, attrs)}, nil
	default:
		return nil, &decode.Error{Kind: decode.UnsupportedOperandForm, Detail: "64-bit MMX register move not modeled (no MM0-7 state)"}
	}
}

func (lf *Lifter) emitPmovmskb(insn decode.Insn, attrs il.Attrs) ([]il.Stmt, error) {
	xmmVal := il.VarOf(reg.XMM[insn.Src.Reg])
	bits := il.Extract(7, 7, xmmVal)
	for i := 1; i <= 15; i++ {
		bit := il.Extract(i*8+7, i*8+7, xmmVal)
		bits = il.Concat(bit, bits)
	}
	widened := il.Cast(il.CastUnsignedExtend, il.Bit32, bits)
	return []il.Stmt{reg.WriteSub(insn.Dst.Reg, 32, widened, attrs)}, nil
}
