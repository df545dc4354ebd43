package lift

import (
	"fmt"

	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/reg"
)

// emitStringOp lifts MOVS/CMPS/SCAS/STOS/LODS. Without a REP prefix it's a
// single step; with one, it's wrapped in the test-decrement-test loop
// template (spec §4.6): check ECX==0 first so a zero count never executes
// the body, decrement after each iteration, and for CMPS/SCAS continue only
// while ZF matches the REPZ/REPNZ sense. The destination memory operand is
// always ES:EDI (never segment-overridable, per real x86); ESI's segment
// honors the decoded prefix (defaulting to DS). Only 32-bit ECX/ESI/EDI
// counting is modeled; a 0x67 address-size override on a string op is not
// (see DESIGN.md).
func (lf *Lifter) emitStringOp(insn decode.Insn, startAddr, endAddr uint32, attrs il.Attrs) ([]il.Stmt, error) {
	body := lf.stringStep(insn, attrs)

	if !insn.Prefix.RepZ && !insn.Prefix.RepNZ {
		return body, nil
	}

	topLabel := fmt.Sprintf("rep_top_0x%X", startAddr)
	bodyLabel := fmt.Sprintf("rep_body_0x%X", startAddr)
	doneLabel := fmt.Sprintf("rep_done_0x%X", startAddr)

	zeroECX := il.BinOp(il.OpEq, il.VarOf(reg.ECX), il.Zero(il.Bit32))

	stmts := []il.Stmt{
		il.LabelNamed(topLabel, attrs),
		il.CJmp(zeroECX, il.Lab(doneLabel), il.Lab(bodyLabel), attrs),
		il.LabelNamed(bodyLabel, attrs),
	}
	stmts = append(stmts, body...)
	stmts = append(stmts, il.Move(reg.ECX, il.BinOp(il.OpSub, il.VarOf(reg.ECX), il.One(il.Bit32)), attrs))

	switch insn.StringOp {
	case decode.StringCmps, decode.StringScas:
		cont := il.VarOf(reg.ZF)
		if insn.Prefix.RepNZ {
			cont = negate1(cont)
		}
		stmts = append(stmts, il.CJmp(cont, il.Lab(topLabel), il.Lab(doneLabel), attrs))
	default:
		stmts = append(stmts, il.Jmp(il.Lab(topLabel), attrs))
	}
	stmts = append(stmts, il.LabelNamed(doneLabel, attrs))
	return stmts, nil
}

// stringStep emits one iteration's effect: the memory access(es), any
// comparison flags, and the ESI/EDI advance(s) scaled by DFLAG's direction
// and the operand width.
func (lf *Lifter) stringStep(insn decode.Insn, attrs il.Attrs) []il.Stmt {
	width := insn.Width
	step := il.BinOp(il.OpMul, il.VarOf(reg.DFLAG), il.Int(uint64(width/8), il.Bit32))
	advanceESI := il.Move(reg.ESI, il.BinOp(il.OpAdd, il.VarOf(reg.ESI), step), attrs)
	advanceEDI := il.Move(reg.EDI, il.BinOp(il.OpAdd, il.VarOf(reg.EDI), step), attrs)

	switch insn.StringOp {
	case decode.StringMovs:
		val := loadS(insn.Prefix.Segment, il.VarOf(reg.ESI), width)
		return []il.Stmt{
			storeS(reg.SegES, il.VarOf(reg.EDI), val, attrs),
			advanceESI,
			advanceEDI,
		}
	case decode.StringCmps:
		a := loadS(insn.Prefix.Segment, il.VarOf(reg.ESI), width)
		b := loadS(reg.SegES, il.VarOf(reg.EDI), width)
		r := il.BinOp(il.OpSub, a, b)
		fs := subFlags(a, b, r)
		stmts := fs.move(attrs)
		return append(stmts, advanceESI, advanceEDI)
	case decode.StringScas:
		acc := reg.ReadSub(0, width)
		b := loadS(reg.SegES, il.VarOf(reg.EDI), width)
		r := il.BinOp(il.OpSub, acc, b)
		fs := subFlags(acc, b, r)
		stmts := fs.move(attrs)
		return append(stmts, advanceEDI)
	case decode.StringStos:
		val := reg.ReadSub(0, width)
		return []il.Stmt{
			storeS(reg.SegES, il.VarOf(reg.EDI), val, attrs),
			advanceEDI,
		}
	case decode.StringLods:
		val := loadS(insn.Prefix.Segment, il.VarOf(reg.ESI), width)
		return []il.Stmt{
			reg.WriteSub(0, width, val, attrs),
			advanceESI,
		}
	}
	return nil
}
