package lift

import (
	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/reg"
)

// canonAddr widens a possibly-16-bit effective address to the 32-bit width
// the single memory array M is indexed by (spec §4.4's 16-bit addressing
// mode produces a Bit16 expression; M is TMem(32)).
func canonAddr(addr il.Expr) il.Expr {
	if addr.Type().Width == 32 {
		return addr
	}
	return il.Cast(il.CastUnsignedExtend, il.Bit32, addr)
}

// segBase adds the segment's base register to addr when the segment
// contributes a nonzero base (FS/GS only), per spec §9 "segment base
// injection": load_s/store_s are the single place this is applied, rather
// than every emission site reasoning about segments itself.
func segBase(seg reg.Segment, addr il.Expr) il.Expr {
	base := seg.Base()
	if base == nil {
		return addr
	}
	return il.BinOp(il.OpAdd, addr, il.VarOf(*base))
}

// loadS reads a width-bit little-endian value from [seg:addr].
func loadS(seg reg.Segment, addr il.Expr, width int) il.Expr {
	full := segBase(seg, canonAddr(addr))
	return il.Load(il.VarOf(reg.M), full, il.LittleEndian, il.Reg(width))
}

// storeS writes value (width bits) to [seg:addr], installing the resulting
// memory value into M.
func storeS(seg reg.Segment, addr, value il.Expr, attrs il.Attrs) il.Stmt {
	full := segBase(seg, canonAddr(addr))
	return il.Move(reg.M, il.Store(il.VarOf(reg.M), full, value, il.LittleEndian), attrs)
}

// readOperand reads a decode.Operand's value at the given width. xmm
// selects the XMM register file instead of GP32/sub-register reads for
// OperandReg (used by the SSE move family, where the ModR/M register-field
// index addresses XMM0..7 rather than EAX..EDI).
func readOperand(op decode.Operand, width int, seg reg.Segment, xmm bool) il.Expr {
	switch op.Kind {
	case decode.OperandReg:
		if xmm {
			return il.VarOf(reg.XMM[op.Reg])
		}
		return reg.ReadSub(op.Reg, width)
	case decode.OperandMem:
		return loadS(seg, op.Addr, width)
	case decode.OperandImm:
		return il.Int(uint64(op.Imm), il.Reg(width))
	default:
		panic("lift: readOperand: unhandled operand kind")
	}
}

// writeOperand writes value into a decode.Operand, the symmetric
// counterpart to readOperand.
func writeOperand(op decode.Operand, width int, value il.Expr, seg reg.Segment, xmm bool, attrs il.Attrs) il.Stmt {
	switch op.Kind {
	case decode.OperandReg:
		if xmm {
			return il.Move(reg.XMM[op.Reg], value, attrs)
		}
		return reg.WriteSub(op.Reg, width, value, attrs)
	case decode.OperandMem:
		return storeS(seg, op.Addr, value, attrs)
	default:
		panic("lift: writeOperand: cannot write to an immediate operand")
	}
}
