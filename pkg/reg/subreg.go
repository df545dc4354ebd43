package reg

import "github.com/oisee/x86lift/pkg/il"

// WriteSub builds the statement that writes value (of the given width) into
// the sub-register selected by a ModR/M-style register index, preserving
// the untouched bits of the enclosing 32-bit register. index follows the
// x86 r8/r16/r32 encoding: for width==8, index 0..3 selects AL/CL/DL/BL and
// index 4..7 selects AH/CH/DH/BH (base register index&3); for width 16/32,
// index selects GP32[index] directly; for width 128, index selects
// XMM[index].
func WriteSub(index int, width int, value il.Expr, attrs il.Attrs) il.Stmt {
	switch width {
	case 32:
		return il.Move(GP32[index], value, attrs)
	case 16:
		base := GP32[index]
		masked := il.BinOp(il.OpAnd, il.VarOf(base), il.Int(0xFFFF0000, il.Bit32))
		widened := il.Cast(il.CastUnsignedExtend, il.Bit32, value)
		return il.Move(base, il.BinOp(il.OpOr, masked, widened), attrs)
	case 8:
		if index < 4 {
			base := GP32[index]
			masked := il.BinOp(il.OpAnd, il.VarOf(base), il.Int(0xFFFFFF00, il.Bit32))
			widened := il.Cast(il.CastUnsignedExtend, il.Bit32, value)
			return il.Move(base, il.BinOp(il.OpOr, masked, widened), attrs)
		}
		base := GP32[index&3]
		masked := il.BinOp(il.OpAnd, il.VarOf(base), il.Int(0xFFFF00FF, il.Bit32))
		widened := il.Cast(il.CastUnsignedExtend, il.Bit32, value)
		shifted := il.BinOp(il.OpShl, widened, il.Int(8, il.Bit32))
		return il.Move(base, il.BinOp(il.OpOr, masked, shifted), attrs)
	case 128:
		return il.Move(XMM[index], value, attrs)
	default:
		panic("reg: WriteSub: unsupported width")
	}
}

// ReadSub builds the expression that reads the sub-register selected by
// index/width, the symmetric counterpart to WriteSub's low/high byte and
// 16-bit low extraction.
func ReadSub(index int, width int) il.Expr {
	switch width {
	case 32:
		return il.VarOf(GP32[index])
	case 16:
		return il.Cast(il.CastLow, il.Bit16, il.VarOf(GP32[index]))
	case 8:
		if index < 4 {
			return il.Cast(il.CastLow, il.Bit8, il.VarOf(GP32[index]))
		}
		base := GP32[index&3]
		shifted := il.BinOp(il.OpShr, il.VarOf(base), il.Int(8, il.Bit32))
		return il.Cast(il.CastLow, il.Bit8, shifted)
	case 128:
		return il.VarOf(XMM[index])
	default:
		panic("reg: ReadSub: unsupported width")
	}
}
