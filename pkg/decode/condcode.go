package decode

import (
	"github.com/oisee/x86lift/pkg/il"
	"github.com/oisee/x86lift/pkg/reg"
)

// CondFromNibble derives a Cond from a Jcc/SETcc opcode's low nibble, per
// spec §4.5's condition-code table: even nibbles select the listed flag
// expression, odd nibbles are its logical negation. Nibble 0xA (and its
// negated partner 0xB) is explicitly undefined in this model and rejected,
// matching spec's "0xA is undefined here; the decoder must reject with a
// specific error kind".
func CondFromNibble(n uint8) (Cond, error) {
	if n == 0x0A || n == 0x0B {
		return 0, &Error{Kind: UnsupportedOpcode, Detail: "condition code nibble 0xA/0xB (parity) is undefined in this model"}
	}
	if n > 0x0F {
		return 0, &Error{Kind: InvalidEncoding, Detail: "condition code nibble out of range"}
	}
	return Cond(n), nil
}

// CondExpr builds the 1-bit flag expression for a condition code, per spec
// §4.5's table. Shared by Jcc and SETcc emission in pkg/lift.
func CondExpr(c Cond) il.Expr {
	cf, zf, sf, of := il.VarOf(reg.CF), il.VarOf(reg.ZF), il.VarOf(reg.SF), il.VarOf(reg.OF)
	switch c {
	case CondO:
		return of
	case CondNO:
		return negate(of)
	case CondB:
		return cf
	case CondNB:
		return negate(cf)
	case CondE:
		return zf
	case CondNE:
		return negate(zf)
	case CondBE:
		return il.BinOp(il.OpOr, cf, zf)
	case CondNBE:
		return negate(il.BinOp(il.OpOr, cf, zf))
	case CondS:
		return sf
	case CondNS:
		return negate(sf)
	case CondL:
		return il.BinOp(il.OpXor, sf, of)
	case CondNL:
		return negate(il.BinOp(il.OpXor, sf, of))
	case CondLE:
		return il.BinOp(il.OpOr, zf, il.BinOp(il.OpXor, sf, of))
	case CondNLE:
		return negate(il.BinOp(il.OpOr, zf, il.BinOp(il.OpXor, sf, of)))
	default:
		panic("decode: CondExpr: condition P/NP has no defined expression in this model")
	}
}

func negate(e il.Expr) il.Expr {
	return il.BinOp(il.OpXor, e, il.One(il.Bit1))
}
