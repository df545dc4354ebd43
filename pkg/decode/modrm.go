package decode

import "github.com/oisee/x86lift/pkg/il"

// OperandKind discriminates the internal Operand variant (spec §3).
type OperandKind int

const (
	OperandReg OperandKind = iota
	OperandMem
	OperandImm
)

// Operand is the decoder-internal operand variant: a register-field index,
// a memory effective-address expression (segment base not yet added — see
// spec §9 "segment base injection", applied by the emitter's load_s/
// store_s), or a sign/zero-extended immediate.
type Operand struct {
	Kind OperandKind
	Reg  int
	Addr il.Expr
	// Imm is the immediate's raw bit pattern at the owning Insn's Width,
	// already reduced/sign-extended as the encoding specifies (stored
	// zero-extended into int64 — it is a bit pattern, not a signed value).
	Imm int64
}

// ModRM is the parsed ModR/M byte.
type ModRM struct {
	Mod uint8
	Reg uint8 // reg/opcode-extension field
	RM  uint8
}

func splitModRM(b uint8) ModRM {
	return ModRM{Mod: b >> 6 & 3, Reg: b >> 3 & 7, RM: b & 7}
}

// DecodeModRM fetches the ModR/M byte (and SIB/displacement if required) at
// addr and returns the reg field, the r/m operand, and the next address.
// addrSize16 selects 16-bit vs 32-bit effective-address decoding (driven by
// the prefix record's AddressSize flag, spec §4.4). The returned memory
// operand's address expression does not include any segment base — that is
// added later by the emitter's load_s/store_s (spec §9).
func (r *Reader) DecodeModRM(addr uint32, addrSize16 bool) (reg8 uint8, rm Operand, next uint32, err error) {
	raw, addr, err := r.U8(addr)
	if err != nil {
		return 0, Operand{}, addr, err
	}
	m := splitModRM(raw)

	if m.Mod == 3 {
		return m.Reg, Operand{Kind: OperandReg, Reg: int(m.RM)}, addr, nil
	}

	var eaExpr il.Expr
	if addrSize16 {
		eaExpr, addr, err = r.ea16(addr, m)
	} else {
		eaExpr, addr, err = r.ea32(addr, m)
	}
	if err != nil {
		return 0, Operand{}, addr, err
	}
	return m.Reg, Operand{Kind: OperandMem, Addr: eaExpr}, addr, nil
}
