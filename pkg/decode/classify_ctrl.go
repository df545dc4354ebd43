package decode

import "github.com/oisee/x86lift/pkg/il"

// classifyIncDecReg handles 40-47 (INC r32) and 48-4F (DEC r32).
func (r *Reader) classifyIncDecReg(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	isDec := b1 >= 0x48
	width := prefix.OperandWidth()
	return Insn{
		Kind:     KIncDecReg,
		RegIndex: int(b1 & 7),
		Width:    width,
		IsDec:    isDec,
		Prefix:   prefix,
		Mnemonic: "inc/dec r32",
	}, addr, nil
}

// classifyPushImm handles 68 (PUSH immz) and 6A (PUSH imm8 sign-extended).
func (r *Reader) classifyPushImm(addr uint32, prefix PrefixRecord, sx8 bool, prefixBytes []byte) (Insn, uint32, error) {
	width := prefix.OperandWidth()
	var immExpr il.Expr
	var next uint32
	var err error
	if sx8 {
		immExpr, next, err = r.Imm8Sx(addr, width)
	} else {
		immExpr, next, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KPushImm, Width: width, Src: Operand{Kind: OperandImm, Imm: exprConst(immExpr)}, Prefix: prefix, Mnemonic: "push imm"}, next, nil
}

// classifyImul3 handles 69 (IMUL r, rm, immz) and 6B (IMUL r, rm, imm8 sx).
// Per spec §4.6, the full flag-update rules for multi-operand IMUL are
// not modeled: at emission CF/OF are computed and SF/ZF/AF/PF become Unknown.
func (r *Reader) classifyImul3(addr uint32, prefix PrefixRecord, sx8 bool, prefixBytes []byte) (Insn, uint32, error) {
	width := prefix.OperandWidth()
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	var immExpr il.Expr
	if sx8 {
		immExpr, addr, err = r.Imm8Sx(addr, width)
	} else {
		immExpr, addr, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{
		Kind:   KImul3,
		Width:  width,
		Dst:    regOperand(regF, width),
		Src:    rm,
		Src2:   Operand{Kind: OperandImm, Imm: exprConst(immExpr)},
		Prefix: prefix,
		Mnemonic: "imul r,rm,imm",
	}, addr, nil
}

// classifyJccShort handles 70-7F: Jcc rel8.
func (r *Reader) classifyJccShort(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	cond, err := CondFromNibble(b1 & 0x0F)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.PrefixBytes, e.OpcodeBytes = prefixBytes, []byte{b1}
		}
		return Insn{}, addr, err
	}
	rel, next, err := r.Imm8Sx(addr, 32)
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KJcc, Cond: cond, Src: Operand{Kind: OperandImm, Imm: exprConst(rel)}, Prefix: prefix, Mnemonic: "jcc rel8"}, next, nil
}

// classifyJmpRel handles E9 (JMP rel32) and EB (JMP rel8).
func (r *Reader) classifyJmpRel(addr uint32, prefix PrefixRecord, short bool, prefixBytes []byte) (Insn, uint32, error) {
	var rel il.Expr
	var next uint32
	var err error
	if short {
		rel, next, err = r.Imm8Sx(addr, 32)
	} else {
		v, n, e := r.U32(addr)
		rel, next, err = il.Int(uint64(v), il.Bit32), n, e
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KJmpRel, Src: Operand{Kind: OperandImm, Imm: exprConst(rel)}, Prefix: prefix, Mnemonic: "jmp rel"}, next, nil
}

// classifyCallRel handles E8: CALL rel32.
func (r *Reader) classifyCallRel(addr uint32, prefix PrefixRecord, prefixBytes []byte) (Insn, uint32, error) {
	v, next, err := r.U32(addr)
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KCallRel, Src: Operand{Kind: OperandImm, Imm: exprConst(il.Int(uint64(v), il.Bit32))}, Prefix: prefix, Mnemonic: "call rel32"}, next, nil
}
