package decode

import "github.com/oisee/x86lift/pkg/il"

// classifyMovRM handles 88/89 (MOV rm<-r) and 8A/8B (MOV r<-rm).
func (r *Reader) classifyMovRM(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	wide := b1 == 0x89 || b1 == 0x8B
	width := operandWidth(wide, prefix)
	regF, rm, next, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	insn := Insn{Kind: KMovRM, Width: width, Prefix: prefix, Mnemonic: "mov"}
	if b1 == 0x88 || b1 == 0x89 {
		insn.Dst, insn.Src = rm, regOperand(regF, width)
	} else {
		insn.Dst, insn.Src = regOperand(regF, width), rm
	}
	return insn, next, nil
}

// classifyLea handles 8D: LEA r, m. The source must be a memory operand —
// LEA with a register r/m is a reserved/undefined encoding on real
// hardware and rejected here (spec §7 InvalidEncoding).
func (r *Reader) classifyLea(addr uint32, prefix PrefixRecord, prefixBytes []byte) (Insn, uint32, error) {
	regF, rm, next, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	if rm.Kind != OperandMem {
		return Insn{}, addr, &Error{Kind: InvalidEncoding, PrefixBytes: prefixBytes, Detail: "LEA with register r/m operand"}
	}
	width := prefix.OperandWidth()
	return Insn{Kind: KLea, Width: width, Dst: regOperand(regF, width), Src: rm, Prefix: prefix, Mnemonic: "lea"}, next, nil
}

// classifyMovImmReg handles B0-B7 (MOV r8,imm8) and B8-BF (MOV r32/16,immz).
func (r *Reader) classifyMovImmReg(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	wide := b1 >= 0xB8
	width := operandWidth(wide, prefix)
	regIndex := b1 & 7
	var immExpr il.Expr
	var next uint32
	var err error
	if width == 8 {
		immExpr, next, err = r.Imm8(addr)
	} else {
		immExpr, next, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{
		Kind:   KMovImmReg,
		Width:  width,
		Dst:    regOperand(regIndex, width),
		Src:    Operand{Kind: OperandImm, Imm: exprConst(immExpr)},
		Prefix: prefix,
		Mnemonic: "mov r,imm",
	}, next, nil
}

// classifyMovImmRM handles C6 (MOV Eb,Ib) and C7 (MOV Ev,Iz); the ModR/M
// reg field must be 0 (Grp11) — any other value is reserved.
func (r *Reader) classifyMovImmRM(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1 == 0xC7, prefix)
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	if regF != 0 {
		return Insn{}, addr, &Error{Kind: InvalidEncoding, PrefixBytes: prefixBytes, Detail: "Grp11 reg field != 0"}
	}
	var immExpr il.Expr
	if width == 8 {
		immExpr, addr, err = r.Imm8(addr)
	} else {
		immExpr, addr, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KMovImmRM, Width: width, Dst: rm, Src: Operand{Kind: OperandImm, Imm: exprConst(immExpr)}, Prefix: prefix, Mnemonic: "mov rm,imm"}, addr, nil
}
