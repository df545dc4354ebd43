package decode

// Classify dispatches on the first opcode byte (and, for the 0x0F escape,
// the second) to produce a typed Insn plus the address just past the fully
// consumed encoding (opcode + ModR/M + SIB + displacement + immediate).
// Grouped into per-family files mirroring spec §4.5's "Key dispatch rules"
// bullets, each grounded on the corresponding family in
// pkg/inst/instruction.go's closed OpCode enum (there: one constant per
// concrete instruction; here: one InsnKind per semantic family, since x86's
// operand space is too large to enumerate as Z80's was).
func (r *Reader) Classify(addr uint32, prefix PrefixRecord, prefixBytes []byte) (Insn, uint32, error) {
	b1, addr, err := r.U8(addr)
	if err != nil {
		return Insn{}, addr, err
	}

	switch {
	case b1 == 0x0F:
		return r.classify0F(addr, prefix, prefixBytes)
	case b1 <= 0x3D && (b1&7) < 6 && (b1>>3) < 8 && b1 != 0x0F:
		return r.classifyArithFamily(addr, prefix, b1, prefixBytes)
	case b1 >= 0x40 && b1 <= 0x4F:
		return r.classifyIncDecReg(addr, prefix, b1, prefixBytes)
	case b1 >= 0x50 && b1 <= 0x57:
		return Insn{Kind: KPushReg, RegIndex: int(b1 & 7), Width: prefix.OperandWidth(), Prefix: prefix, Mnemonic: "push r32"}, addr, nil
	case b1 >= 0x58 && b1 <= 0x5F:
		return Insn{Kind: KPopReg, RegIndex: int(b1 & 7), Width: prefix.OperandWidth(), Prefix: prefix, Mnemonic: "pop r32"}, addr, nil
	case b1 == 0x68:
		return r.classifyPushImm(addr, prefix, false, prefixBytes)
	case b1 == 0x6A:
		return r.classifyPushImm(addr, prefix, true, prefixBytes)
	case b1 == 0x69:
		return r.classifyImul3(addr, prefix, false, prefixBytes)
	case b1 == 0x6B:
		return r.classifyImul3(addr, prefix, true, prefixBytes)
	case b1 >= 0x70 && b1 <= 0x7F:
		return r.classifyJccShort(addr, prefix, b1, prefixBytes)
	case b1 == 0x80 || b1 == 0x82:
		return r.classifyGrp1(addr, prefix, 8, false, prefixBytes)
	case b1 == 0x81:
		return r.classifyGrp1(addr, prefix, prefix.OperandWidth(), false, prefixBytes)
	case b1 == 0x83:
		return r.classifyGrp1(addr, prefix, prefix.OperandWidth(), true, prefixBytes)
	case b1 == 0x84 || b1 == 0x85:
		return r.classifyTestRM(addr, prefix, b1, prefixBytes)
	case b1 == 0x88 || b1 == 0x89 || b1 == 0x8A || b1 == 0x8B:
		return r.classifyMovRM(addr, prefix, b1, prefixBytes)
	case b1 == 0x8D:
		return r.classifyLea(addr, prefix, prefixBytes)
	case b1 == 0x90:
		return Insn{Kind: KNop, Prefix: prefix, Mnemonic: "nop"}, addr, nil
	case b1 >= 0xA4 && b1 <= 0xA7:
		return r.classifyStringOp(addr, prefix, b1, prefixBytes)
	case b1 >= 0xAA && b1 <= 0xAF:
		return r.classifyStringOp(addr, prefix, b1, prefixBytes)
	case b1 == 0xA8 || b1 == 0xA9:
		return r.classifyTestAcc(addr, prefix, b1, prefixBytes)
	case b1 >= 0xB0 && b1 <= 0xBF:
		return r.classifyMovImmReg(addr, prefix, b1, prefixBytes)
	case b1 == 0xC0 || b1 == 0xC1:
		return r.classifyGrp2(addr, prefix, b1, grp2SrcImm8, prefixBytes)
	case b1 == 0xC2:
		imm, next, err := r.U16(addr)
		if err != nil {
			return Insn{}, addr, err
		}
		return Insn{Kind: KRet, Src: Operand{Kind: OperandImm, Imm: int64(imm)}, Prefix: prefix, Mnemonic: "ret imm16"}, next, nil
	case b1 == 0xC3:
		return Insn{Kind: KRet, Prefix: prefix, Mnemonic: "ret"}, addr, nil
	case b1 == 0xC6 || b1 == 0xC7:
		return r.classifyMovImmRM(addr, prefix, b1, prefixBytes)
	case b1 == 0xCC:
		return Insn{Kind: KInt, Src: Operand{Kind: OperandImm, Imm: 3}, Prefix: prefix, Mnemonic: "int3"}, addr, nil
	case b1 == 0xCD:
		imm, next, err := r.U8(addr)
		if err != nil {
			return Insn{}, addr, err
		}
		return Insn{Kind: KInt, Src: Operand{Kind: OperandImm, Imm: int64(imm)}, Prefix: prefix, Mnemonic: "int ib"}, next, nil
	case b1 == 0xD0 || b1 == 0xD1:
		return r.classifyGrp2(addr, prefix, b1, grp2SrcOne, prefixBytes)
	case b1 == 0xD2 || b1 == 0xD3:
		return r.classifyGrp2(addr, prefix, b1, grp2SrcCL, prefixBytes)
	case b1 == 0xE8:
		return r.classifyCallRel(addr, prefix, prefixBytes)
	case b1 == 0xE9:
		return r.classifyJmpRel(addr, prefix, false, prefixBytes)
	case b1 == 0xEB:
		return r.classifyJmpRel(addr, prefix, true, prefixBytes)
	case b1 == 0xF4:
		return Insn{Kind: KHlt, Prefix: prefix, Mnemonic: "hlt"}, addr, nil
	case b1 == 0xF6 || b1 == 0xF7:
		return r.classifyGrp3(addr, prefix, b1, prefixBytes)
	case b1 == 0xFC:
		return Insn{Kind: KCld, Prefix: prefix, Mnemonic: "cld"}, addr, nil
	case b1 == 0xFD:
		return Insn{Kind: KStd, Prefix: prefix, Mnemonic: "std"}, addr, nil
	case b1 == 0xFE:
		return r.classifyGrp4(addr, prefix, prefixBytes)
	case b1 == 0xFF:
		return r.classifyGrp5(addr, prefix, prefixBytes)
	default:
		return Insn{}, addr, &Error{Kind: UnsupportedOpcode, PrefixBytes: prefixBytes, OpcodeBytes: []byte{b1}, Detail: "unhandled opcode byte"}
	}
}

// operandWidth resolves the width used for a ModR/M operand: 8 if
// wide is false, else the prefix-selected operand size.
func operandWidth(wide bool, prefix PrefixRecord) int {
	if !wide {
		return 8
	}
	return prefix.OperandWidth()
}
