package decode

// classifyStringOp handles the A4-A7 and AA-AF string-operation family.
// Width comes from the low bit of the opcode (8 vs operand size); the
// specific operation comes from the opcode value. The REP/REPZ/REPNZ
// wrapper is applied later by the emitter (spec §4.6), not here — the
// classifier only records which prefixes were present (Insn.Prefix).
func (r *Reader) classifyStringOp(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1&1 == 1, prefix)
	var op StringOpKind
	var mnemonic string
	switch b1 {
	case 0xA4, 0xA5:
		op, mnemonic = StringMovs, "movs"
	case 0xA6, 0xA7:
		op, mnemonic = StringCmps, "cmps"
	case 0xAA, 0xAB:
		op, mnemonic = StringStos, "stos"
	case 0xAC, 0xAD:
		op, mnemonic = StringLods, "lods"
	case 0xAE, 0xAF:
		op, mnemonic = StringScas, "scas"
	default:
		return Insn{}, addr, &Error{Kind: UnsupportedOpcode, PrefixBytes: prefixBytes, OpcodeBytes: []byte{b1}, Detail: "not a string opcode"}
	}
	return Insn{Kind: KStringOp, StringOp: op, Width: width, Prefix: prefix, Mnemonic: mnemonic}, addr, nil
}
