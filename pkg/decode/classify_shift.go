package decode

import "github.com/oisee/x86lift/pkg/il"

// grp2Source selects where a Grp2 shift/rotate's count operand comes from.
type grp2Source int

const (
	grp2SrcOne grp2Source = iota
	grp2SrcCL
	grp2SrcImm8
)

// classifyGrp2 handles C0/C1 (count = imm8), D0/D1 (count = 1), D2/D3
// (count = CL). The ModR/M reg field selects the shift/rotate operation.
func (r *Reader) classifyGrp2(addr uint32, prefix PrefixRecord, b1 uint8, src grp2Source, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1&1 == 1, prefix)
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	insn := Insn{Kind: KGrp2Shift, ShiftOp: ShiftOpKind(regF), Width: width, Dst: rm, Prefix: prefix, Mnemonic: "grp2 shift"}
	switch src {
	case grp2SrcOne:
		insn.Src = Operand{Kind: OperandImm, Imm: 1}
	case grp2SrcCL:
		insn.Src = regOperand(1, 8) // CL
	case grp2SrcImm8:
		immExpr, next, err := r.Imm8(addr)
		if err != nil {
			return Insn{}, addr, err
		}
		insn.Src = Operand{Kind: OperandImm, Imm: exprConst(immExpr)}
		addr = next
	}
	return insn, addr, nil
}

// classifyGrp3 handles F6/F7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV, selected by
// the ModR/M reg field. TEST (/0 and /1) additionally consumes an
// immediate.
func (r *Reader) classifyGrp3(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1 == 0xF7, prefix)
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	insn := Insn{Kind: KGrp3, Grp3Op: Grp3OpKind(regF), Width: width, Dst: rm, Prefix: prefix, Mnemonic: "grp3"}
	if regF == 0 || regF == 1 {
		var immExpr il.Expr
		if width == 8 {
			immExpr, addr, err = r.Imm8(addr)
		} else {
			immExpr, addr, err = r.ImmZ(addr, width)
		}
		if err != nil {
			return Insn{}, addr, err
		}
		insn.Src = Operand{Kind: OperandImm, Imm: exprConst(immExpr)}
	}
	return insn, addr, nil
}

// classifyGrp4 handles FE: INC/DEC Eb (ModR/M reg field 0/1; 2-7 reserved).
func (r *Reader) classifyGrp4(addr uint32, prefix PrefixRecord, prefixBytes []byte) (Insn, uint32, error) {
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	if regF > 1 {
		return Insn{}, addr, &Error{Kind: InvalidEncoding, PrefixBytes: prefixBytes, Detail: "Grp4 reg field > 1 is reserved"}
	}
	return Insn{Kind: KIncDecRM, Width: 8, Dst: rm, IsDec: regF == 1, Prefix: prefix, Mnemonic: "inc/dec rm8"}, addr, nil
}

// classifyGrp5 handles FF: INC/DEC/CALL/JMP/PUSH Ev (ModR/M reg field
// 0-6; far call/jmp forms (3/5) are decoded here, and the emitter rejects
// them with UnsupportedOperandForm).
func (r *Reader) classifyGrp5(addr uint32, prefix PrefixRecord, prefixBytes []byte) (Insn, uint32, error) {
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	if regF > 6 {
		return Insn{}, addr, &Error{Kind: InvalidEncoding, PrefixBytes: prefixBytes, Detail: "Grp5 reg field 7 is reserved"}
	}
	// Under opcode FF, /0 and /1 (INC/DEC) operate on Ev (16/32-bit,
	// prefix-selected) — FE is the separate opcode for the Eb forms.
	width := prefix.OperandWidth()
	return Insn{Kind: KGrp5, Grp5Op: Grp5OpKind(regF), Width: width, Dst: rm, Prefix: prefix, Mnemonic: "grp5"}, addr, nil
}
