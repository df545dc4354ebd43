package decode

import "github.com/oisee/x86lift/pkg/il"

// classifyArithFamily handles the 00-3D eight-way arithmetic/logic family
// (spec §4.5): (b1>>3) selects {Add,Or,Adc,Sbb,And,Sub,Xor,Cmp}; b1&7
// selects the operand form.
func (r *Reader) classifyArithFamily(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	op := ArithOpKind(b1 >> 3)
	form := b1 & 7
	wide := form&1 == 1
	width := operandWidth(wide, prefix)

	base := Insn{Kind: KArith, ArithOp: op, Width: width, Prefix: prefix, Mnemonic: "alu rm,r"}

	switch form >> 1 {
	case 0: // Eb,Gb / Ev,Gv : rm <- op(rm, r)
		regF, rm, next, err := r.DecodeModRM(addr, prefix.AddressSize)
		if err != nil {
			return Insn{}, addr, err
		}
		base.Dst = rm
		base.Src = regOperand(regF, width)
		return base, next, nil
	case 1: // Gb,Eb / Gv,Ev : r <- op(r, rm)
		regF, rm, next, err := r.DecodeModRM(addr, prefix.AddressSize)
		if err != nil {
			return Insn{}, addr, err
		}
		base.Dst = regOperand(regF, width)
		base.Src = rm
		return base, next, nil
	case 2: // AL/eAX, imm
		base.Dst = regOperand(0, width)
		var src il.Expr
		var next uint32
		var err error
		if width == 8 {
			src, next, err = r.Imm8(addr)
		} else {
			src, next, err = r.ImmZ(addr, width)
		}
		if err != nil {
			return Insn{}, addr, err
		}
		base.Src = Operand{Kind: OperandImm, Imm: exprConst(src)}
		return base, next, nil
	default:
		return Insn{}, addr, &Error{Kind: InvalidEncoding, PrefixBytes: prefixBytes, OpcodeBytes: []byte{b1}, Detail: "arith family form 3 (0x06/0x07-style segment push/pop) not modeled"}
	}
}

func regOperand(index uint8, width int) Operand {
	return Operand{Kind: OperandReg, Reg: int(index)}
}

// exprConst extracts the literal value baked into an Int expression
// produced by Imm8/Imm8Sx/ImmZ, so Operand.Imm can carry it without keeping
// an il.Expr in the Operand struct's Imm-typed field. e must be a constant
// expression (an Int literal, or Imm8Sx's sign-extending Cast of one); it is
// evaluated with no registers or memory.
func exprConst(e il.Expr) int64 {
	v, _ := il.Eval(e, nil, nil)
	return int64(v)
}

// classifyGrp1 handles 80/81/82/83: ModR/M reg field selects the 8-way
// arithmetic op; immediate size depends on the opcode (imm8 sign-extended
// for 0x83, else matching width).
func (r *Reader) classifyGrp1(addr uint32, prefix PrefixRecord, width int, immSx8 bool, prefixBytes []byte) (Insn, uint32, error) {
	regF, rm, addr, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	var immExpr il.Expr
	if immSx8 {
		immExpr, addr, err = r.Imm8Sx(addr, width)
	} else if width == 8 {
		immExpr, addr, err = r.Imm8(addr)
	} else {
		immExpr, addr, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{
		Kind:    KArith,
		ArithOp: ArithOpKind(regF),
		Width:   width,
		Dst:     rm,
		Src:     Operand{Kind: OperandImm, Imm: exprConst(immExpr)},
		Prefix:  prefix,
		Mnemonic: "grp1 rm,imm",
	}, addr, nil
}

// classifyTestRM handles 84/85: TEST rm, r (AND without storing the result).
func (r *Reader) classifyTestRM(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1 == 0x85, prefix)
	regF, rm, next, err := r.DecodeModRM(addr, prefix.AddressSize)
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KTest, Width: width, Dst: rm, Src: regOperand(regF, width), Prefix: prefix, Mnemonic: "test rm,r"}, next, nil
}

// classifyTestAcc handles A8/A9: TEST AL/eAX, imm.
func (r *Reader) classifyTestAcc(addr uint32, prefix PrefixRecord, b1 uint8, prefixBytes []byte) (Insn, uint32, error) {
	width := operandWidth(b1 == 0xA9, prefix)
	var immExpr il.Expr
	var err error
	if width == 8 {
		immExpr, addr, err = r.Imm8(addr)
	} else {
		immExpr, addr, err = r.ImmZ(addr, width)
	}
	if err != nil {
		return Insn{}, addr, err
	}
	return Insn{Kind: KTest, Width: width, Dst: regOperand(0, width), Src: Operand{Kind: OperandImm, Imm: exprConst(immExpr)}, Prefix: prefix, Mnemonic: "test acc,imm"}, addr, nil
}
