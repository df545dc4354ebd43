package decode

import "github.com/oisee/x86lift/pkg/il"

// reg16Name names the 16-bit halves used by 16-bit addressing; these are
// expressed as low-16 casts of the owning 32-bit register, matching
// pkg/reg.ReadSub(index, 16).
var reg16Name = map[string]string{
	"BX": "EBX", "SI": "ESI", "BP": "EBP", "DI": "EDI",
}

func gp16(name string) il.Expr {
	full := reg16Name[name]
	return il.Cast(il.CastLow, il.Bit16, il.VarOf(il.Var{Name: full, Typ: il.Bit32}))
}

// ea16 computes a 16-bit effective-address expression per spec §4.4's
// 16-bit table, grounded on IntuitionEngine's calcEffectiveAddress16 (same
// rm-to-base-pair mapping and the Mod=00/RM=6 direct-displacement special
// case). The whole computation happens at 16-bit width, matching spec §9's
// open question about BP+SI overflow: hardware wraps the 16-bit sum before
// any displacement is added, so composing it in Bit16 arithmetic throughout
// is the faithful choice.
func (r *Reader) ea16(addr uint32, m ModRM) (il.Expr, uint32, error) {
	var base il.Expr
	switch m.RM {
	case 0:
		base = il.BinOp(il.OpAdd, gp16("BX"), gp16("SI"))
	case 1:
		base = il.BinOp(il.OpAdd, gp16("BX"), gp16("DI"))
	case 2:
		base = il.BinOp(il.OpAdd, gp16("BP"), gp16("SI"))
	case 3:
		base = il.BinOp(il.OpAdd, gp16("BP"), gp16("DI"))
	case 4:
		base = gp16("SI")
	case 5:
		base = gp16("DI")
	case 6:
		if m.Mod == 0 {
			disp, next, err := r.U16(addr)
			if err != nil {
				return nil, addr, err
			}
			return il.Int(uint64(disp), il.Bit16), next, nil
		}
		base = gp16("BP")
	case 7:
		base = gp16("BX")
	}

	switch m.Mod {
	case 1:
		d, next, err := r.U8(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		disp := il.Cast(il.CastSignedExtend, il.Bit16, il.Int(uint64(d), il.Bit8))
		base = il.BinOp(il.OpAdd, base, disp)
	case 2:
		d, next, err := r.U16(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		base = il.BinOp(il.OpAdd, base, il.Int(uint64(d), il.Bit16))
	}
	return base, addr, nil
}

func gp32(index int) il.Expr {
	names := [8]string{"EAX", "ECX", "EDX", "EBX", "ESP", "EBP", "ESI", "EDI"}
	return il.VarOf(il.Var{Name: names[index], Typ: il.Bit32})
}

// ea32 computes a 32-bit effective-address expression per spec §4.4,
// grounded on IntuitionEngine's calcEffectiveAddress32 (SIB base=5/Mod=0
// direct-displacement special case, index=4 "no index", Mod=00/RM=5 direct
// 32-bit displacement).
func (r *Reader) ea32(addr uint32, m ModRM) (il.Expr, uint32, error) {
	if m.RM == 4 {
		return r.sib32(addr, m.Mod)
	}
	if m.RM == 5 && m.Mod == 0 {
		d, next, err := r.U32(addr)
		if err != nil {
			return nil, addr, err
		}
		return il.Int(uint64(d), il.Bit32), next, nil
	}

	base := gp32(int(m.RM))
	switch m.Mod {
	case 1:
		d, next, err := r.U8(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		disp := il.Cast(il.CastSignedExtend, il.Bit32, il.Int(uint64(d), il.Bit8))
		base = il.BinOp(il.OpAdd, base, disp)
	case 2:
		d, next, err := r.U32(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		base = il.BinOp(il.OpAdd, base, il.Int(uint64(d), il.Bit32))
	}
	return base, addr, nil
}

// sib32 decodes the SIB byte following a Mod!=3, RM==4 ModR/M byte, then
// applies the Mod-driven displacement exactly as ea32's register-direct
// path does.
func (r *Reader) sib32(addr uint32, mod uint8) (il.Expr, uint32, error) {
	b, addr, err := r.U8(addr)
	if err != nil {
		return nil, addr, err
	}
	scale := b >> 6 & 3
	index := b >> 3 & 7
	base := b & 7

	var addrExpr il.Expr
	if base == 5 && mod == 0 {
		d, next, err := r.U32(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		addrExpr = il.Int(uint64(d), il.Bit32)
	} else {
		addrExpr = gp32(int(base))
	}

	if index != 4 {
		scaled := il.BinOp(il.OpShl, gp32(int(index)), il.Int(uint64(scale), il.Bit32))
		addrExpr = il.BinOp(il.OpAdd, addrExpr, scaled)
	}

	switch mod {
	case 1:
		d, next, err := r.U8(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		disp := il.Cast(il.CastSignedExtend, il.Bit32, il.Int(uint64(d), il.Bit8))
		addrExpr = il.BinOp(il.OpAdd, addrExpr, disp)
	case 2:
		d, next, err := r.U32(addr)
		if err != nil {
			return nil, addr, err
		}
		addr = next
		addrExpr = il.BinOp(il.OpAdd, addrExpr, il.Int(uint64(d), il.Bit32))
	}
	return addrExpr, addr, nil
}

// Immediate decoders.

// Imm8 reads a raw (unsigned) 8-bit immediate.
func (r *Reader) Imm8(addr uint32) (il.Expr, uint32, error) {
	v, next, err := r.U8(addr)
	if err != nil {
		return nil, addr, err
	}
	return il.Int(uint64(v), il.Bit8), next, nil
}

// Imm8Sx extends an 8-bit immediate to the given width, sign-extended.
func (r *Reader) Imm8Sx(addr uint32, width int) (il.Expr, uint32, error) {
	v, next, err := r.U8(addr)
	if err != nil {
		return nil, addr, err
	}
	return il.Cast(il.CastSignedExtend, il.Reg(width), il.Int(uint64(v), il.Bit8)), next, nil
}

// ImmZ reads an operand-size-dependent immediate (16 vs 32 bit, "immz" in
// spec §4.4) without sign extension.
func (r *Reader) ImmZ(addr uint32, operandWidth int) (il.Expr, uint32, error) {
	if operandWidth == 16 {
		v, next, err := r.U16(addr)
		if err != nil {
			return nil, addr, err
		}
		return il.Int(uint64(v), il.Bit16), next, nil
	}
	v, next, err := r.U32(addr)
	if err != nil {
		return nil, addr, err
	}
	return il.Int(uint64(v), il.Bit32), next, nil
}

// ImmV is ImmZ under the spec's naming for the "full operand size"
// immediate form used by e.g. MOV r, imm and PUSH imm; identical behavior
// to ImmZ for the 16/32-bit subset this lifter targets.
func (r *Reader) ImmV(addr uint32, operandWidth int) (il.Expr, uint32, error) {
	return r.ImmZ(addr, operandWidth)
}
