package decode

import (
	"testing"

	"github.com/oisee/x86lift/pkg/il"
)

func oracleOf(code []byte) ByteOracle {
	return func(addr uint32) (uint8, error) {
		if addr >= uint32(len(code)) {
			return 0, &Error{Kind: InvalidEncoding, Detail: "read past end"}
		}
		return code[addr], nil
	}
}

// TestDecodeModRMRegisterDirect checks Mod=3: the rm operand is a register
// index, no EA bytes are consumed.
func TestDecodeModRMRegisterDirect(t *testing.T) {
	r := NewReader(oracleOf([]byte{0xD8})) // 11 011 000: mod=3 reg=3(EBX) rm=0(EAX)
	reg8, rm, next, err := r.DecodeModRM(0, false)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if reg8 != 3 {
		t.Errorf("reg = %d, want 3", reg8)
	}
	if rm.Kind != OperandReg || rm.Reg != 0 {
		t.Errorf("rm = %+v, want register EAX", rm)
	}
	if next != 1 {
		t.Errorf("next = %d, want 1 (no displacement bytes consumed)", next)
	}
}

// TestDecodeModRMDisp8 checks Mod=1: rm is [reg]+disp8, one displacement
// byte consumed past the ModR/M byte.
func TestDecodeModRMDisp8(t *testing.T) {
	// 01 000 001: mod=1 reg=0 rm=1(ECX), then disp8=0x10
	r := NewReader(oracleOf([]byte{0x41, 0x10}))
	_, rm, next, err := r.DecodeModRM(0, false)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if rm.Kind != OperandMem {
		t.Fatalf("rm.Kind = %v, want OperandMem", rm.Kind)
	}
	if next != 2 {
		t.Errorf("next = %d, want 2", next)
	}
	v, _ := il.Eval(rm.Addr, map[string]uint64{"ECX": 0x1000}, nil)
	if v != 0x1010 {
		t.Errorf("effective address = %#x, want 0x1010", v)
	}
}

// TestDecodeModRMDisp32NoBase checks Mod=0, RM=5: a bare 32-bit
// displacement with no base register (spec §4.4's direct-address special
// case).
func TestDecodeModRMDisp32NoBase(t *testing.T) {
	// 00 000 101: mod=0 reg=0 rm=5, then disp32 = 0x00002000 little-endian
	r := NewReader(oracleOf([]byte{0x05, 0x00, 0x20, 0x00, 0x00}))
	_, rm, next, err := r.DecodeModRM(0, false)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if next != 5 {
		t.Errorf("next = %d, want 5", next)
	}
	v, _ := il.Eval(rm.Addr, map[string]uint64{}, nil)
	if v != 0x2000 {
		t.Errorf("effective address = %#x, want 0x2000", v)
	}
}

// TestDecodeModRMSibBaseIndexScale checks a SIB byte combining a base
// register, a scaled index, and an 8-bit displacement.
func TestDecodeModRMSibBaseIndexScale(t *testing.T) {
	// 01 000 100: mod=1 reg=0 rm=4 (SIB follows)
	// SIB 10 001 000: scale=2(x4) index=1(ECX) base=0(EAX)
	// disp8 = 0x04
	r := NewReader(oracleOf([]byte{0x44, 0x88, 0x04}))
	_, rm, next, err := r.DecodeModRM(0, false)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if next != 3 {
		t.Errorf("next = %d, want 3", next)
	}
	v, _ := il.Eval(rm.Addr, map[string]uint64{"EAX": 0x1000, "ECX": 2}, nil)
	// EAX + (ECX << 2) + 4 = 0x1000 + 8 + 4
	if v != 0x100C {
		t.Errorf("effective address = %#x, want 0x100C", v)
	}
}

// TestDecodeModRMSibBaseOnlyEbp checks SIB base=5, mod=0: a bare 32-bit
// displacement in place of EBP, the SIB analogue of the no-SIB disp32 case.
func TestDecodeModRMSibBaseOnlyEbp(t *testing.T) {
	// 00 000 100: mod=0 reg=0 rm=4 (SIB follows)
	// SIB 00 100 101: scale=0 index=4(none) base=5
	// disp32 = 0x00003000
	r := NewReader(oracleOf([]byte{0x04, 0x25, 0x00, 0x30, 0x00, 0x00}))
	_, rm, next, err := r.DecodeModRM(0, false)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if next != 6 {
		t.Errorf("next = %d, want 6", next)
	}
	v, _ := il.Eval(rm.Addr, map[string]uint64{}, nil)
	if v != 0x3000 {
		t.Errorf("effective address = %#x, want 0x3000", v)
	}
}

// TestDecodeModRM16BitBxSi checks the 16-bit addressing table's BX+SI case
// and its disp16 variant.
func TestDecodeModRM16BitBxSi(t *testing.T) {
	// 10 000 000: mod=2 reg=0 rm=0 (BX+SI), disp16=0x0005
	r := NewReader(oracleOf([]byte{0x80, 0x05, 0x00}))
	_, rm, next, err := r.DecodeModRM(0, true)
	if err != nil {
		t.Fatalf("DecodeModRM: %v", err)
	}
	if next != 3 {
		t.Errorf("next = %d, want 3", next)
	}
	v, _ := il.Eval(rm.Addr, map[string]uint64{"EBX": 0x1000, "ESI": 0x20}, nil)
	if v != 0x1025 {
		t.Errorf("effective address = %#x, want 0x1025", v)
	}
}
