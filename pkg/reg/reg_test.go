package reg

import (
	"testing"

	"github.com/oisee/x86lift/pkg/il"
)

// TestGP32Order verifies the ModR/M register-field ordering matches the x86
// encoding EAX,ECX,EDX,EBX,ESP,EBP,ESI,EDI.
func TestGP32Order(t *testing.T) {
	want := []string{"EAX", "ECX", "EDX", "EBX", "ESP", "EBP", "ESI", "EDI"}
	for i, name := range want {
		if GP32[i].Name != name {
			t.Errorf("GP32[%d] = %s, want %s", i, GP32[i].Name, name)
		}
	}
}

// TestSegmentBaseZeroForFlatSegments verifies CS/SS/DS/ES contribute no
// base, per spec §6: "CS/SS/DS/ES add nothing".
func TestSegmentBaseZeroForFlatSegments(t *testing.T) {
	for _, s := range []Segment{SegNone, SegCS, SegSS, SegDS, SegES} {
		if s.Base() != nil {
			t.Errorf("segment %d: Base() = %v, want nil", s, s.Base())
		}
	}
	if SegFS.Base() == nil || SegFS.Base().Name != "FS_BASE" {
		t.Error("SegFS.Base() should be FS_BASE")
	}
	if SegGS.Base() == nil || SegGS.Base().Name != "GS_BASE" {
		t.Error("SegGS.Base() should be GS_BASE")
	}
}

// TestWriteSubLowBytePreservesUpperBits verifies: for any 32-bit value v and
// 8-bit value b, write AL<-b then reading full EAX yields
// (v&0xFFFFFF00)|(b&0xFF) — the universal sub-register property from spec §8.
func TestWriteSubLowBytePreservesUpperBits(t *testing.T) {
	tests := []struct{ v uint32; b uint8 }{
		{0x12345678, 0xAB},
		{0, 0xFF},
		{0xFFFFFFFF, 0},
	}
	for _, tc := range tests {
		stmt := WriteSub(0, 8, il.Int(uint64(tc.b), il.Bit8), il.Attrs{})
		regs, _ := il.Apply([]il.Stmt{stmt}, map[string]uint64{"EAX": uint64(tc.v)}, nil)
		want := (uint64(tc.v) & 0xFFFFFF00) | uint64(tc.b)
		if regs["EAX"] != want {
			t.Errorf("write AL<-0x%X on EAX=0x%X: got 0x%X, want 0x%X", tc.b, tc.v, regs["EAX"], want)
		}
	}
}

// TestWriteSubHighByteUsesBaseIndexAnd3 verifies AH/CH/DH/BH target bits
// 15:8 of the base register (index&3), e.g. writing AH targets EAX, not ESP.
func TestWriteSubHighByteUsesBaseIndexAnd3(t *testing.T) {
	stmt := WriteSub(4, 8, il.Int(0xAB, il.Bit8), il.Attrs{}) // AH -> EAX
	regs, _ := il.Apply([]il.Stmt{stmt}, map[string]uint64{"EAX": 0x12345678}, nil)
	want := uint64(0x1234AB78)
	if regs["EAX"] != want {
		t.Errorf("write AH<-0xAB on EAX=0x12345678: got 0x%X, want 0x%X", regs["EAX"], want)
	}
}

// TestWriteSub16PreservesUpperWord verifies AX-style writes preserve 31:16.
func TestWriteSub16PreservesUpperWord(t *testing.T) {
	stmt := WriteSub(0, 16, il.Int(0xBEEF, il.Bit16), il.Attrs{})
	regs, _ := il.Apply([]il.Stmt{stmt}, map[string]uint64{"EAX": 0xDEAD0000}, nil)
	want := uint64(0xDEADBEEF)
	if regs["EAX"] != want {
		t.Errorf("write AX<-0xBEEF on EAX=0xDEAD0000: got 0x%X, want 0x%X", regs["EAX"], want)
	}
}

// TestReadSubExtractsSubRegisters verifies ReadSub extracts the low byte,
// high byte, and 16-bit forms from a 32-bit register value.
func TestReadSubExtractsSubRegisters(t *testing.T) {
	base := map[string]uint64{"EAX": 0x11223344}

	al := ReadSub(0, 8)
	if v, _ := il.Eval(al, base, nil); v != 0x44 {
		t.Errorf("ReadSub(AL) = 0x%X, want 0x44", v)
	}
	ah := ReadSub(4, 8)
	if v, _ := il.Eval(ah, base, nil); v != 0x33 {
		t.Errorf("ReadSub(AH) = 0x%X, want 0x33", v)
	}
	ax := ReadSub(0, 16)
	if v, _ := il.Eval(ax, base, nil); v != 0x3344 {
		t.Errorf("ReadSub(AX) = 0x%X, want 0x3344", v)
	}
}
