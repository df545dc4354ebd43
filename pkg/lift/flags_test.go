package lift

import (
	"testing"

	"github.com/oisee/x86lift/pkg/il"
)

// evalFlag evaluates a flag expression built with no free variables (every
// flags.go helper takes its operands as literal expressions, not reads of
// architectural registers), mirroring the teacher's pattern of asserting
// concrete expected flag values directly off Exec's State.
func evalFlag(t *testing.T, e il.Expr) uint64 {
	t.Helper()
	v, _ := il.Eval(e, map[string]uint64{}, nil)
	return v
}

// TestAddFlags32 verifies ADD flag behavior for key 32-bit cases, the
// dword-width analogue of the teacher's byte-width TestAddFlags table.
func TestAddFlags32(t *testing.T) {
	tests := []struct {
		name           string
		a, b           uint64
		wantCF, wantOF bool
		wantZF, wantSF bool
	}{
		{"0+0", 0, 0, false, false, true, false},
		{"1+1", 1, 1, false, false, false, false},
		{"max+1 wraps", 0xFFFFFFFF, 1, true, false, true, false},
		{"0x7FFFFFFF+1 overflows", 0x7FFFFFFF, 1, false, true, false, true},
		{"0x80000000+0x80000000 overflows to zero with carry", 0x80000000, 0x80000000, true, true, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := il.Int(tc.a, il.Bit32)
			b := il.Int(tc.b, il.Bit32)
			r := il.Int(tc.a+tc.b, il.Bit32)
			fs := addFlags(a, b, r)
			if got := evalFlag(t, fs.CF) != 0; got != tc.wantCF {
				t.Errorf("CF = %v, want %v", got, tc.wantCF)
			}
			if got := evalFlag(t, fs.OF) != 0; got != tc.wantOF {
				t.Errorf("OF = %v, want %v", got, tc.wantOF)
			}
			if got := evalFlag(t, fs.ZF) != 0; got != tc.wantZF {
				t.Errorf("ZF = %v, want %v", got, tc.wantZF)
			}
			if got := evalFlag(t, fs.SF) != 0; got != tc.wantSF {
				t.Errorf("SF = %v, want %v", got, tc.wantSF)
			}
		})
	}
}

// TestSubFlags32 verifies SUB/CMP flag behavior, including the borrow and
// equality boundary cases.
func TestSubFlags32(t *testing.T) {
	tests := []struct {
		name           string
		a, b           uint64
		wantCF, wantOF bool
		wantZF, wantSF bool
	}{
		{"equal operands", 5, 5, false, false, true, false},
		{"no borrow", 5, 3, false, false, false, false},
		{"borrow", 3, 5, true, false, false, true},
		{"0x80000000-1 overflows", 0x80000000, 1, false, true, false, false},
		{"0-1 borrows, no overflow", 0, 1, true, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := il.Int(tc.a, il.Bit32)
			b := il.Int(tc.b, il.Bit32)
			r := il.Int(tc.a-tc.b, il.Bit32)
			fs := subFlags(a, b, r)
			if got := evalFlag(t, fs.CF) != 0; got != tc.wantCF {
				t.Errorf("CF = %v, want %v", got, tc.wantCF)
			}
			if got := evalFlag(t, fs.OF) != 0; got != tc.wantOF {
				t.Errorf("OF = %v, want %v", got, tc.wantOF)
			}
			if got := evalFlag(t, fs.ZF) != 0; got != tc.wantZF {
				t.Errorf("ZF = %v, want %v", got, tc.wantZF)
			}
			if got := evalFlag(t, fs.SF) != 0; got != tc.wantSF {
				t.Errorf("SF = %v, want %v", got, tc.wantSF)
			}
		})
	}
}

// TestLogicFlagsClearsCFAndOF verifies AND/OR/XOR always clear CF/OF and
// derive PF/SF/ZF from the result alone (spec §4.6).
func TestLogicFlagsClearsCFAndOF(t *testing.T) {
	tests := []struct {
		name     string
		r        uint64
		wantZF   bool
		wantSF   bool
		wantPF   bool
	}{
		{"zero result", 0, true, false, true},
		{"negative result", 0x80000000, false, true, true},
		{"odd parity", 1, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := logicFlags(il.Int(tc.r, il.Bit32))
			if evalFlag(t, fs.CF) != 0 {
				t.Error("CF must be 0 after a logic op")
			}
			if evalFlag(t, fs.OF) != 0 {
				t.Error("OF must be 0 after a logic op")
			}
			if got := evalFlag(t, fs.ZF) != 0; got != tc.wantZF {
				t.Errorf("ZF = %v, want %v", got, tc.wantZF)
			}
			if got := evalFlag(t, fs.SF) != 0; got != tc.wantSF {
				t.Errorf("SF = %v, want %v", got, tc.wantSF)
			}
			if got := evalFlag(t, fs.PF) != 0; got != tc.wantPF {
				t.Errorf("PF = %v, want %v", got, tc.wantPF)
			}
		})
	}
}

// TestParityExprMatchesKnownBytes cross-checks parityExpr against a few
// hand-counted low bytes, the same boundary spot-checks the teacher's
// ParityTable test applies to its precomputed table.
func TestParityExprMatchesKnownBytes(t *testing.T) {
	tests := []struct {
		b        uint64
		wantEven bool
	}{
		{0x00, true},
		{0x01, false},
		{0xFF, true},
		{0x03, true},
		{0x07, false},
	}
	for _, tc := range tests {
		got := evalFlag(t, parityExpr(il.Int(tc.b, il.Bit32))) != 0
		if got != tc.wantEven {
			t.Errorf("parityExpr(%#x) = %v, want %v", tc.b, got, tc.wantEven)
		}
	}
}

// TestShiftFlagsSingleBitLeft verifies CF/OF for a one-bit SHL, the case
// spec §4.6 defines OF for (count==1 only; count>1 is Unknown).
func TestShiftFlagsSingleBitLeft(t *testing.T) {
	a := il.Int(0x40000000, il.Bit32)
	r := il.Int(0x80000000, il.Bit32)
	fs := shiftFlags(shiftLeft, a, r, il.Int(1, il.Bit32), il.One(il.Bit1))
	if evalFlag(t, fs.CF) != 0 {
		t.Error("CF should be 0: the bit shifted out of a 1-bit SHL of 0x40000000 is the old bit 31, which is 0")
	}
	if evalFlag(t, fs.OF) != 1 {
		t.Error("OF should be 1: sign changed from positive to negative on a count==1 shift")
	}
}

// TestIncDecFlagsPreservesCF verifies incDecFlags leaves CF nil (the
// caller's contract: INC/DEC must not touch CF at all).
func TestIncDecFlagsPreservesCF(t *testing.T) {
	a := il.Int(0x7FFFFFFF, il.Bit32)
	r := il.Int(0x80000000, il.Bit32)
	fs := incDecFlags(a, r, false)
	if fs.CF != nil {
		t.Error("incDecFlags must leave CF nil so the caller preserves the prior value")
	}
	if evalFlag(t, fs.OF) != 1 {
		t.Error("INC 0x7FFFFFFF should set OF")
	}
}
