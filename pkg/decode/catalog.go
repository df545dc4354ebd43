package decode

import "fmt"

// CatalogEntry names an opcode family and a lower bound on the number of
// bytes an encoding led by that opcode byte consumes, prefixes excluded: the
// opcode, any mandatory ModR/M and the shortest immediate the opcode admits
// (the 16-bit one under an operand-size prefix), with no SIB/displacement.
// A few entries (the 00-3D arithmetic family, 0x81) give a looser bound.
// It is a cheap lower bound corpus tests can check decoded length against, the supplemental feature SPEC_FULL.md §6 carries over from the
// teacher's per-opcode Catalog table (there: Mnemonic + TStates; here:
// Mnemonic + MinLength, since cycle cost has no analogue in a lifter).
type CatalogEntry struct {
	Mnemonic  string
	MinLength int
}

// Catalog covers the primary (non-0F-escape) opcode bytes Classify
// dispatches on directly, keyed by that first byte. 0F-escape forms aren't
// included: the second byte selects semantics too variably for a single
// per-byte entry to say anything useful about minimum length.
var Catalog = map[uint8]CatalogEntry{
	0x90: {"nop", 1},
	0xC3: {"ret", 1},
	0xC2: {"ret imm16", 3},
	0xCC: {"int3", 1},
	0xF4: {"hlt", 1},
	0xFC: {"cld", 1},
	0xFD: {"std", 1},
	0xE8: {"call rel32", 5},
	0xE9: {"jmp rel32", 5},
	0xEB: {"jmp rel8", 2},
	0x68: {"push imm32", 3},
	0x6A: {"push imm8", 2},
	0x80: {"grp1 rm8,imm8", 3},
	0x81: {"grp1 rm32,imm32", 3},
	0x82: {"grp1 rm8,imm8", 3},
	0x83: {"grp1 rm32,imm8", 3},
	0x84: {"test rm8,r8", 2},
	0x85: {"test rm32,r32", 2},
	0x88: {"mov rm8,r8", 2},
	0x89: {"mov rm32,r32", 2},
	0x8A: {"mov r8,rm8", 2},
	0x8B: {"mov r32,rm32", 2},
	0x8D: {"lea r32,m", 2},
	0xA8: {"test al,imm8", 2},
	0xA9: {"test eax,imm32", 3},
	0xC0: {"grp2 rm8,imm8", 3},
	0xC1: {"grp2 rm32,imm8", 3},
	0xC6: {"mov rm8,imm8", 3},
	0xC7: {"mov rm32,imm32", 4},
	0xD0: {"grp2 rm8,1", 2},
	0xD1: {"grp2 rm32,1", 2},
	0xD2: {"grp2 rm8,cl", 2},
	0xD3: {"grp2 rm32,cl", 2},
	0xF6: {"grp3 rm8", 2},
	0xF7: {"grp3 rm32", 2},
	0xFE: {"grp4 rm8", 2},
	0xFF: {"grp5 rm32", 2},
}

func init() {
	for b := uint8(0x00); b <= 0x3D; b++ {
		if b&7 < 6 && b>>3 < 8 {
			Catalog[b] = CatalogEntry{Mnemonic: "arith family", MinLength: 1}
		}
	}
	for b := uint8(0x40); b <= 0x4F; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "inc/dec r32", MinLength: 1}
	}
	for b := uint8(0x50); b <= 0x5F; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "push/pop r32", MinLength: 1}
	}
	for b := uint8(0x70); b <= 0x7F; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "jcc rel8", MinLength: 2}
	}
	for b := uint8(0xB0); b <= 0xB7; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "mov r8,imm8", MinLength: 2}
	}
	for b := uint8(0xB8); b <= 0xBF; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "mov r32,imm32", MinLength: 3}
	}
	for b := uint8(0xAA); b <= 0xAF; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "string op", MinLength: 1}
	}
	for b := uint8(0xA4); b <= 0xA7; b++ {
		Catalog[b] = CatalogEntry{Mnemonic: "string op", MinLength: 1}
	}
}

// Mnemonic renders insn as human-readable text, substituting any immediate
// operand's value into the classifier-assigned base mnemonic. Debug/test
// output only — the emitter never branches on this string, grounded on the
// teacher's disasmImm8/disasmImm16 hex-substitution idiom (here the
// immediate is simply appended, since this package's Mnemonic strings don't
// carry an "n" placeholder convention of their own).
func Mnemonic(insn Insn) string {
	base := insn.Mnemonic
	if base == "" {
		base = "?"
	}
	for _, op := range []Operand{insn.Src, insn.Src2} {
		if op.Kind == OperandImm {
			return fmt.Sprintf("%s ; imm=0x%X", base, uint64(op.Imm))
		}
	}
	return base
}
