package decode_test

import (
	"testing"

	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/lift"
)

// corpusOracle serves code[] starting at address 0, erroring past the end -
// the same fixed-base byte-slice shape pkg/lift's tests use, repeated here
// rather than exported since pkg/lift's test helpers are not importable.
// Only this external decode_test package imports pkg/lift (to drive Lift);
// pkg/decode itself does not, which keeps the dependency edge one-directional.
func corpusOracle(code []byte) decode.ByteOracle {
	return func(addr uint32) (uint8, error) {
		if addr >= uint32(len(code)) {
			return 0, &decode.Error{Kind: decode.InvalidEncoding, Detail: "read past end of corpus fixture"}
		}
		return code[addr], nil
	}
}

// corpus is a curated spread of encodings, one representative per opcode
// family Classify dispatches on directly plus a handful of 0F-escape forms -
// standing in for the exhaustive per-instruction enumeration the teacher's
// pkg/search/enumerator.go performs over Z80's small fixed-width opcode
// space. x86's ModR/M-qualified, variable-length encoding has no comparably
// small exhaustive closure, so this corpus enumerates representative
// *shapes* instead: one sample per Insn.Kind family reachable from the
// primary opcode map plus the 0F-escape map.
var corpus = []struct {
	name string
	code []byte
}{
	{"nop", []byte{0x90}},
	{"ret", []byte{0xC3}},
	{"ret imm16", []byte{0xC2, 0x04, 0x00}},
	{"int3", []byte{0xCC}},
	{"hlt", []byte{0xF4}},
	{"cld", []byte{0xFC}},
	{"std", []byte{0xFD}},
	{"push imm32", []byte{0x68, 0x01, 0x02, 0x03, 0x04}},
	{"push imm8", []byte{0x6A, 0x7F}},
	{"push r32", []byte{0x50}},
	{"pop r32", []byte{0x58}},
	{"inc r32", []byte{0x40}},
	{"dec r32", []byte{0x48}},
	{"mov r32,imm32", []byte{0xB8, 0x2A, 0x00, 0x00, 0x00}},
	{"mov r8,imm8", []byte{0xB0, 0x7F}},
	{"mov rm32,r32", []byte{0x89, 0xD8}},
	{"mov r32,rm32", []byte{0x8B, 0xD8}},
	{"mov rm32,imm32", []byte{0xC7, 0xC0, 0x01, 0x00, 0x00, 0x00}},
	{"lea r32,m", []byte{0x8D, 0x04, 0x25, 0x00, 0x10, 0x00, 0x00}},
	{"grp1 add rm32,imm8", []byte{0x83, 0xC0, 0x01}},
	{"sub rm32,r32", []byte{0x29, 0xC0}},
	{"grp2 shl rm32,1", []byte{0xD1, 0xE0}},
	{"grp2 shr rm32,cl", []byte{0xD3, 0xE8}},
	{"grp3 neg rm32", []byte{0xF7, 0xD8}},
	{"grp5 inc rm32", []byte{0xFF, 0xC0}},
	{"jcc rel8", []byte{0x74, 0x02}},
	{"jmp rel8", []byte{0xEB, 0x02}},
	{"jmp rel32", []byte{0xE9, 0x00, 0x00, 0x00, 0x00}},
	{"call rel32", []byte{0xE8, 0x00, 0x00, 0x00, 0x00}},
	{"test rm32,r32", []byte{0x85, 0xC0}},
	{"rep movsb", []byte{0xF3, 0xA4}},
	{"operand-size mov ax,imm16", []byte{0x66, 0xB8, 0x01, 0x00}},
	{"0f jcc rel32", []byte{0x0F, 0x84, 0x00, 0x00, 0x00, 0x00}},
	{"0f setcc", []byte{0x0F, 0x94, 0xC0}},
	{"0f bt reg,reg", []byte{0x0F, 0xA3, 0xC8}},
	{"0f imul2", []byte{0x0F, 0xAF, 0xC1}},
	{"0f movzx r32,rm8", []byte{0x0F, 0xB6, 0xC0}},
	{"0f cpuid", []byte{0x0F, 0xA2}},
}

// TestCorpusDecoderDeterminism checks spec §8's "Decoder determinism"
// property: lifting the same bytes from the same address twice must yield
// the same next address and the same success/failure outcome. il.Stmt's
// sum-type variants expose no field accessors outside package il (by
// design, see pkg/il's doc comments), so statement-tree equality can't be
// checked from here; next-address and error-identity agreement is the
// externally observable half of determinism this package can assert.
func TestCorpusDecoderDeterminism(t *testing.T) {
	for _, tc := range corpus {
		t.Run(tc.name, func(t *testing.T) {
			oracle := corpusOracle(tc.code)
			_, next1, err1 := lift.Lift(oracle, 0)
			_, next2, err2 := lift.Lift(oracle, 0)
			if (err1 == nil) != (err2 == nil) {
				t.Fatalf("nondeterministic error outcome: first=%v second=%v", err1, err2)
			}
			if err1 != nil {
				return
			}
			if next1 != next2 {
				t.Errorf("nondeterministic next address: first=%d second=%d", next1, next2)
			}
		})
	}
}

// TestCorpusInstructionLength checks spec §8's "Instruction length"
// property: next - start equals the number of bytes the fixture actually
// encodes, i.e. Lift must consume exactly len(tc.code) bytes, neither
// stopping short nor reading past the intended encoding.
func TestCorpusInstructionLength(t *testing.T) {
	for _, tc := range corpus {
		t.Run(tc.name, func(t *testing.T) {
			_, next, err := lift.Lift(corpusOracle(tc.code), 0)
			if err != nil {
				t.Fatalf("Lift(% X) returned error: %v", tc.code, err)
			}
			if int(next) != len(tc.code) {
				t.Errorf("Lift consumed %d bytes, want %d (% X)", next, len(tc.code), tc.code)
			}
		})
	}
}

// TestCorpusAgainstCatalogMinLength cross-checks each corpus entry's actual
// decoded length against Catalog's MinLength lower bound for its leading
// non-prefix opcode byte, catching a Catalog entry that overstates how
// short an encoding can be.
func TestCorpusAgainstCatalogMinLength(t *testing.T) {
	for _, tc := range corpus {
		t.Run(tc.name, func(t *testing.T) {
			r := decode.NewReader(corpusOracle(tc.code))
			_, _, nextAddr, err := r.ScanPrefixes(0)
			if err != nil {
				t.Fatalf("ScanPrefixes: %v", err)
			}
			opcodeByte, _, err := r.U8(nextAddr)
			if err != nil {
				t.Fatalf("U8: %v", err)
			}
			entry, ok := decode.Catalog[opcodeByte]
			if !ok {
				return // 0F-escape or otherwise uncataloged leading byte
			}
			if len(tc.code) < entry.MinLength {
				t.Errorf("corpus entry %q is %d bytes, shorter than Catalog[%#x].MinLength=%d",
					tc.name, len(tc.code), opcodeByte, entry.MinLength)
			}
		})
	}
}
