package lift

import (
	"fmt"

	"github.com/oisee/x86lift/pkg/decode"
	"github.com/oisee/x86lift/pkg/il"
)

// Lift decodes and emits exactly one instruction at addr, returning its IL
// statements (prefixed with address/name labels, spec §4.7) and the address
// of the next instruction. It composes the three pipeline stages
// (prefix scan, classify, emit) the way the teacher's single-instruction
// step function composes fetch/decode/execute, but returns data instead of
// mutating a machine. On a recoverable error from classify or emit, the
// returned next_address is the address past the consumed prefix bytes
// (spec §4.7), not addr itself, so a caller can resynchronize past the
// prefix region instead of re-reading it.
func Lift(oracle decode.ByteOracle, addr uint32) ([]il.Stmt, uint32, error) {
	r := decode.NewReader(oracle)

	prefix, prefixBytes, prefixEnd, err := r.ScanPrefixes(addr)
	if err != nil {
		return nil, prefixEnd, err
	}

	insn, next, err := r.Classify(prefixEnd, prefix, prefixBytes)
	if err != nil {
		return nil, prefixEnd, err
	}

	lf := NewLifter()
	attrs := il.Attrs{Asm: insn.Mnemonic}
	body, err := lf.Emit(insn, addr, next, attrs)
	if err != nil {
		return nil, prefixEnd, err
	}

	labelAttrs := il.Attrs{Asm: insn.Mnemonic}
	stmts := []il.Stmt{
		il.LabelAt(addr, labelAttrs),
		il.LabelNamed(fmt.Sprintf("pc_0x%X", addr), labelAttrs),
	}
	stmts = append(stmts, body...)
	return stmts, next, nil
}

// LiftRange repeatedly calls Lift from start up to (but not including) end,
// concatenating every instruction's statements in address order. It stops
// and returns the first error encountered along with whatever addresses it
// lifted successfully before it.
func LiftRange(oracle decode.ByteOracle, start, end uint32) ([]il.Stmt, error) {
	var all []il.Stmt
	addr := start
	for addr < end {
		stmts, next, err := Lift(oracle, addr)
		if err != nil {
			return all, err
		}
		all = append(all, stmts...)
		if next <= addr {
			return all, &decode.Error{Kind: decode.WidthMismatch, Detail: "lift: decode made no forward progress"}
		}
		addr = next
	}
	return all, nil
}
