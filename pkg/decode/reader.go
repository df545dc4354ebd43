// Package decode implements the byte reader, legacy-prefix scanner,
// ModR/M+SIB+displacement+immediate operand decoder, and opcode classifier
// (spec components C3-C5). It consumes only a byte oracle and a starting
// address and returns typed values plus the next address; no rewinding, no
// ambiguous state — grounded on the fetch-byte idiom in
// other_examples/...IntuitionEngine__cpu_x86.go.go (fetch8/fetch16/fetch32
// and the modrm/sib caching fields), generalized to the pure
// (value, nextAddress) style the spec requires (§4.4: "All parsing
// functions return (parsed_value, next_address); no rewinding").
package decode

import "github.com/oisee/x86lift/pkg/reg"

// ByteOracle reads one byte at addr. It must be pure and total within the
// instruction's decoded span.
type ByteOracle func(addr uint32) (uint8, error)

// Reader threads a byte oracle and the current address through the decode
// functions, stateless aside from the address cursor it returns each call.
type Reader struct {
	Get ByteOracle
}

func NewReader(get ByteOracle) *Reader { return &Reader{Get: get} }

// U8 reads one byte at addr, returning (value, addr+1).
func (r *Reader) U8(addr uint32) (uint8, uint32, error) {
	b, err := r.Get(addr)
	if err != nil {
		return 0, addr, &Error{Kind: InvalidEncoding, Detail: "byte oracle read failed: " + err.Error()}
	}
	return b, addr + 1, nil
}

// U16 reads a little-endian 16-bit value at addr, returning (value, addr+2).
func (r *Reader) U16(addr uint32) (uint16, uint32, error) {
	lo, addr, err := r.U8(addr)
	if err != nil {
		return 0, addr, err
	}
	hi, addr, err := r.U8(addr)
	if err != nil {
		return 0, addr, err
	}
	return uint16(lo) | uint16(hi)<<8, addr, nil
}

// U32 reads a little-endian 32-bit value at addr, returning (value, addr+4).
func (r *Reader) U32(addr uint32) (uint32, uint32, error) {
	lo, addr, err := r.U16(addr)
	if err != nil {
		return 0, addr, err
	}
	hi, addr, err := r.U16(addr)
	if err != nil {
		return 0, addr, err
	}
	return uint32(lo) | uint32(hi)<<16, addr, nil
}

// PrefixRecord is the derived form of 0-4 legacy prefix bytes (spec §4.3).
type PrefixRecord struct {
	Segment        reg.Segment
	OperandSize    bool // 0x66 seen: opsize = Reg(16) instead of Reg(32)
	AddressSize    bool // 0x67 seen: 16-bit ModR/M and displacements
	Lock           bool // 0xF0 seen; accepted and discarded
	RepZ           bool // 0xF3
	RepNZ          bool // 0xF2
	NumPrefixBytes int
}

// OperandWidth returns the general-purpose operand size selected by the
// prefix record: 16 if an operand-size override was seen, else 32.
func (p PrefixRecord) OperandWidth() int {
	if p.OperandSize {
		return 16
	}
	return 32
}

// MMXOperandWidth returns the SSE/MMX operand size: 128 with an
// operand-size override present, else 64 (spec §4.3).
func (p PrefixRecord) MMXOperandWidth() int {
	if p.OperandSize {
		return 128
	}
	return 64
}

// legacy prefix byte values.
const (
	pfxLock     = 0xF0
	pfxRepNZ    = 0xF2
	pfxRepZ     = 0xF3
	pfxSegCS    = 0x2E
	pfxSegSS    = 0x36
	pfxSegDS    = 0x3E
	pfxSegES    = 0x26
	pfxSegFS    = 0x64
	pfxSegGS    = 0x65
	pfxOpSize   = 0x66
	pfxAddrSize = 0x67
)

// ScanPrefixes consumes up to four legacy prefix bytes at addr, stopping at
// the first non-prefix byte. Conflicting segment overrides and REP/REPNZ
// resolve to the last one seen (left-to-right scan with override), matching
// spec §4.3.
func (r *Reader) ScanPrefixes(addr uint32) (PrefixRecord, []byte, uint32, error) {
	var p PrefixRecord
	var consumed []byte
	for len(consumed) < 4 {
		b, err := r.Get(addr)
		if err != nil {
			return p, consumed, addr, &Error{Kind: InvalidEncoding, Detail: "byte oracle read failed during prefix scan: " + err.Error()}
		}
		switch b {
		case pfxLock:
			p.Lock = true
		case pfxRepNZ:
			p.RepNZ, p.RepZ = true, false
		case pfxRepZ:
			p.RepZ, p.RepNZ = true, false
		case pfxSegCS:
			p.Segment = reg.SegCS
		case pfxSegSS:
			p.Segment = reg.SegSS
		case pfxSegDS:
			p.Segment = reg.SegDS
		case pfxSegES:
			p.Segment = reg.SegES
		case pfxSegFS:
			p.Segment = reg.SegFS
		case pfxSegGS:
			p.Segment = reg.SegGS
		case pfxOpSize:
			p.OperandSize = true
		case pfxAddrSize:
			p.AddressSize = true
		default:
			p.NumPrefixBytes = len(consumed)
			return p, consumed, addr, nil
		}
		consumed = append(consumed, b)
		addr++
	}
	p.NumPrefixBytes = len(consumed)
	return p, consumed, addr, nil
}
