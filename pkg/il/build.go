package il

import "fmt"

// widthMismatch panics with a message identifying an internal emitter bug:
// per spec, BinOp/Cast/Extract width mismatches are unreachable in correct
// code and must surface loudly rather than silently producing wrong IL.
func widthMismatch(format string, args ...any) {
	panic(fmt.Sprintf("il: width mismatch: "+format, args...))
}

// Int builds a typed integer literal, reducing the native value modulo the
// target width.
func Int(value uint64, t Type) Expr {
	if !t.IsReg() {
		widthMismatch("Int requires a register type, got %s", t)
	}
	return &intExpr{Value: reduce(value, t.Width), Typ: t}
}

func reduce(value uint64, width int) uint64 {
	if width >= 64 {
		return value
	}
	mask := (uint64(1) << uint(width)) - 1
	return value & mask
}

// VarOf wraps a Var as an Expr.
func VarOf(v Var) Expr { return &varExpr{V: v} }

// Load reads width-bit value from mem at addr.
func Load(mem, addr Expr, endian Endian, width Type) Expr {
	if !mem.Type().IsMem() {
		widthMismatch("Load requires a memory-typed first argument, got %s", mem.Type())
	}
	return &loadExpr{Mem: mem, Addr: addr, Endian: endian, Typ: width}
}

// Store writes value at addr in mem, yielding a fresh memory value.
func Store(mem, addr, value Expr, endian Endian) Expr {
	if !mem.Type().IsMem() {
		widthMismatch("Store requires a memory-typed first argument, got %s", mem.Type())
	}
	return &storeExpr{Mem: mem, Addr: addr, Value: value, Endian: endian}
}

// BinOp builds a binary operation; a and b must have equal width.
func BinOp(op BinOpKind, a, b Expr) Expr {
	if a.Type().Width != b.Type().Width {
		widthMismatch("BinOp %v: operand widths %d != %d", op, a.Type().Width, b.Type().Width)
	}
	typ := a.Type()
	switch op {
	case OpEq, OpSLt, OpULt, OpSLe, OpULe:
		typ = Bit1
	}
	return &binOpExpr{Op: op, A: a, B: b, Typ: typ}
}

// UnOp builds a unary operation; the result has a's width.
func UnOp(op UnOpKind, a Expr) Expr {
	return &unOpExpr{Op: op, A: a, Typ: a.Type()}
}

// Cast changes a's width per kind. Widening casts (extend) require
// t.Width >= a.Type().Width; narrowing casts (low/high) require
// t.Width <= a.Type().Width.
func Cast(kind CastKind, t Type, a Expr) Expr {
	switch kind {
	case CastUnsignedExtend, CastSignedExtend:
		if t.Width < a.Type().Width {
			widthMismatch("Cast extend to %d narrower than operand %d", t.Width, a.Type().Width)
		}
	case CastLow, CastHigh:
		if t.Width > a.Type().Width {
			widthMismatch("Cast narrow to %d wider than operand %d", t.Width, a.Type().Width)
		}
	}
	return &castExpr{CastKind: kind, Typ: t, A: a}
}

// Extract slices bits [hi:lo] (inclusive, lo <= hi) out of a.
func Extract(hi, lo int, a Expr) Expr {
	if lo < 0 || hi < lo || hi >= a.Type().Width {
		widthMismatch("Extract [%d:%d] out of range for width %d", hi, lo, a.Type().Width)
	}
	return &extractExpr{Hi: hi, Lo: lo, A: a}
}

// Concat joins a (high bits) and b (low bits) into one wider value.
func Concat(a, b Expr) Expr {
	return &concatExpr{A: a, B: b}
}

// Ite builds an if-then-else expression; cond must be 1 bit wide and a, b
// must have equal width.
func Ite(cond, a, b Expr) Expr {
	if cond.Type().Width != 1 {
		widthMismatch("Ite condition must be 1 bit, got %d", cond.Type().Width)
	}
	if a.Type().Width != b.Type().Width {
		widthMismatch("Ite branches: widths %d != %d", a.Type().Width, b.Type().Width)
	}
	return &iteExpr{Cond: cond, A: a, B: b}
}

// Unknown builds a first-class havoc value of the given width, carrying a
// human-readable reason for debugging. Downstream consumers must treat it as
// an arbitrary bit pattern, never as a concrete zero.
func Unknown(reason string, t Type) Expr {
	return &unknownExpr{Reason: reason, Typ: t}
}

// Lab references a named label as a jump target.
func Lab(name string) Expr { return &labExpr{Name: name} }

// Zero is the canonical literal 0 of the given width, a convenience used
// throughout the flag-calculation helpers.
func Zero(t Type) Expr { return Int(0, t) }

// One is the canonical literal 1 of the given width.
func One(t Type) Expr { return Int(1, t) }

// InferType returns the result width of e. Every constructor already pins
// its own width, so this is a pure accessor — present for callers that only
// hold an Expr and need its Type without a type switch.
func InferType(e Expr) Type { return e.Type() }
