package il

// StmtKind discriminates the closed set of statement constructors.
type StmtKind int

const (
	SMove StmtKind = iota
	SJmp
	SCJmp
	SLabel
	SAssert
	SSpecial
	SComment
)

// Attrs tags a statement with origin metadata: the original assembly text
// it was lifted from, and/or a control-flow role ("call", "ret").
type Attrs struct {
	Asm  string
	Role string
}

// Stmt is an ordered IL effect.
type Stmt interface {
	Kind() StmtKind
	isStmt()
}

type moveStmt struct {
	Var   Var
	Value Expr
	A     Attrs
}

func (*moveStmt) Kind() StmtKind { return SMove }
func (*moveStmt) isStmt()        {}

type jmpStmt struct {
	Target Expr
	A      Attrs
}

func (*jmpStmt) Kind() StmtKind { return SJmp }
func (*jmpStmt) isStmt()        {}

type cjmpStmt struct {
	Cond     Expr
	T, F     Expr
	A        Attrs
}

func (*cjmpStmt) Kind() StmtKind { return SCJmp }
func (*cjmpStmt) isStmt()        {}

type labelStmt struct {
	LKind LabelKind
	Addr  uint32
	Name  string
	A     Attrs
}

func (*labelStmt) Kind() StmtKind { return SLabel }
func (*labelStmt) isStmt()        {}

type assertStmt struct {
	Cond Expr
	A    Attrs
}

func (*assertStmt) Kind() StmtKind { return SAssert }
func (*assertStmt) isStmt()        {}

type specialStmt struct {
	Tag string
	A   Attrs
}

func (*specialStmt) Kind() StmtKind { return SSpecial }
func (*specialStmt) isStmt()        {}

type commentStmt struct {
	Text string
	A    Attrs
}

func (*commentStmt) Kind() StmtKind { return SComment }
func (*commentStmt) isStmt()        {}

// Move installs value into var (for Var==M, this is the only way a Store's
// fresh memory value becomes the global memory).
func Move(v Var, value Expr, attrs Attrs) Stmt {
	if v.Typ.Width != value.Type().Width || v.Typ.Kind != value.Type().Kind {
		widthMismatch("Move %s: var type %s != value type %s", v.Name, v.Typ, value.Type())
	}
	return &moveStmt{Var: v, Value: value, A: attrs}
}

// Jmp transfers control to target.
func Jmp(target Expr, attrs Attrs) Stmt {
	return &jmpStmt{Target: target, A: attrs}
}

// CJmp transfers control to t if cond holds, else f.
func CJmp(cond, t, f Expr, attrs Attrs) Stmt {
	if cond.Type().Width != 1 {
		widthMismatch("CJmp condition must be 1 bit, got %d", cond.Type().Width)
	}
	return &cjmpStmt{Cond: cond, T: t, F: f, A: attrs}
}

// LabelAt marks the start of an instruction at an address.
func LabelAt(addr uint32, attrs Attrs) Stmt {
	return &labelStmt{LKind: LabelAddr, Addr: addr, A: attrs}
}

// LabelNamed marks a cross-reference point by name (e.g. "pc_0xHEX").
func LabelNamed(name string, attrs Attrs) Stmt {
	return &labelStmt{LKind: LabelName, Name: name, A: attrs}
}

// Assert states a condition that must hold; used sparingly, e.g. to encode
// structural invariants the classifier has already checked.
func Assert(cond Expr, attrs Attrs) Stmt {
	return &assertStmt{Cond: cond, A: attrs}
}

// Special emits an opaque side effect the IL does not model directly (INT,
// SYSENTER, ...).
func Special(tag string, attrs Attrs) Stmt {
	return &specialStmt{Tag: tag, A: attrs}
}

// Comment attaches free text with no semantic effect.
func Comment(text string, attrs Attrs) Stmt {
	return &commentStmt{Text: text, A: attrs}
}
