package il

import "fmt"

// ExprKind discriminates the closed set of expression constructors.
type ExprKind int

const (
	EInt ExprKind = iota
	EVar
	ELoad
	EStore
	EBinOp
	EUnOp
	ECast
	EExtract
	EConcat
	EIte
	EUnknown
	ELab
)

// Expr is a pure, immutable term. Every implementation specifies its result
// width via Type(); width compatibility is checked at construction time by
// the smart builders in build.go, not deferred to a later pass.
type Expr interface {
	Kind() ExprKind
	Type() Type
	isExpr()
}

// Var is a named, typed architectural or temporary cell.
type Var struct {
	Name string
	Typ  Type
	// ID distinguishes temporaries minted by the same allocator (see
	// TempAllocator: temporaries of different allocators can share an ID);
	// zero for named architectural registers, which are identified by Name
	// alone.
	ID uint64
}

// varKey returns the map key Eval/Apply use to look up v in their regs
// map: identity is the (Name, ID) pair (spec §9: "embed the counter in the
// variable's identity, not only its printed name"), not Name alone, so two
// live temporaries in one emitted body (both literally named "t" by
// TempAllocator.Fresh) don't alias to the same cell. Matches FormatExpr's
// "#ID" suffix for any non-architectural (ID != 0) variable.
func varKey(v Var) string {
	if v.ID == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s#%d", v.Name, v.ID)
}

// BinOpKind enumerates the closed set of binary operators.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSMod
	OpUMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr  // logical right shift
	OpSar  // arithmetic right shift
	OpEq
	OpSLt
	OpULt
	OpSLe
	OpULe
)

// UnOpKind enumerates the closed set of unary operators.
type UnOpKind int

const (
	OpNeg UnOpKind = iota // arithmetic negation
	OpNot                 // bitwise complement
)

// CastKind enumerates the closed set of width-changing casts.
type CastKind int

const (
	CastUnsignedExtend CastKind = iota
	CastSignedExtend
	CastLow
	CastHigh
)

// Endian tags the byte order of a Load/Store.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// LabelKind distinguishes the two Label forms: an address or a bare name.
type LabelKind int

const (
	LabelAddr LabelKind = iota
	LabelName
)

type intExpr struct {
	Value uint64
	Typ   Type
}

func (e *intExpr) Kind() ExprKind { return EInt }
func (e *intExpr) Type() Type     { return e.Typ }
func (*intExpr) isExpr()          {}

// Value64 returns the literal's raw bit pattern, already reduced to e.Type()'s
// width.
func (e *intExpr) Value64() uint64 { return e.Value }

type varExpr struct{ V Var }

func (e *varExpr) Kind() ExprKind { return EVar }
func (e *varExpr) Type() Type     { return e.V.Typ }
func (*varExpr) isExpr()          {}

type loadExpr struct {
	Mem    Expr
	Addr   Expr
	Endian Endian
	Typ    Type
}

func (e *loadExpr) Kind() ExprKind { return ELoad }
func (e *loadExpr) Type() Type     { return e.Typ }
func (*loadExpr) isExpr()          {}

type storeExpr struct {
	Mem    Expr
	Addr   Expr
	Value  Expr
	Endian Endian
}

func (e *storeExpr) Kind() ExprKind { return EStore }
func (e *storeExpr) Type() Type     { return e.Mem.Type() }
func (*storeExpr) isExpr()          {}

type binOpExpr struct {
	Op   BinOpKind
	A, B Expr
	Typ  Type
}

func (e *binOpExpr) Kind() ExprKind { return EBinOp }
func (e *binOpExpr) Type() Type     { return e.Typ }
func (*binOpExpr) isExpr()          {}

type unOpExpr struct {
	Op  UnOpKind
	A   Expr
	Typ Type
}

func (e *unOpExpr) Kind() ExprKind { return EUnOp }
func (e *unOpExpr) Type() Type     { return e.Typ }
func (*unOpExpr) isExpr()          {}

type castExpr struct {
	CastKind CastKind
	Typ      Type
	A        Expr
}

func (e *castExpr) Kind() ExprKind { return ECast }
func (e *castExpr) Type() Type     { return e.Typ }
func (*castExpr) isExpr()          {}

type extractExpr struct {
	Hi, Lo int
	A      Expr
}

func (e *extractExpr) Kind() ExprKind { return EExtract }
func (e *extractExpr) Type() Type     { return Reg(e.Hi - e.Lo + 1) }
func (*extractExpr) isExpr()          {}

type concatExpr struct{ A, B Expr }

func (e *concatExpr) Kind() ExprKind { return EConcat }
func (e *concatExpr) Type() Type     { return Reg(e.A.Type().Width + e.B.Type().Width) }
func (*concatExpr) isExpr()          {}

type iteExpr struct {
	Cond, A, B Expr
}

func (e *iteExpr) Kind() ExprKind { return EIte }
func (e *iteExpr) Type() Type     { return e.A.Type() }
func (*iteExpr) isExpr()          {}

// unknownExpr is the first-class havoc value. Downstream analyses must treat
// it as "any bit pattern", never as a concrete zero.
type unknownExpr struct {
	Reason string
	Typ    Type
}

func (e *unknownExpr) Kind() ExprKind { return EUnknown }
func (e *unknownExpr) Type() Type     { return e.Typ }
func (*unknownExpr) isExpr()          {}

// Reason_ returns the human-readable havoc explanation, e.g. "OF after shift
// count>1".
func (e *unknownExpr) Reason_() string { return e.Reason }

type labExpr struct{ Name string }

func (e *labExpr) Kind() ExprKind { return ELab }
func (e *labExpr) Type() Type     { return Bit32 }
func (*labExpr) isExpr()          {}
