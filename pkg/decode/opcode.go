package decode

// InsnKind enumerates the semantic operation families the classifier can
// produce (spec §4.5). It is intentionally coarser than a full instruction
// mnemonic table: the emitter (pkg/lift) switches on Kind plus the
// attached ArithOp/ShiftOp/Cond/Operands to build IL, matching spec §9's
// "sum-typed IL ... exhaustive pattern matching" guidance applied one layer
// up, to the opcode classification itself.
type InsnKind int

const (
	KArith InsnKind = iota // 00-3D family, Grp1 (80-83): ArithOp selects the operation
	KIncDecReg              // 40-4F / 48-4F: INC/DEC r32 (RegIndex, IsDec)
	KPushReg                // 50-57: PUSH r32
	KPopReg                 // 58-5F: POP r32
	KPushImm                // 68/6A: PUSH imm
	KImul3                  // 69/6B: IMUL r, rm, imm
	KJcc                    // 70-7F, 0F 80-8F: conditional jump, rel operand in Src.Imm
	KJmpRel                 // E9/EB: unconditional jump, rel in Src.Imm
	KCallRel                // E8: call, rel in Src.Imm
	KGrp2Shift              // C0/C1/D0-D3: shift/rotate family, ShiftOp selects op
	KGrp3                   // F6/F7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV, Grp3Op selects
	KIncDecRM               // FE: INC/DEC Eb (Grp4)
	KGrp5                   // FF: INC/DEC/CALL/JMP/PUSH Ev, Grp5Op selects
	KMovRM                  // 88/89/8A/8B: MOV r<->rm
	KMovImmReg              // B0-BF: MOV r, imm
	KMovImmRM               // C6/C7: MOV rm, imm
	KLea                    // 8D
	KNop                    // 90
	KHlt                    // F4
	KRet                    // C3 (and C2 with imm16 operand)
	KInt                    // CD ib / CC
	KCld                    // FC
	KStd                    // FD
	KStringOp               // MOVS/CMPS/SCAS/STOS, StringOp selects which
	KTest                   // 84/85, A8/A9
	K0FMovSSE               // 0F 28/29/6F/7F/6E/7E: SSE move family
	KRdtsc                  // 0F 31
	KSysenter               // 0F 34
	KSetcc                  // 0F 94/95 + (Cond covers all 90-9F)
	KCpuid                  // 0F A2
	KBt                     // 0F A3/BA: BT/BTS family, BtOp selects
	KShiftDouble            // 0F A4/A5/AC/AD: SHLD/SHRD
	KMxcsr                  // 0F AE: LDMXCSR/STMXCSR, IsDec marks the store
	KImul2                  // 0F AF: IMUL r, rm (2-operand, SF/ZF/AF/PF Unknown)
	KCmpxchg                // 0F B1
	KMovExt                 // 0F B6/B7/BE/BF: MOVZX/MOVSX
	KBsf                     // 0F BC
	KXadd                    // 0F C1
	KCmpxchg8b               // 0F C7 /1
	KPmovmskb                // 0F D7
	KPxor                    // 0F EF
)

// ArithOpKind selects among the eight-way arithmetic/logic family (spec
// §4.5's "00..3D arithmetic/logic family" and Grp1).
type ArithOpKind int

const (
	ArithAdd ArithOpKind = iota
	ArithOr
	ArithAdc
	ArithSbb
	ArithAnd
	ArithSub
	ArithXor
	ArithCmp
)

// ShiftOpKind selects among Grp2's shift/rotate family.
type ShiftOpKind int

const (
	ShiftRol ShiftOpKind = iota
	ShiftRor
	ShiftRcl // through-carry: unimplemented, see spec §9
	ShiftRcr // through-carry: unimplemented, see spec §9
	ShiftShl
	ShiftShr
	ShiftSalDup // opcode /6 duplicates /4 on real hardware
	ShiftSar
)

// Grp3OpKind selects among F6/F7 Grp3.
type Grp3OpKind int

const (
	Grp3Test Grp3OpKind = iota
	Grp3Test2
	Grp3Not
	Grp3Neg
	Grp3Mul
	Grp3Imul
	Grp3Div
	Grp3Idiv
)

// Grp5OpKind selects among FF Grp5.
type Grp5OpKind int

const (
	Grp5Inc Grp5OpKind = iota
	Grp5Dec
	Grp5CallNear
	Grp5CallFar
	Grp5JmpNear
	Grp5JmpFar
	Grp5Push
)

// StringOpKind selects among the string-operation family.
type StringOpKind int

const (
	StringMovs StringOpKind = iota
	StringCmps
	StringScas
	StringStos
	StringLods
)

// BtOpKind distinguishes BT from BTS (spec lists both under "BT/BTS
// (A3/BA)"); BTC/BTR share the same decode shape but are not separately
// named by spec and are rejected as UnsupportedOpcode if seen.
type BtOpKind int

const (
	BtTest BtOpKind = iota
	BtSet
)

// Insn is the typed Opcode value the classifier produces: an operation kind
// plus whatever operands/sub-selectors that kind requires.
type Insn struct {
	Kind InsnKind

	ArithOp  ArithOpKind
	ShiftOp  ShiftOpKind
	Grp3Op   Grp3OpKind
	Grp5Op   Grp5OpKind
	StringOp StringOpKind
	BtOp     BtOpKind
	Cond     Cond

	Width int // operand width in bits (8/16/32), 0 if not applicable

	Dst, Src, Src2 Operand
	RegIndex       int // for *Reg forms and sub-register selection
	IsDec          bool

	Prefix PrefixRecord

	// Mnemonic is a human-readable rendering used only for debug output and
	// test failure messages (SPEC_FULL.md §6 supplemental feature); the
	// emitter never branches on it.
	Mnemonic string
}

// Cond is the x86 condition-code selector derived from a Jcc/SETcc low
// nibble (spec §4.5's condition-code table).
type Cond int

const (
	CondO Cond = iota
	CondNO
	CondB
	CondNB
	CondE
	CondNE
	CondBE
	CondNBE
	CondS
	CondNS
	CondP
	CondNP
	CondL
	CondNL
	CondLE
	CondNLE
)
