package il

// Apply runs a straight-line statement sequence against regs/mem, for use
// by test suites only (see Eval's doc comment). Jmp/CJmp/Label/Assert/
// Special/Comment are no-ops here: this helper exists to check flag and
// register effects of single, non-branching instruction bodies, not to
// execute control flow.
func Apply(stmts []Stmt, regs map[string]uint64, mem map[uint32]uint8) (map[string]uint64, map[uint32]uint8) {
	out := make(map[string]uint64, len(regs))
	for k, v := range regs {
		out[k] = v
	}
	for _, s := range stmts {
		mv, ok := s.(*moveStmt)
		if !ok {
			continue
		}
		var val uint64
		val, mem = Eval(mv.Value, out, mem)
		out[varKey(mv.Var)] = reduce(val, mv.Var.Typ.Width)
	}
	return out, mem
}
