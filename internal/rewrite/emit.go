package rewrite

// Emit returns the full text of the rewritten unit, trivia included.
func Emit(r *Result) string {
	return r.Unit.String()
}
