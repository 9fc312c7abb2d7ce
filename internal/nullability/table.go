package nullability

import (
	"pbnrt/internal/syntax"
)

// Decision records how one site was classified.
type Decision struct {
	ID       syntax.SiteID
	Kind     syntax.SiteKind
	Names    []string
	TypeText string
	// Rule names the rule that produced the verdict.
	Rule     string
	Optional bool
	// AlreadyOptional is set when the declared type already carries '?';
	// the verdict is recorded but never applied.
	AlreadyOptional bool
	Line            int
}

// Table maps site ids to "should be optional" verdicts. It is filled by
// Analyze and read-only afterwards.
type Table struct {
	verdicts  map[syntax.SiteID]bool
	decisions []Decision
}

func newTable() *Table {
	return &Table{verdicts: map[syntax.SiteID]bool{}}
}

// record stores a decision. A repeated id overwrites the earlier verdict.
func (t *Table) record(d Decision) {
	t.verdicts[d.ID] = d.Optional
	t.decisions = append(t.decisions, d)
}

// Optional returns the verdict for id and whether one was recorded.
func (t *Table) Optional(id syntax.SiteID) (optional, ok bool) {
	optional, ok = t.verdicts[id]
	return optional, ok
}

// Len returns the number of distinct sites with a verdict.
func (t *Table) Len() int {
	return len(t.verdicts)
}

// Decisions returns the decisions in document order.
func (t *Table) Decisions() []Decision {
	out := make([]Decision, len(t.decisions))
	copy(out, t.decisions)
	return out
}

// Pending counts the sites that the rewrite will annotate: optional and not
// already annotated.
func (t *Table) Pending() int {
	n := 0
	for _, d := range t.decisions {
		if d.Optional && !d.AlreadyOptional {
			n++
		}
	}
	return n
}
