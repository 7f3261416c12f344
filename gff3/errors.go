package gff3

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedOrphan is returned after the orphan-resolution
	// fixpoint (spec.md §4.3.2) when undefined_parent is "die" and a
	// node's Parent attribute still does not resolve.
	ErrUnresolvedOrphan = errors.New("gff3: unresolved Parent reference and undefined_parent policy is die")

	// ErrIDClash is returned when a line's ID collides with an existing
	// node whose type is not declared multiline, or whose
	// (seq,type,strand,Parent) does not match (spec.md §4.3 step 7, §7
	// category 2).
	ErrIDClash = errors.New("gff3: ID already in use by a feature not eligible for multi-line coalescing - declare the type multiline() if these lines are segments of one feature")

	// ErrUnsupportedRepair is returned when a "make"/"force" repair has
	// no defined construction, e.g. a single-line-to-multiline sister
	// (spec.md §4.6).
	ErrUnsupportedRepair = errors.New("gff3: expectation repair is not supported for this relation/type combination")
)

// Diagnostic is a structured error carrying the context spec.md §7
// requires: feature type, feature ID, current line number for parse-time
// failures, offending attribute name/values for comparison failures, and
// the parent's ID for hasParent failures.
type Diagnostic struct {
	Op       string // the operation that raised it, e.g. "lacks_id", "hasParent"
	Type     string
	ID       string
	Line     int
	AttrA    string
	AttrB    string
	ParentID string
	Message  string
}

func (d *Diagnostic) Error() string {
	msg := fmt.Sprintf("gff3: %s: %s", d.Op, d.Message)
	if d.ID != "" {
		msg += fmt.Sprintf(" (id=%s type=%s)", d.ID, d.Type)
	}
	if d.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", d.Line)
	}
	if d.ParentID != "" {
		msg += fmt.Sprintf(" (parent=%s)", d.ParentID)
	}
	if d.AttrA != "" || d.AttrB != "" {
		msg += fmt.Sprintf(" (attrs=%s,%s)", d.AttrA, d.AttrB)
	}
	return msg
}
