package gff3

import (
	"sort"
	"strconv"
	"strings"
)

// Feature is a node in the feature forest. Its intrinsic fields mirror the
// nine GFF3 columns; its Parent/Children fields make it a node in the
// graph the builder and expectation engine construct and mutate.
//
// The names here follow http://gmod.org/wiki/GFF3, in the same spirit as
// the field names used for flat GFF3 records elsewhere in this codebase's
// lineage, but Feature is a tree node rather than a flat record: it owns
// a parent pointer and an ordered list of children.
type Feature struct {
	SeqName string
	Source  string
	Type    string // original case, preserved for emission
	Start   int
	End     int
	Score   string // "." or a numeric literal
	Strand  string // one of + - . ?
	Phase   string // one of . 0 1 2

	// Attributes holds every column-9 key seen on this node's first (or
	// only) segment. AttrOrder preserves first-encountered key order for
	// emission since GFF3 does not mandate a canonical attribute order.
	Attributes map[string]AttrValue
	AttrOrder  []string

	ID         string
	Name       string
	LineNumber int

	Parent   *Feature
	Children []*Feature

	Duplicate bool // spec's _duplicate
	Skip      bool // spec's _skip

	// Multi-line segment state. Populated lazily the first time a second
	// segment of this feature is seen (see coalesce.go). Multiline is
	// false until that happens even if the type is declared multiline.
	Multiline    bool
	StartArray   []int
	EndArray     []int
	ScoreArray   []string
	PhaseArray   []string
	AttrArrays   map[string][]AttrValue
	TrackedAttrs map[string]bool

	// Sequence is the FASTA payload attached to a region node by the
	// classifier/builder. It is the one FASTA concern in scope (spec.md
	// §1): nothing in this package indexes or validates it.
	Sequence string
}

// NewFeature returns a Feature with GFF3's documented "missing value"
// defaults for the columns that have one.
func NewFeature() *Feature {
	return &Feature{
		Score:      `.`,
		Strand:     `.`,
		Phase:      `.`,
		Attributes: make(map[string]AttrValue),
	}
}

// Low and High satisfy github.com/grendeloz/interval's Interval interface,
// the same contract the teacher's Feature implements so Allen-relationship
// comparisons (fillgaps.go) can call interval.Compare directly on
// *Feature values; sister.go compares bare spans instead.
func (f *Feature) Low() int  { return f.Start }
func (f *Feature) High() int { return f.End }

// LowerType returns Type normalized to lower case, used for all rule and
// policy dispatch (expectation registration, multiline/lacks_id policy
// lookups). Type itself is preserved verbatim for emission.
func (f *Feature) LowerType() string {
	return strings.ToLower(f.Type)
}

// SetAttr sets an attribute, appending to AttrOrder the first time the
// key is seen.
func (f *Feature) SetAttr(key string, val AttrValue) {
	if f.Attributes == nil {
		f.Attributes = make(map[string]AttrValue)
	}
	if _, ok := f.Attributes[key]; !ok {
		f.AttrOrder = append(f.AttrOrder, key)
	}
	f.Attributes[key] = val
}

// Attr returns the named attribute and whether it was present.
func (f *Feature) Attr(key string) (AttrValue, bool) {
	v, ok := f.Attributes[key]
	return v, ok
}

// AttrString returns the named attribute rendered as a string, or "" if
// absent.
func (f *Feature) AttrString(key string) string {
	if v, ok := f.Attributes[key]; ok {
		return v.String()
	}
	return ""
}

// IsRoot reports whether f is the synthetic forest root (no intrinsic
// fields, nil Parent, created once by NewStore).
func (f *Feature) IsRoot() bool {
	return f.Parent == nil && f.ID == ""
}

// Ancestors returns f's parent chain, nearest first, not including the
// root sentinel.
func (f *Feature) Ancestors() []*Feature {
	var out []*Feature
	for p := f.Parent; p != nil && !p.IsRoot(); p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns every Feature reachable from f's Children,
// depth-first, not including f itself.
func (f *Feature) Descendants() []*Feature {
	var out []*Feature
	for _, c := range f.Children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// detach removes f from its current parent's Children slice. It does not
// touch f.Parent - callers reattach immediately after.
func (f *Feature) detach() {
	if f.Parent == nil {
		return
	}
	siblings := f.Parent.Children
	for i, c := range siblings {
		if c == f {
			f.Parent.Children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
}

// Clone makes a deep copy of f that shares no pointers with the original,
// except that Parent/Children links are NOT copied - Clone produces a
// detached node suitable for becoming a new sibling or a synthesized
// feature; makeSister (sister.go) is the only caller.
func (f *Feature) Clone() *Feature {
	n := &Feature{
		SeqName:    f.SeqName,
		Source:     f.Source,
		Type:       f.Type,
		Start:      f.Start,
		End:        f.End,
		Score:      f.Score,
		Strand:     f.Strand,
		Phase:      f.Phase,
		Attributes: make(map[string]AttrValue, len(f.Attributes)),
		AttrOrder:  append([]string(nil), f.AttrOrder...),
		ID:         f.ID,
		Name:       f.Name,
		LineNumber: f.LineNumber,
		Duplicate:  f.Duplicate,
		Skip:       f.Skip,
		Sequence:   f.Sequence,
	}
	for k, v := range f.Attributes {
		n.Attributes[k] = v
	}
	if f.Multiline {
		n.Multiline = true
		n.StartArray = append([]int(nil), f.StartArray...)
		n.EndArray = append([]int(nil), f.EndArray...)
		n.ScoreArray = append([]string(nil), f.ScoreArray...)
		n.PhaseArray = append([]string(nil), f.PhaseArray...)
		n.TrackedAttrs = make(map[string]bool, len(f.TrackedAttrs))
		for k, v := range f.TrackedAttrs {
			n.TrackedAttrs[k] = v
		}
		n.AttrArrays = make(map[string][]AttrValue, len(f.AttrArrays))
		for k, v := range f.AttrArrays {
			n.AttrArrays[k] = append([]AttrValue(nil), v...)
		}
	}
	return n
}

// sortedAttrKeys returns AttrOrder filtered to keys still present in
// Attributes, falling back to a sorted key list if AttrOrder is empty
// (e.g. for synthesized features that were built with SetAttr so this
// path is rarely hit, but defends against manual Attributes map writes).
func (f *Feature) sortedAttrKeys() []string {
	if len(f.AttrOrder) > 0 {
		var keys []string
		seen := make(map[string]bool)
		for _, k := range f.AttrOrder {
			if _, ok := f.Attributes[k]; ok && !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
		return keys
	}
	var keys []string
	for k := range f.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func itoa(n int) string { return strconv.Itoa(n) }
