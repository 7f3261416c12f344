package gff3

import (
	"sort"

	"github.com/grendeloz/interval"
)

// FillGaps implements spec.md §4.5.2/§9's gap filling: for every pair of
// consecutive childType children of parent (sorted by Start), if the
// Allen relationship between them is PrecedesB with at least one
// uncovered base between them, a new gapType feature is synthesized to
// span that gap and spliced into parent.Children in position.
//
// The sorted-scan structure here mirrors the teacher's Consolidate
// (features.go): walk the sorted list comparing each element to the
// next via interval.Compare, and act on the PrecedesB case - except here
// a gap is filled rather than treated as a list boundary.
//
// A gap is declared only when next.Start-prev.End > 1: touching
// features (next.Start == prev.End+1) are adjacent, not gapped.
func (e *Engine) FillGaps(parent *Feature, childType, gapType string) []*Feature {
	var children []*Feature
	for _, c := range ByType(parent, childType, false) {
		if c.Parent == parent {
			children = append(children, c)
		}
	}
	if len(children) < 2 {
		return nil
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].Start < children[j].Start })

	var gaps []*Feature
	for i := 0; i+1 < len(children); i++ {
		prev, next := children[i], children[i+1]
		allen := interval.Compare(prev, next)
		if allen != interval.PrecedesB {
			continue
		}
		if next.Start-prev.End <= 1 {
			continue
		}
		gap := e.Store.CreateChild(parent, gapType, prev.End+1, next.Start-1, "")
		gap.SeqName = parent.SeqName
		gap.Strand = prev.Strand
		setParentAttr(gap, parent)
		gaps = append(gaps, gap)
	}

	if len(gaps) == 0 {
		return nil
	}
	spliceChildrenByStart(parent)
	return gaps
}

// spliceChildrenByStart re-sorts parent.Children by Start, stable on
// insertion order for ties, after FillGaps appends new children out of
// position order. This mirrors the teacher's insertFeatures splice
// idiom, applied here to the whole slice rather than one insertion at a
// time since FillGaps may add several gaps in one pass.
func spliceChildrenByStart(parent *Feature) {
	sort.SliceStable(parent.Children, func(i, j int) bool {
		return parent.Children[i].Start < parent.Children[j].Start
	})
}
