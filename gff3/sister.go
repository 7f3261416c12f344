package gff3

import (
	"regexp"
	"strings"

	"github.com/grendeloz/interval"
)

// span is a bare (start,end) pair that satisfies interval.Interval, used
// to run Allen-relationship comparisons against a multi-line segment,
// which has no standalone *Feature of its own.
type span struct{ start, end int }

func (s span) Low() int  { return s.start }
func (s span) High() int { return s.end }

// sisterKind classifies the Allen relationship between a and b per
// spec.md §4.6: twin (identical start/end), little (a contains b), big
// (b contains a), or "" when neither interval contains the other. This
// mirrors the teacher's PrudentMerge branch structure (feature.go),
// repurposed from merge geometry to sister classification.
func sisterKind(aStart, aEnd, bStart, bEnd int) string {
	switch interval.Compare(span{aStart, aEnd}, span{bStart, bEnd}) {
	case interval.EqualsB:
		return `twin`
	case interval.ContainsB, interval.IsStartedByB, interval.IsFinishedByB:
		return `little`
	case interval.IsContainedByB, interval.StartsB, interval.FinishesB:
		return `big`
	default:
		return ``
	}
}

// siblingsOfType returns node's siblings (children of node.Parent, minus
// node itself) whose Type matches altPattern (case-insensitive regex
// fragment, same convention as hasParent's alt).
func (e *Engine) siblingsOfType(node *Feature, altPattern string) []*Feature {
	if node.Parent == nil {
		return nil
	}
	re := regexp.MustCompile(`(?i)` + altPattern)
	var out []*Feature
	for _, c := range node.Parent.Children {
		if c == node {
			continue
		}
		if re.MatchString(c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// findSister implements spec.md §4.6's find_sister across all four
// multi-line combinations, returning the matched sister or nil.
func (e *Engine) findSister(node *Feature, altPattern string) *Feature {
	candidates := e.siblingsOfType(node, altPattern)
	if len(candidates) == 0 {
		return nil
	}
	if node.Multiline {
		return e.findSisterMultiSelf(node, candidates)
	}
	return e.findSisterSingleSelf(node, candidates)
}

// findSisterSingleSelf handles "both single-line" (candidate not
// multi-line, compared node-to-node) and "self single-line, alt
// multi-line" (compared node-to-segment) in one scan, since a candidate
// could in principle be either shape.
func (e *Engine) findSisterSingleSelf(node *Feature, candidates []*Feature) *Feature {
	var best *Feature
	for _, c := range candidates {
		if !c.Multiline {
			kind := sisterKind(node.Start, node.End, c.Start, c.End)
			if kind == `twin` {
				return c
			}
			if kind != `` && best == nil {
				best = c
			}
			continue
		}
		// alt is multi-line: require at least one of its segments to
		// match self (spec.md §4.6 "self single-line, alt multi-line").
		for i := range c.StartArray {
			kind := sisterKind(node.Start, node.End, c.StartArray[i], c.EndArray[i])
			if kind == `twin` {
				return c
			}
			if kind != `` && best == nil {
				best = c
			}
		}
	}
	return best
}

// findSisterMultiSelf handles "both multi-line" (compared node-to-node,
// since a multi-line node's Start/End already track min/max) and "self
// multi-line, alt single-line" (every segment of self must be a twin of,
// contain, or be contained by some single-line candidate; the first
// single-line candidate is then returned).
func (e *Engine) findSisterMultiSelf(node *Feature, candidates []*Feature) *Feature {
	var best *Feature
	for _, c := range candidates {
		if !c.Multiline {
			continue
		}
		kind := sisterKind(node.Start, node.End, c.Start, c.End)
		if kind == `twin` {
			return c
		}
		if kind != `` && best == nil {
			best = c
		}
	}
	if best != nil {
		return best
	}

	var single []*Feature
	for _, c := range candidates {
		if !c.Multiline {
			single = append(single, c)
		}
	}
	if len(single) == 0 {
		return nil
	}
	for i := range node.StartArray {
		segStart, segEnd := node.StartArray[i], node.EndArray[i]
		found := false
		for _, c := range single {
			if sisterKind(segStart, segEnd, c.Start, c.End) != `` {
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	return single[0]
}

// makeSister implements spec.md §4.5.2/§4.6's make_sister: when self and
// alt agree on multi-line-ness (per the alt type's configured policy), a
// single clone of self is relabelled to alt; when self is multi-line and
// alt is declared single-line, one new sibling is created per segment;
// the reverse (self single-line, alt declared multi-line) has no defined
// construction and is a fatal error.
func (e *Engine) makeSister(node *Feature, altType string) ([]*Feature, error) {
	parent := node.Parent
	if parent == nil {
		parent = e.Store.Root
	}
	altMultiline := e.isMultiline(altType)

	switch {
	case node.Multiline == altMultiline:
		clone := node.Clone()
		clone.Type = altType
		clone.ID = e.Store.MintID(strings.ToLower(altType))
		clone.Name = clone.ID
		e.Store.AttachTo(clone, parent)
		e.Store.indexByID(clone)
		e.Store.indexByPos(clone)
		setParentAttr(clone, parent)
		return []*Feature{clone}, nil

	case node.Multiline && !altMultiline:
		var out []*Feature
		for i := range node.StartArray {
			f := e.Store.CreateChild(parent, altType, node.StartArray[i], node.EndArray[i], "")
			f.SeqName = node.SeqName
			f.Strand = node.Strand
			setParentAttr(f, parent)
			out = append(out, f)
		}
		return out, nil

	default:
		return nil, &Diagnostic{Op: `make_sister`, Type: node.Type, ID: node.ID,
			Message: ErrUnsupportedRepair.Error()}
	}
}

// makeChild clones self's positions under self as a new child of type
// alt (spec.md §4.5.2 hasChild make).
func (e *Engine) makeChild(node *Feature, altType string) *Feature {
	f := e.Store.CreateChild(node, altType, node.Start, node.End, "")
	f.SeqName = node.SeqName
	f.Strand = node.Strand
	if node.ID != "" {
		f.SetAttr(`Parent`, ScalarAttr(node.ID))
	}
	return f
}

// setParentAttr sets f's Parent attribute to parent's ID, unless parent
// is the synthetic root (which has no ID of its own).
func setParentAttr(f, parent *Feature) {
	if parent != nil && !parent.IsRoot() {
		f.SetAttr(`Parent`, ScalarAttr(parent.ID))
	}
}
