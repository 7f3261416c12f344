package gff3

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rjchallis/gff-parser/selector"
)

// ApplySelector implements spec.md §9's tree pruning: sel.Operation is
// "keep" or "delete", sel.Subject is "seqid" or "type", and sel.Pattern
// is matched against the SeqName (subject seqid) or Type (subject type)
// of each direct child of root, whatever its type. With "delete" the
// matching subtrees are detached from root, with "keep" the non-matching
// ones are; nodes below root level are not tested on their own.
// ApplySelector returns the IDs of every node removed this way.
//
// This generalizes the teacher's KeepBySeqId/DeleteBySeqId (features.go)
// from filtering a flat record list to detaching whole subtrees from a
// hierarchical forest, and extends the teacher's seqid-only subject to
// seqid-or-type.
func (e *Engine) ApplySelector(sel *selector.Selector) ([]string, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	pattern, err := regexp.Compile(sel.Pattern)
	if err != nil {
		return nil, fmt.Errorf("gff3: ApplySelector: %w", err)
	}

	matches := func(f *Feature) bool {
		switch strings.ToLower(sel.Subject) {
		case `seqid`:
			return pattern.MatchString(f.SeqName)
		case `type`:
			return pattern.MatchString(f.Type)
		}
		return false
	}

	keep := strings.EqualFold(sel.Operation, `keep`)

	var removed []string
	for _, child := range append([]*Feature(nil), e.Store.Root.Children...) {
		hit := matches(child)
		drop := hit != keep
		if drop {
			removed = append(removed, e.detachSubtree(child)...)
		}
	}
	return removed, nil
}

// detachSubtree removes node and every descendant from the store's ID
// and position indices, detaches node from its parent, and returns every
// removed ID.
func (e *Engine) detachSubtree(node *Feature) []string {
	ids := append([]string{node.ID}, idsOf(node.Descendants())...)
	for _, f := range append([]*Feature{node}, node.Descendants()...) {
		e.Store.deindexByID(f.ID)
		e.Store.deindexByPos(f, f.Start)
	}
	e.Store.Detach(node)
	return ids
}

func idsOf(fs []*Feature) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}
