package gff3

import (
	"sort"
	"strings"
)

// posKey is the composite key for the (seq,type,start) index (spec.md
// §3 invariant 5, §4.4).
type posKey struct {
	seq string
	typ string
}

// Store owns every Feature node in the forest: the synthetic Root, the
// ID index, and the (seq,type,start) index. It is the single source of
// truth for the graph - the indices are unexported and are only changed
// through Store's methods (spec.md §4.4, §9 "arena of nodes").
type Store struct {
	Root *Feature

	byID map[string]*Feature
	byPos map[posKey]map[int][]*Feature

	idCounters map[string]int
	cursors    map[string]*featureCursor
}

// NewStore returns an empty Store with just the synthetic root node.
func NewStore() *Store {
	return &Store{
		Root:       &Feature{},
		byID:       make(map[string]*Feature),
		byPos:      make(map[posKey]map[int][]*Feature),
		idCounters: make(map[string]int),
		cursors:    make(map[string]*featureCursor),
	}
}

// ByID looks up a node by its ID attribute.
func (s *Store) ByID(id string) (*Feature, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// indexByID records f under its ID. Callers must ensure the ID is not
// already in use by a non-segment node (see builder.go's ID-clash check).
func (s *Store) indexByID(f *Feature) {
	s.byID[f.ID] = f
}

func (s *Store) deindexByID(id string) {
	delete(s.byID, id)
}

// indexByPos records f under its current (seq,type,start) bucket.
func (s *Store) indexByPos(f *Feature) {
	k := posKey{f.SeqName, strings.ToLower(f.Type)}
	if s.byPos[k] == nil {
		s.byPos[k] = make(map[int][]*Feature)
	}
	s.byPos[k][f.Start] = append(s.byPos[k][f.Start], f)
}

// deindexByPos removes f from its bucket at oldStart. Used when a
// multi-line segment insertion changes the node's effective Start
// (spec.md §4.3.1 step 3).
func (s *Store) deindexByPos(f *Feature, oldStart int) {
	k := posKey{f.SeqName, strings.ToLower(f.Type)}
	bucket := s.byPos[k]
	if bucket == nil {
		return
	}
	feats := bucket[oldStart]
	for i, c := range feats {
		if c == f {
			bucket[oldStart] = append(feats[:i], feats[i+1:]...)
			break
		}
	}
	if len(bucket[oldStart]) == 0 {
		delete(bucket, oldStart)
	}
}

// ByPos returns every node at (seq,type,start), i.e. the spec's
// "by_start" lookup.
func (s *Store) ByPos(seq, typ string, start int) []*Feature {
	k := posKey{seq, strings.ToLower(typ)}
	return s.byPos[k][start]
}

// NearestStart returns the bucket for the largest start <= query
// (spec.md §4.4).
func (s *Store) NearestStart(seq, typ string, start int) []*Feature {
	k := posKey{seq, strings.ToLower(typ)}
	bucket := s.byPos[k]
	if bucket == nil {
		return nil
	}
	var starts []int
	for st := range bucket {
		starts = append(starts, st)
	}
	sort.Ints(starts)
	best := -1
	for _, st := range starts {
		if st > start {
			break
		}
		best = st
	}
	if best == -1 {
		return nil
	}
	return bucket[best]
}

// AttachTo makes parent the parent of child, appending child to parent's
// Children in order. child must already be detached from any previous
// parent (see Detach).
func (s *Store) AttachTo(child, parent *Feature) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// Detach removes child from its current parent without touching the
// indices - use Reparent for the common "move to a new parent" case.
func (s *Store) Detach(child *Feature) {
	child.detach()
	child.Parent = nil
}

// Reparent detaches child from its current parent (if any) and attaches
// it to newParent, preserving the node's identity and indices - this is
// the detach/reattach operation spec.md §9 requires to be index-safe.
func (s *Store) Reparent(child, newParent *Feature) {
	child.detach()
	s.AttachTo(child, newParent)
}

// CreateChild builds a brand-new Feature under parent, minting its ID if
// id is empty, and indexes it. It does not set Parent attribute text -
// callers that want that set it themselves via SetAttr.
func (s *Store) CreateChild(parent *Feature, typ string, start, end int, id string) *Feature {
	f := NewFeature()
	f.Type = typ
	f.Start = start
	f.End = end
	if id == "" {
		id = s.MintID(strings.ToLower(typ))
	}
	f.ID = id
	f.Name = id
	s.AttachTo(f, parent)
	s.indexByID(f)
	s.indexByPos(f)
	return f
}

// MintID returns a fresh ID of the form "<prefix>___<n>" where n is the
// smallest non-negative integer not already used in the ID index
// (spec.md §4.3 step 4 "make"). The per-prefix counter only ever moves
// forward - it's a cache of the next candidate, always re-verified
// against the global index before being handed out.
func (s *Store) MintID(prefix string) string {
	n := s.idCounters[prefix]
	for {
		candidate := prefix + `___` + itoa(n)
		if _, exists := s.byID[candidate]; !exists {
			s.idCounters[prefix] = n + 1
			return candidate
		}
		n++
	}
}

// ByType returns every descendant of start matching typ (case-insensitive,
// '|'-joined alternatives allowed), sorted ascending by Start, or
// descending if desc is true (spec.md §4.4, §5 ordering guarantee a).
func ByType(start *Feature, typ string, desc bool) []*Feature {
	wanted := make(map[string]bool)
	for _, t := range strings.Split(strings.ToLower(typ), "|") {
		wanted[t] = true
	}
	var out []*Feature
	for _, d := range start.Descendants() {
		if wanted[d.LowerType()] {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Start > out[j].Start
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// WalkDepthFirst visits start and every descendant depth-first in
// insertion order. visit returns (collect, stop): collect controls
// whether the node is appended to the result, stop halts the walk
// immediately (including skipping further siblings/descendants).
func WalkDepthFirst(start *Feature, visit func(*Feature) (collect, stop bool)) []*Feature {
	var out []*Feature
	var walk func(*Feature) bool // returns true to stop
	walk = func(f *Feature) bool {
		collect, stop := visit(f)
		if collect {
			out = append(out, f)
		}
		if stop {
			return true
		}
		for _, c := range f.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(start)
	return out
}

// featureCursor is the stateful iterator backing NextFeature (spec.md
// §4.4 next_feature, §9 "generator-style cursors"). It is invalidated
// (repopulated) whenever the (parent, type) pair it was built for
// changes.
type featureCursor struct {
	parent *Feature
	typ    string
	items  []*Feature
	pos    int
}

// NextFeature returns a latching cursor keyed by (parent.ID, typ): the
// first call for a given key populates it via ByType and the cursor then
// yields nodes in order, advancing each call, until it returns nil
// (spec.md §4.4, §9).
func (s *Store) NextFeature(parent *Feature, typ string) *Feature {
	key := parent.ID + "\x00" + strings.ToLower(typ)
	c, ok := s.cursors[key]
	if !ok || c.parent != parent {
		c = &featureCursor{parent: parent, typ: typ, items: ByType(parent, typ, false)}
		s.cursors[key] = c
	}
	if c.pos >= len(c.items) {
		return nil
	}
	f := c.items[c.pos]
	c.pos++
	return f
}

// resetCursor clears the latched state for (parent, typ) so the next
// NextFeature call repopulates it. The spec documents that user-facing
// cursor reset is not supported (spec.md §5) - this helper is unexported
// and nothing in the package calls it.
func (s *Store) resetCursor(parent *Feature, typ string) {
	delete(s.cursors, parent.ID+"\x00"+strings.ToLower(typ))
}
