package gff3

import "sort"

// coalesceSegment adds a new segment (from tok) onto an existing
// multi-line node. It implements spec.md §4.3.1 in its three numbered
// steps: lazy array initialization, sorted segment insertion, and
// position-index maintenance.
func (s *Store) coalesceSegment(node *Feature, tok *tokenLine) {
	if !node.Multiline {
		s.initSegmentArrays(node)
	}

	// Find insertion index i such that StartArray stays sorted ascending.
	i := sort.SearchInts(node.StartArray, tok.Start)

	insertInt(&node.StartArray, i, tok.Start)
	insertInt(&node.EndArray, i, tok.End)
	insertStr(&node.ScoreArray, i, tok.Score)
	insertStr(&node.PhaseArray, i, tok.Phase)

	// Attributes new on this segment get left-padded to current length
	// and marked tracked before insertion; attributes already tracked
	// but absent on this segment get a missing placeholder.
	allKeys := make(map[string]bool)
	for k := range node.TrackedAttrs {
		allKeys[k] = true
	}
	for k := range tok.Attributes {
		allKeys[k] = true
	}
	priorLen := len(node.StartArray) - 1 // length before this insertion
	for k := range allKeys {
		if !node.TrackedAttrs[k] {
			arr := make([]AttrValue, priorLen)
			node.AttrArrays[k] = arr
			node.TrackedAttrs[k] = true
		}
		v, present := tok.Attributes[k]
		if !present {
			v = AttrValue{}
		}
		insertAttr(node, k, i, v)
	}

	oldStart := node.Start
	if tok.Start < node.Start {
		node.Start = tok.Start
	}
	if tok.End > node.End {
		node.End = tok.End
	}
	if node.Start != oldStart {
		s.deindexByPos(node, oldStart)
		s.indexByPos(node)
	}
}

// initSegmentArrays expands a node's current scalar attributes into
// one-element arrays the first time a second segment is seen (spec.md
// §4.3.1 step 1).
func (s *Store) initSegmentArrays(node *Feature) {
	node.Multiline = true
	node.StartArray = []int{node.Start}
	node.EndArray = []int{node.End}
	node.ScoreArray = []string{node.Score}
	node.PhaseArray = []string{node.Phase}
	node.TrackedAttrs = make(map[string]bool)
	node.AttrArrays = make(map[string][]AttrValue)
	for _, k := range node.sortedAttrKeys() {
		node.TrackedAttrs[k] = true
		node.AttrArrays[k] = []AttrValue{node.Attributes[k]}
	}
}

func insertInt(arr *[]int, i, v int) {
	*arr = append(*arr, 0)
	copy((*arr)[i+1:], (*arr)[i:])
	(*arr)[i] = v
}

func insertStr(arr *[]string, i int, v string) {
	*arr = append(*arr, "")
	copy((*arr)[i+1:], (*arr)[i:])
	(*arr)[i] = v
}

func insertAttr(node *Feature, key string, i int, v AttrValue) {
	arr := node.AttrArrays[key]
	arr = append(arr, AttrValue{})
	copy(arr[i+1:], arr[i:])
	arr[i] = v
	node.AttrArrays[key] = arr
}
