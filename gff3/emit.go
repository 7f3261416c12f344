package gff3

import (
	"strconv"
	"strings"
)

// AsString implements spec.md §4.7's as_string: one GFF3 line per
// segment, column 9 assembled from tracked attributes using that
// segment's value (or the node's scalar attribute when the key is not
// tracked per-segment). Duplicate nodes are suppressed when
// skipDuplicates is set. This generalizes the teacher's Feature.String/
// AttributesString (feature.go) from a single-line renderer to
// multi-segment rendering with percent-escaping.
func (node *Feature) AsString(skipDuplicates bool) string {
	if skipDuplicates && node.Duplicate {
		return ""
	}
	if !node.Multiline {
		return node.lineString(node.Start, node.End, node.Score, node.Phase, node.Attributes)
	}

	var lines []string
	for i := range node.StartArray {
		attrs := make(map[string]AttrValue, len(node.Attributes))
		for _, k := range node.sortedAttrKeys() {
			if node.TrackedAttrs[k] {
				v := node.AttrArrays[k][i]
				if isZeroAttr(v) {
					continue
				}
				attrs[k] = v
				continue
			}
			attrs[k] = node.Attributes[k]
		}
		lines = append(lines, node.lineString(node.StartArray[i], node.EndArray[i], node.ScoreArray[i], node.PhaseArray[i], attrs))
	}
	return strings.Join(lines, "\n")
}

func isZeroAttr(v AttrValue) bool {
	return !v.isList && v.scalar == "" && len(v.list) == 0
}

// lineString assembles one tab-separated GFF3 line from node's intrinsic
// columns plus the supplied per-segment attribute set.
func (node *Feature) lineString(start, end int, score, phase string, attrs map[string]AttrValue) string {
	var keys []string
	for _, k := range node.sortedAttrKeys() {
		if _, ok := attrs[k]; ok {
			keys = append(keys, k)
		}
	}

	var pairs []string
	for _, k := range keys {
		if strings.HasPrefix(k, `_`) || strings.HasSuffix(k, `_array`) {
			continue
		}
		v := attrs[k]
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v.String()))
	}

	return strings.Join([]string{
		node.SeqName,
		node.Source,
		node.Type,
		strconv.Itoa(start),
		strconv.Itoa(end),
		score,
		node.Strand,
		phase,
		strings.Join(pairs, ";"),
	}, "\t")
}

// percentEncode escapes the two characters GFF3 column 9 reserves for
// structure (spec.md §4.7): "=" and ";".
func percentEncode(s string) string {
	s = strings.ReplaceAll(s, `=`, `%3D`)
	s = strings.ReplaceAll(s, `;`, `%3B`)
	return s
}

// StructuredOutput implements spec.md §4.7's structured_output: node
// then each child recursively depth-first in insertion order, eliding
// any subtree whose root (or an ancestor along the recursion) carries
// Skip.
func (node *Feature) StructuredOutput() string {
	var b strings.Builder
	node.writeStructured(&b)
	return b.String()
}

func (node *Feature) writeStructured(b *strings.Builder) {
	if node.Skip {
		return
	}
	if !node.IsRoot() {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(node.AsString(false))
	}
	for _, c := range node.Children {
		c.writeStructured(b)
	}
}
