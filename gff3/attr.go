package gff3

import "strings"

// AttrValue models a column-9 attribute value. GFF3 attribute values are
// either a single string or a comma-separated ordered list of strings and
// the two are used interchangeably by consumers, so rather than pick one
// representation we keep both and tag which is in play.
type AttrValue struct {
	list   []string
	scalar string
	isList bool
}

// ScalarAttr wraps a single string value.
func ScalarAttr(s string) AttrValue {
	return AttrValue{scalar: s}
}

// ListAttr wraps an ordered list of string values. A single-element list
// is still a list - callers that parsed a comma-containing value should
// use this even when len(vs) == 1.
func ListAttr(vs []string) AttrValue {
	return AttrValue{list: append([]string(nil), vs...), isList: true}
}

// IsList reports whether the value is list-valued.
func (a AttrValue) IsList() bool {
	return a.isList
}

// String renders the value the way it should appear in a GFF3 column 9,
// i.e. comma-joined if list-valued.
func (a AttrValue) String() string {
	if a.isList {
		return strings.Join(a.list, ",")
	}
	return a.scalar
}

// Strings returns the value as a slice regardless of underlying shape -
// a one-element slice for scalars, the full ordered list otherwise.
func (a AttrValue) Strings() []string {
	if a.isList {
		return append([]string(nil), a.list...)
	}
	return []string{a.scalar}
}

// Equal reports whether two AttrValue are semantically the same value,
// ignoring whether one is tagged scalar and the other a one-element list.
func (a AttrValue) Equal(b AttrValue) bool {
	as, bs := a.Strings(), b.Strings()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
