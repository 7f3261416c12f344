package gff3

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// featureSnapshot is a comparable projection of a Feature used to check
// parse/emit/re-parse round-trip equality (spec.md §8) without tripping
// go-cmp over AttrValue's unexported fields or the Parent/Children cycle.
type featureSnapshot struct {
	SeqName, Type, Strand string
	Start, End            int
	Attrs                 map[string]string
}

func snapshot(f *Feature) featureSnapshot {
	attrs := make(map[string]string, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v.String()
	}
	return featureSnapshot{
		SeqName: f.SeqName,
		Type:    f.Type,
		Strand:  f.Strand,
		Start:   f.Start,
		End:     f.End,
		Attrs:   attrs,
	}
}

func snapshotAll(root *Feature) map[string]featureSnapshot {
	out := make(map[string]featureSnapshot)
	for _, f := range root.Descendants() {
		out[f.ID] = snapshot(f)
	}
	return out
}

const roundtripGFF = "chr1\t.\tgene\t10\t100\t.\t+\t.\tID=g1;Name=my%3Bgene\n" +
	"chr1\t.\tmRNA\t10\t100\t.\t+\t.\tID=m1;Parent=g1\n" +
	"chr1\t.\texon\t10\t50\t.\t+\t.\tID=e1;Parent=m1\n"

func TestRoundTripParseEmitParse(t *testing.T) {
	e1 := NewEngine()
	if err := e1.Parse(strings.NewReader(roundtripGFF)); err != nil {
		t.Fatalf("first Parse should not have failed: %v", err)
	}
	before := snapshotAll(e1.Store.Root)

	var emitted []string
	for _, f := range ByType(e1.Store.Root, `gene|mRNA|exon`, false) {
		emitted = append(emitted, f.AsString(false))
	}

	e2 := NewEngine()
	if err := e2.Parse(strings.NewReader(strings.Join(emitted, "\n") + "\n")); err != nil {
		t.Fatalf("second Parse should not have failed: %v", err)
	}
	after := snapshotAll(e2.Store.Root)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("round-trip snapshots differ (-before +after):\n%s", diff)
	}
}
