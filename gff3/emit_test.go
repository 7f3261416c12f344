package gff3

import (
	"strings"
	"testing"
)

func TestAsStringPercentEscapeRoundTrip(t *testing.T) {
	e := NewEngine()
	if err := e.Parse(strings.NewReader("chr1\t.\tgene\t1\t10\t.\t+\t.\tID=g1;note=foo%3Dbar%3Bbaz\n")); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}
	genes := ByType(e.Store.Root, `gene`, false)
	if len(genes) != 1 {
		t.Fatalf("expected one gene, got %d", len(genes))
	}

	line := genes[0].AsString(false)
	if !strings.Contains(line, `note=foo%3Dbar%3Bbaz`) {
		t.Fatalf("AsString should re-escape the attribute, got %q", line)
	}

	e2 := NewEngine()
	if err := e2.Parse(strings.NewReader(line + "\n")); err != nil {
		t.Fatalf("re-Parse should not have failed: %v", err)
	}
	genes2 := ByType(e2.Store.Root, `gene`, false)
	if len(genes2) != 1 {
		t.Fatalf("expected one gene after re-parse, got %d", len(genes2))
	}

	e1 := `foo=bar;baz`
	g1 := genes2[0].AttrString(`note`)
	if e1 != g1 {
		t.Fatalf("re-parsed note should be %v but is %v", e1, g1)
	}
}

func TestAsStringHidesUnderscoreAndArrayKeys(t *testing.T) {
	f := NewFeature()
	f.SeqName, f.Source, f.Type = `chr1`, `.`, `gene`
	f.Start, f.End = 1, 10
	f.SetAttr(`Name`, ScalarAttr(`g1`))
	f.SetAttr(`_internal`, ScalarAttr(`hidden`))
	f.SetAttr(`foo_array`, ScalarAttr(`hidden`))

	line := f.AsString(false)
	if strings.Contains(line, `_internal`) {
		t.Fatalf("AsString should hide underscore-prefixed keys, got %q", line)
	}
	if strings.Contains(line, `foo_array`) {
		t.Fatalf("AsString should hide _array-suffixed keys, got %q", line)
	}
	if !strings.Contains(line, `Name=g1`) {
		t.Fatalf("AsString should still emit ordinary attributes, got %q", line)
	}
}

func TestAsStringSkipsDuplicates(t *testing.T) {
	f := NewFeature()
	f.SeqName, f.Type = `chr1`, `exon`
	f.Start, f.End = 1, 10
	f.Duplicate = true

	e1 := ``
	g1 := f.AsString(true)
	if e1 != g1 {
		t.Fatalf("AsString(skipDuplicates) should be empty but is %q", g1)
	}
}

func TestAsStringMultilinePerSegment(t *testing.T) {
	e := NewEngine().Multiline(`CDS`)
	if err := e.Parse(strings.NewReader(
		"chr1\t.\tCDS\t10\t80\t.\t+\t.\tID=c1\n" +
			"chr1\t.\tCDS\t200\t300\t.\t+\t.\tID=c1\n")); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}
	cds, _ := e.Store.ByID(`c1`)

	lines := strings.Split(cds.AsString(false), "\n")
	e1 := 2
	g1 := len(lines)
	if e1 != g1 {
		t.Fatalf("AsString should emit %v lines but emitted %v", e1, g1)
	}
	if !strings.HasPrefix(lines[0], "chr1\t.\tCDS\t10\t80") {
		t.Fatalf("first segment line wrong: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "chr1\t.\tCDS\t200\t300") {
		t.Fatalf("second segment line wrong: %q", lines[1])
	}
}

func TestStructuredOutputElidesSkippedSubtree(t *testing.T) {
	e := NewEngine()
	gene := e.Store.CreateChild(e.Store.Root, `gene`, 1, 100, `g1`)
	gene.SeqName = `chr1`
	gene.SetAttr(`ID`, ScalarAttr(`g1`))
	mrna := e.Store.CreateChild(gene, `mRNA`, 1, 100, `m1`)
	mrna.SeqName = `chr1`
	mrna.Skip = true

	out := e.Store.Root.StructuredOutput()
	if strings.Contains(out, `m1`) {
		t.Fatalf("StructuredOutput should elide a Skip subtree, got %q", out)
	}
	if !strings.Contains(out, "ID=g1") {
		t.Fatalf("StructuredOutput should still include the gene, got %q", out)
	}
}
