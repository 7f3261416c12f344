package gff3

import (
	"strings"
	"testing"
)

// scenario fixtures from the package's worked examples.

const geneChainGFF = "chr1\t.\tgene\t10\t100\t.\t+\t.\tID=g1\n" +
	"chr1\t.\tmRNA\t10\t100\t.\t+\t.\tID=m1;Parent=g1\n" +
	"chr1\t.\texon\t10\t50\t.\t+\t.\tID=e1;Parent=m1\n"

func TestParseGeneChain(t *testing.T) {
	e := NewEngine()
	if err := e.Parse(strings.NewReader(geneChainGFF)); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}

	exon, ok := e.Store.ByID(`e1`)
	if !ok {
		t.Fatalf("ByID(e1) should have found a node")
	}

	e1 := `g1`
	g1 := exon.Parent.Parent.ID
	if e1 != g1 {
		t.Fatalf("exon.Parent.Parent.ID should be %v but is %v", e1, g1)
	}

	e2 := 1
	g2 := len(ByType(e.Store.Root, `exon`, false))
	if e2 != g2 {
		t.Fatalf("by_type(root,exon) should have %v elements but has %v", e2, g2)
	}
}

const multilineCDSGFF = "chr1\t.\tCDS\t10\t80\t.\t+\t.\tID=c1;Parent=m1\n" +
	"chr1\t.\tCDS\t200\t300\t.\t+\t.\tID=c1;Parent=m1\n"

func TestParseMultilineCDSCoalescing(t *testing.T) {
	e := NewEngine().Multiline(`CDS`)
	if err := e.Parse(strings.NewReader(multilineCDSGFF)); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}

	cds, ok := e.Store.ByID(`c1`)
	if !ok {
		t.Fatalf("ByID(c1) should have found a node")
	}

	e1 := []int{10, 200}
	g1 := cds.StartArray
	if len(e1) != len(g1) || e1[0] != g1[0] || e1[1] != g1[1] {
		t.Fatalf("StartArray should be %v but is %v", e1, g1)
	}

	e2 := []int{80, 300}
	g2 := cds.EndArray
	if len(e2) != len(g2) || e2[0] != g2[0] || e2[1] != g2[1] {
		t.Fatalf("EndArray should be %v but is %v", e2, g2)
	}

	e3, e4 := 10, 300
	g3, g4 := cds.Start, cds.End
	if e3 != g3 || e4 != g4 {
		t.Fatalf("Start,End should be %v,%v but is %v,%v", e3, e4, g3, g4)
	}
}

const multiParentGFF = "chr1\t.\tgene\t1\t100\t.\t+\t.\tID=a\n" +
	"chr1\t.\tgene\t1\t100\t.\t+\t.\tID=b\n" +
	"chr1\t.\texon\t5\t9\t.\t+\t.\tID=x;Parent=a,b\n"

func TestParseMultiParentSplitting(t *testing.T) {
	e := NewEngine()
	if err := e.Parse(strings.NewReader(multiParentGFF)); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}

	x, ok := e.Store.ByID(`x`)
	if !ok {
		t.Fatalf("ByID(x) should have found a node")
	}
	x1, ok := e.Store.ByID(`x._1`)
	if !ok {
		t.Fatalf("ByID(x._1) should have found a node")
	}

	e1 := `a`
	g1 := x.Parent.ID
	if e1 != g1 {
		t.Fatalf("x.Parent.ID should be %v but is %v", e1, g1)
	}

	e2 := `b`
	g2 := x1.Parent.ID
	if e2 != g2 {
		t.Fatalf("x._1.Parent.ID should be %v but is %v", e2, g2)
	}

	e3 := true
	g3 := x1.Duplicate
	if e3 != g3 {
		t.Fatalf("x._1.Duplicate should be %v but is %v", e3, g3)
	}

	e4 := false
	g4 := x.Duplicate
	if e4 != g4 {
		t.Fatalf("x.Duplicate should be %v but is %v", e4, g4)
	}
}

func TestParseEmptyInputYieldsOnlyRoot(t *testing.T) {
	e := NewEngine()
	if err := e.Parse(strings.NewReader("")); err != nil {
		t.Fatalf("Parse should not have failed: %v", err)
	}

	e1 := 0
	g1 := len(e.Store.Root.Children)
	if e1 != g1 {
		t.Fatalf("root.Children should have %v elements but has %v", e1, g1)
	}
}
