package gff3

import "testing"

func TestFillGapsInsertsBetweenDisjointSiblings(t *testing.T) {
	e := NewEngine()
	gene := e.Store.CreateChild(e.Store.Root, `gene`, 1, 1000, `g1`)
	gene.SeqName = `chr1`
	e1 := e.Store.CreateChild(gene, `exon`, 10, 50, `e1`)
	e1.SeqName = `chr1`
	e1.Strand = `+`
	e2 := e.Store.CreateChild(gene, `exon`, 80, 120, `e2`)
	e2.SeqName = `chr1`
	e2.Strand = `+`

	gaps := e.FillGaps(gene, `exon`, `intron`)

	e1count := 1
	g1count := len(gaps)
	if e1count != g1count {
		t.Fatalf("FillGaps should return %v gap but returned %v", e1count, g1count)
	}

	e2start, e3end := 51, 79
	g2start, g3end := gaps[0].Start, gaps[0].End
	if e2start != g2start || e3end != g3end {
		t.Fatalf("gap span should be [%v,%v] but is [%v,%v]", e2start, e3end, g2start, g3end)
	}

	e4 := `intron`
	g4 := gaps[0].Type
	if e4 != g4 {
		t.Fatalf("gap Type should be %v but is %v", e4, g4)
	}
}

func TestFillGapsSkipsTouchingSiblings(t *testing.T) {
	e := NewEngine()
	gene := e.Store.CreateChild(e.Store.Root, `gene`, 1, 1000, `g1`)
	a := e.Store.CreateChild(gene, `exon`, 10, 50, `e1`)
	a.SeqName = `chr1`
	b := e.Store.CreateChild(gene, `exon`, 51, 90, `e2`)
	b.SeqName = `chr1`

	gaps := e.FillGaps(gene, `exon`, `intron`)

	e1 := 0
	g1 := len(gaps)
	if e1 != g1 {
		t.Fatalf("FillGaps should return %v gaps for touching siblings but returned %v", e1, g1)
	}
}
