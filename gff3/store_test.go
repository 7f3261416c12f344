package gff3

import "testing"

func TestStoreAttachAndByID(t *testing.T) {
	s := NewStore()
	f := s.CreateChild(s.Root, `gene`, 1, 100, `g1`)

	got, ok := s.ByID(`g1`)
	e1 := true
	g1 := ok
	if e1 != g1 {
		t.Fatalf("ByID ok should be %v but is %v", e1, g1)
	}
	if got != f {
		t.Fatalf("ByID should return the same pointer that was created")
	}
}

func TestStoreMintIDIsUnique(t *testing.T) {
	s := NewStore()
	a := s.MintID(`exon`)
	s.byID[a] = &Feature{ID: a}
	b := s.MintID(`exon`)

	if a == b {
		t.Fatalf("MintID should not return the same ID twice, got %v both times", a)
	}
}

func TestStoreReparentPreservesIdentity(t *testing.T) {
	s := NewStore()
	parentA := s.CreateChild(s.Root, `gene`, 1, 100, `a`)
	parentB := s.CreateChild(s.Root, `gene`, 1, 100, `b`)
	child := s.CreateChild(parentA, `mRNA`, 1, 100, `m1`)

	s.Reparent(child, parentB)

	e1 := `b`
	g1 := child.Parent.ID
	if e1 != g1 {
		t.Fatalf("child.Parent.ID should be %v but is %v", e1, g1)
	}

	e2 := 0
	g2 := len(parentA.Children)
	if e2 != g2 {
		t.Fatalf("parentA.Children should have %v elements but has %v", e2, g2)
	}

	e3 := 1
	g3 := len(parentB.Children)
	if e3 != g3 {
		t.Fatalf("parentB.Children should have %v elements but has %v", e3, g3)
	}

	got, ok := s.ByID(`m1`)
	if !ok || got != child {
		t.Fatalf("ByID(m1) should still resolve to the reparented node")
	}
}

func TestStoreByTypeSortedAscending(t *testing.T) {
	s := NewStore()
	s.CreateChild(s.Root, `exon`, 30, 40, `e3`)
	s.CreateChild(s.Root, `exon`, 10, 20, `e1`)
	s.CreateChild(s.Root, `exon`, 21, 29, `e2`)

	out := ByType(s.Root, `exon`, false)

	e1 := []string{`e1`, `e2`, `e3`}
	for i, id := range e1 {
		if out[i].ID != id {
			t.Fatalf("ByType ascending position %d should be %v but is %v", i, id, out[i].ID)
		}
	}
}

func TestStoreNearestStart(t *testing.T) {
	s := NewStore()
	s.CreateChild(s.Root, `region`, 1, 500, `r1`)

	out := s.NearestStart(``, `region`, 300)
	e1 := 1
	g1 := len(out)
	if e1 != g1 {
		t.Fatalf("NearestStart should return %v match but returned %v", e1, g1)
	}
	e2 := `r1`
	g2 := out[0].ID
	if e2 != g2 {
		t.Fatalf("NearestStart match ID should be %v but is %v", e2, g2)
	}
}
