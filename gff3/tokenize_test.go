package gff3

import "testing"

func TestTokenizeBasic(t *testing.T) {
	line := "chr1\tensembl\texon\t10\t50\t.\t+\t.\tID=e1;Parent=m1"
	tok, err := tokenize(line, '\t', 0, ColumnIgnore)
	if err != nil {
		t.Fatalf("tokenize should not have failed: %v", err)
	}

	e1 := `chr1`
	g1 := tok.SeqName
	if e1 != g1 {
		t.Fatalf("SeqName should be %v but is %v", e1, g1)
	}

	e2 := 10
	g2 := tok.Start
	if e2 != g2 {
		t.Fatalf("Start should be %v but is %v", e2, g2)
	}

	e3 := `e1`
	g3 := tok.Attributes[`ID`].String()
	if e3 != g3 {
		t.Fatalf("Attributes[ID] should be %v but is %v", e3, g3)
	}
}

func TestTokenizePercentDecode(t *testing.T) {
	line := "chr1\tensembl\texon\t10\t50\t.\t+\t.\tnote=foo%3Dbar%3Bbaz"
	tok, err := tokenize(line, '\t', 0, ColumnIgnore)
	if err != nil {
		t.Fatalf("tokenize should not have failed: %v", err)
	}

	e1 := `foo=bar;baz`
	g1 := tok.Attributes[`note`].String()
	if e1 != g1 {
		t.Fatalf("Attributes[note] should be %v but is %v", e1, g1)
	}
}

func TestTokenizeListAttribute(t *testing.T) {
	line := "chr1\tensembl\texon\t10\t50\t.\t+\t.\tParent=a,b,c"
	tok, err := tokenize(line, '\t', 0, ColumnIgnore)
	if err != nil {
		t.Fatalf("tokenize should not have failed: %v", err)
	}

	e1 := true
	g1 := tok.Attributes[`Parent`].IsList()
	if e1 != g1 {
		t.Fatalf("IsList should be %v but is %v", e1, g1)
	}

	e2 := 3
	g2 := len(tok.Attributes[`Parent`].Strings())
	if e2 != g2 {
		t.Fatalf("len(Strings) should be %v but is %v", e2, g2)
	}
}

func TestTokenizeExpectColumnsDie(t *testing.T) {
	line := "chr1\tensembl\texon\t10\t50\t.\t+"
	_, err := tokenize(line, '\t', 9, ColumnDie)
	if err == nil {
		t.Fatalf("tokenize should have failed on column count mismatch")
	}
}

func TestTokenizeExpectColumnsSkip(t *testing.T) {
	line := "chr1\tensembl\texon\t10\t50\t.\t+\t.\tID=e1\tEXTRA"
	tok, err := tokenize(line, '\t', 9, ColumnSkip)
	if err != nil {
		t.Fatalf("tokenize should not have failed: %v", err)
	}
	if tok != nil {
		t.Fatalf("tokenize should have returned a nil tokLine for a skip policy mismatch")
	}
}
