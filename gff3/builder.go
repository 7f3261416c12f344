package gff3

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Parse drives the BUILD state machine (spec.md §4.3) over r: it
// classifies each line, tokenizes data lines, resolves parents, mints or
// validates IDs, coalesces multi-line segments, tracks FASTA blocks, and
// finally runs orphan resolution to a fixpoint.
func (e *Engine) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSuffix(scanner.Text(), "\r")

		kind, depth, fastaName := classify(raw, e.inFasta)
		switch kind {
		case lineBlank:
			continue
		case lineComment:
			e.Header = append(e.Header, raw)
			continue
		case lineDirective:
			if depth >= 2 {
				e.inFasta = false
				e.fastaRegion = nil
			}
			if raw != `###` {
				e.Header = append(e.Header, raw)
			}
			continue
		case lineFastaHeader:
			e.inFasta = true
			e.fastaRegion = e.regionForSeq(fastaName)
			continue
		case lineFastaBody:
			if e.fastaRegion != nil {
				e.fastaRegion.Sequence += raw
				if l := len(e.fastaRegion.Sequence); l > e.fastaRegion.End {
					e.fastaRegion.End = l
				}
			}
			continue
		}

		line := stripComments(raw, e.commentPatterns)
		tok, err := tokenize(line, e.sep, e.expectCols, e.expectColsFlag)
		if err != nil {
			return fmt.Errorf("gff3: parse error at line %d: %w", lineNo, err)
		}
		if tok == nil {
			continue // dropped by a "skip" column-count policy
		}
		if err := e.build(tok, lineNo); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gff3: scanner error: %w", err)
	}

	return e.resolveOrphans()
}

var gzipExt = regexp.MustCompile(`(?i)\.gz$`)

// ParseFile is a thin file-sourcing convenience wrapper around Parse -
// the core itself only ever consumes an io.Reader. It sniffs a ".gz"
// suffix and transparently decompresses.
func (e *Engine) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if gzipExt.MatchString(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gff3: opening gzip file %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return e.Parse(r)
}

// regionForSeq ensures a region node exists for seqName, creating one
// under root if necessary (spec.md §4.3 FASTA state "ensure region node
// exists").
func (e *Engine) regionForSeq(seqName string) *Feature {
	for _, f := range ByType(e.Store.Root, `region`, false) {
		if f.SeqName == seqName {
			return f
		}
	}
	f := e.Store.CreateChild(e.Store.Root, `region`, 1, 0, "")
	f.SeqName = seqName
	f.Strand = `+`
	return f
}

// build implements spec.md §4.3's numbered BUILD steps for one already
// tokenized data line.
func (e *Engine) build(tok *tokenLine, lineNo int) error {
	typ := tok.Type
	if mapped, ok := e.typeMapLookup(typ); ok {
		typ = mapped
		tok.Type = mapped
	}

	parentIDs, hasParentAttr := e.resolveParentIDs(tok)
	firstParent := e.Store.Root
	if hasParentAttr && len(parentIDs) > 0 {
		if p, ok := e.Store.ByID(parentIDs[0]); ok {
			firstParent = p
		}
	}

	id, drop, err := e.resolveID(typ, tok, firstParent, lineNo)
	if err != nil {
		return err
	}
	if drop {
		return nil
	}
	id = strings.ReplaceAll(id, `'`, ``)

	if hasParentAttr && len(parentIDs) > 1 {
		for i, pid := range parentIDs {
			parent := e.Store.Root
			if p, ok := e.Store.ByID(pid); ok {
				parent = p
			}
			nodeID := id
			duplicate := i > 0
			if duplicate {
				nodeID = fmt.Sprintf("%s._%d", id, i)
			}
			if err := e.createOrCoalesce(typ, tok, nodeID, parent, duplicate, lineNo); err != nil {
				return err
			}
		}
		return nil
	}

	return e.createOrCoalesce(typ, tok, id, firstParent, false, lineNo)
}

func (e *Engine) typeMapLookup(raw string) (string, bool) {
	mapped, ok := e.typeMap[raw]
	return mapped, ok
}

// resolveParentIDs returns the list of parent ID strings declared via the
// Parent attribute, and whether that attribute was present at all.
func (e *Engine) resolveParentIDs(tok *tokenLine) ([]string, bool) {
	v, ok := tok.Attributes[`Parent`]
	if !ok {
		return nil, false
	}
	return v.Strings(), true
}

// resolveID implements spec.md §4.3 step 4 (lacks_id policy dispatch).
// It returns (id, drop, err): drop is true when the line should be
// dropped (ignore policy silently, warn policy after logging a warning).
func (e *Engine) resolveID(typ string, tok *tokenLine, parent *Feature, lineNo int) (string, bool, error) {
	if v, ok := tok.Attributes[`ID`]; ok {
		return v.String(), false, nil
	}

	policy := e.lacksIDPolicy(typ)
	switch strings.ToLower(policy) {
	case `ignore`:
		return "", true, nil
	case `warn`:
		log.Warnf("gff3: line %d: feature of type %s has no ID, dropping (lacks_id=warn)", lineNo, typ)
		return "", true, nil
	case `die`:
		return "", false, &Diagnostic{Op: `lacks_id`, Type: typ, Line: lineNo, Message: "feature has no ID"}
	case `make`:
		return e.mintIDFor(typ, parent), false, nil
	default:
		// Treat policy as an alternative attribute name.
		if v, ok := tok.Attributes[policy]; ok {
			return v.String(), false, nil
		}
		return e.mintIDFor(typ, parent), false, nil
	}
}

// mintIDFor implements the minted-ID reuse rule for multi-line types: if
// this parent already has a multi-line child of typ with a minted ID,
// that ID is reused so further unlabelled segments coalesce onto the same
// node, instead of minting a fresh ID (and hence a fresh node) per line.
func (e *Engine) mintIDFor(typ string, parent *Feature) string {
	lowerTyp := strings.ToLower(typ)
	prefix := lowerTyp + `___`
	if e.isMultiline(typ) {
		for _, c := range parent.Children {
			if c.LowerType() == lowerTyp && strings.HasPrefix(c.ID, prefix) {
				return c.ID
			}
		}
	}
	return e.Store.MintID(lowerTyp)
}

// createOrCoalesce implements spec.md §4.3 steps 7-8 for a single
// (id, parent) pair: either fold the line into an existing multi-line
// node as a new segment, reject an ID clash, or create a fresh node.
func (e *Engine) createOrCoalesce(typ string, tok *tokenLine, id string, parent *Feature, duplicate bool, lineNo int) error {
	if existing, ok := e.Store.ByID(id); ok {
		if e.isMultiline(existing.Type) && e.sameCoalesceKey(existing, tok) {
			e.Store.coalesceSegment(existing, tok)
			return nil
		}
		return &Diagnostic{Op: `id_clash`, Type: typ, ID: id, Line: lineNo, Message: ErrIDClash.Error()}
	}

	f := NewFeature()
	f.SeqName = tok.SeqName
	f.Source = tok.Source
	f.Type = typ
	f.Start = tok.Start
	f.End = tok.End
	f.Score = tok.Score
	f.Strand = tok.Strand
	f.Phase = tok.Phase
	f.ID = id
	f.LineNumber = lineNo
	f.Duplicate = duplicate
	for _, k := range tok.AttrOrder {
		f.SetAttr(k, tok.Attributes[k])
	}
	if name, ok := f.Attr(`Name`); ok {
		f.Name = name.String()
	} else {
		f.Name = id
	}

	e.Store.AttachTo(f, parent)
	e.Store.indexByID(f)
	e.Store.indexByPos(f)
	return nil
}

// sameCoalesceKey reports whether tok can be folded into existing as a
// new segment: (seq_name, type, strand, Parent) must all match (spec.md
// §4.3 step 7).
func (e *Engine) sameCoalesceKey(existing *Feature, tok *tokenLine) bool {
	if existing.SeqName != tok.SeqName {
		return false
	}
	if !strings.EqualFold(existing.Type, tok.Type) {
		return false
	}
	if existing.Strand != tok.Strand {
		return false
	}
	existingParent, _ := existing.Attr(`Parent`)
	tokParent := tok.Attributes[`Parent`]
	return existingParent.String() == tokParent.String()
}

// resolveOrphans implements spec.md §4.3.2: repeatedly sweep root's
// direct children, reparenting any whose Parent attribute now resolves,
// until a fixpoint. Anything left under root with an unresolved Parent is
// subject to the undefined_parent policy.
func (e *Engine) resolveOrphans() error {
	for {
		changed := false
		for _, child := range append([]*Feature(nil), e.Store.Root.Children...) {
			v, ok := child.Attr(`Parent`)
			if !ok {
				continue
			}
			ids := v.Strings()
			if len(ids) == 0 {
				continue
			}
			if p, ok := e.Store.ByID(ids[0]); ok && p != e.Store.Root && p != child {
				e.Store.Reparent(child, p)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	if strings.ToLower(e.undefinedParent) == `die` {
		for _, child := range e.Store.Root.Children {
			if _, ok := child.Attr(`Parent`); ok {
				return &Diagnostic{Op: `undefined_parent`, Type: child.Type, ID: child.ID,
					Message: ErrUnresolvedOrphan.Error()}
			}
		}
	}
	return nil
}
