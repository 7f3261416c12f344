package gff3

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Relation is the left side of an expectation rule (spec.md §4.5).
type Relation int

const (
	RelHasParent Relation = iota
	RelHasChild
	RelHasSister
	RelCompare
)

// CompareOp is the comparison operator for a RelCompare rule. Numeric ops
// compare attribute values as numbers; the *Lex ops always compare
// lexically regardless of content.
type CompareOp int

const (
	OpLT CompareOp = iota
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpEqLex
	OpNeLex
	OpLtLex
	OpGtLex
)

// Flag is the action dispatched when a rule is unsatisfied (spec.md
// §4.5 Actions table).
type Flag int

const (
	FlagIgnore Flag = iota
	FlagWarn
	FlagDie
	FlagSkip
	FlagFind
	FlagMake
	FlagForce
)

// Rule is one registered expectation: (relation, alt, flag). The
// type_pattern each Rule was registered under is not stored on the Rule
// itself - it is the map key in Engine.rules, since spec.md §4.5 has the
// rule "registered once per name" in the pattern.
type Rule struct {
	Relation Relation
	Op       CompareOp
	AttrA    string
	AttrB    string
	Alt      string // type pattern for structural rules; SELF/PARENT for compare
	Flag     Flag
	raw      string // original relation string, for diagnostics
}

var compareRe = regexp.MustCompile(`^(<=|>=|==|!=|<|>|eq|ne|lt|gt)\[([^,\]]+),([^,\]]+)\]$`)

func newRule(relation, alt, flag string) (Rule, error) {
	f, err := parseFlag(flag)
	if err != nil {
		return Rule{}, err
	}
	rule := Rule{Flag: f, Alt: alt, raw: relation}

	switch strings.ToLower(relation) {
	case `hasparent`:
		rule.Relation = RelHasParent
		return rule, nil
	case `haschild`:
		rule.Relation = RelHasChild
		return rule, nil
	case `hassister`:
		rule.Relation = RelHasSister
		return rule, nil
	}

	m := compareRe.FindStringSubmatch(relation)
	if m == nil {
		return Rule{}, fmt.Errorf("unrecognised relation %q", relation)
	}
	rule.Relation = RelCompare
	rule.AttrA, rule.AttrB = m[2], m[3]
	switch m[1] {
	case `<`:
		rule.Op = OpLT
	case `>`:
		rule.Op = OpGT
	case `<=`:
		rule.Op = OpLE
	case `>=`:
		rule.Op = OpGE
	case `==`:
		rule.Op = OpEQ
	case `!=`:
		rule.Op = OpNE
	case `eq`:
		rule.Op = OpEqLex
	case `ne`:
		rule.Op = OpNeLex
	case `lt`:
		rule.Op = OpLtLex
	case `gt`:
		rule.Op = OpGtLex
	}
	return rule, nil
}

func parseFlag(s string) (Flag, error) {
	switch strings.ToLower(s) {
	case `ignore`:
		return FlagIgnore, nil
	case `warn`:
		return FlagWarn, nil
	case `die`:
		return FlagDie, nil
	case `skip`:
		return FlagSkip, nil
	case `find`:
		return FlagFind, nil
	case `make`:
		return FlagMake, nil
	case `force`:
		return FlagForce, nil
	default:
		return FlagIgnore, fmt.Errorf("unrecognised flag %q", s)
	}
}

// ValidateAll runs Validate on every node in the forest, depth-first, and
// stops at the first die action (returning its Diagnostic).
func (e *Engine) ValidateAll() error {
	var dieErr error
	WalkDepthFirst(e.Store.Root, func(f *Feature) (bool, bool) {
		if f.IsRoot() {
			return false, false
		}
		if err := e.Validate(f); err != nil {
			dieErr = err
			return false, true
		}
		return false, false
	})
	return dieErr
}

// Validate evaluates every rule registered for node's type against node,
// dispatching the configured Flag for each unsatisfied rule. It returns
// an error only when a die action fires, or a make/force repair is
// attempted but unsupported.
func (e *Engine) Validate(node *Feature) error {
	for _, rule := range e.rules[node.LowerType()] {
		ok, detail := e.evaluateRule(node, rule)
		if ok {
			continue
		}
		if err := e.dispatch(node, rule, detail); err != nil {
			return err
		}
	}
	return nil
}

// evaluateRule reports whether rule is satisfied for node, plus a short
// human-readable detail string used in diagnostics.
func (e *Engine) evaluateRule(node *Feature, rule Rule) (bool, string) {
	switch rule.Relation {
	case RelHasParent:
		if node.Parent == nil || node.Parent.IsRoot() {
			return false, fmt.Sprintf("no parent of type matching %s", rule.Alt)
		}
		ok, _ := regexp.MatchString(`(?i)`+rule.Alt, node.Parent.Type)
		if !ok {
			return false, fmt.Sprintf("parent type %s does not match %s", node.Parent.Type, rule.Alt)
		}
		return true, ""
	case RelHasChild:
		for _, d := range node.Descendants() {
			if ok, _ := regexp.MatchString(`(?i)`+rule.Alt, d.Type); ok {
				return true, ""
			}
		}
		return false, fmt.Sprintf("no descendant of type matching %s", rule.Alt)
	case RelHasSister:
		if e.findSister(node, rule.Alt) != nil {
			return true, ""
		}
		return false, fmt.Sprintf("no sister of type matching %s", rule.Alt)
	case RelCompare:
		first, firstOK := node.Attr(rule.AttrA)
		var secondSrc *Feature
		if strings.EqualFold(rule.Alt, `SELF`) {
			secondSrc = node
		} else {
			secondSrc = node.Parent
		}
		var second AttrValue
		secondOK := false
		if secondSrc != nil {
			second, secondOK = secondSrc.Attr(rule.AttrB)
		}
		if !firstOK || !secondOK {
			return false, fmt.Sprintf("missing attribute %s or %s", rule.AttrA, rule.AttrB)
		}
		ok := compareSatisfied(rule.Op, first.String(), second.String())
		if !ok {
			return false, fmt.Sprintf("%s=%s does not satisfy comparison against %s=%s", rule.AttrA, first, rule.AttrB, second)
		}
		return true, ""
	}
	return true, ""
}

func compareSatisfied(op CompareOp, a, b string) bool {
	switch op {
	case OpEqLex:
		return a == b
	case OpNeLex:
		return a != b
	case OpLtLex:
		return a < b
	case OpGtLex:
		return a > b
	}
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr != nil || berr != nil {
		// Fall back to lexical compare if either side isn't numeric.
		switch op {
		case OpLT:
			return a < b
		case OpGT:
			return a > b
		case OpLE:
			return a <= b
		case OpGE:
			return a >= b
		case OpEQ:
			return a == b
		case OpNE:
			return a != b
		}
		return false
	}
	switch op {
	case OpLT:
		return af < bf
	case OpGT:
		return af > bf
	case OpLE:
		return af <= bf
	case OpGE:
		return af >= bf
	case OpEQ:
		return af == bf
	case OpNE:
		return af != bf
	}
	return false
}

// dispatch applies rule.Flag to an unsatisfied rule on node.
func (e *Engine) dispatch(node *Feature, rule Rule, detail string) error {
	switch rule.Flag {
	case FlagIgnore:
		return nil
	case FlagWarn:
		log.Warnf("gff3: expectation failed for %s %s: %s", node.Type, node.ID, detail)
		return nil
	case FlagDie:
		return &Diagnostic{Op: `expectation`, Type: node.Type, ID: node.ID,
			AttrA: rule.AttrA, AttrB: rule.AttrB,
			ParentID: parentIDOf(node), Message: detail}
	case FlagSkip:
		log.Warnf("gff3: expectation failed for %s %s, marking skip: %s", node.Type, node.ID, detail)
		node.Skip = true
		return nil
	case FlagFind:
		_, err := e.repairFind(node, rule)
		return err
	case FlagMake:
		_, err := e.repairMake(node, rule)
		return err
	case FlagForce:
		ok, err := e.repairFind(node, rule)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		_, err = e.repairMake(node, rule)
		return err
	}
	return nil
}

func parentIDOf(node *Feature) string {
	if node.Parent == nil || node.Parent.IsRoot() {
		return ""
	}
	return node.Parent.ID
}

// repairFind implements spec.md §4.5.1. Only hasParent has a find
// implementation; every other relation is a documented no-op (spec.md §9
// Open Questions, carried over from the source as-is).
func (e *Engine) repairFind(node *Feature, rule Rule) (bool, error) {
	if rule.Relation != RelHasParent {
		return false, nil
	}

	var candidate *Feature
	for _, c := range e.Store.ByPos(node.SeqName, rule.Alt, node.Start) {
		if c.End == node.End {
			candidate = c
			break
		}
	}
	if candidate == nil {
		for _, c := range e.Store.NearestStart(node.SeqName, rule.Alt, node.Start) {
			if c.End >= node.End {
				candidate = c
				break
			}
		}
	}
	if candidate == nil {
		log.Warnf("gff3: hasParent find could not locate a %s for %s %s", rule.Alt, node.Type, node.ID)
		return false, nil
	}

	e.Store.Reparent(node, candidate)
	node.SetAttr(`Parent`, ScalarAttr(candidate.ID))
	return true, nil
}

// repairMake implements spec.md §4.5.2.
func (e *Engine) repairMake(node *Feature, rule Rule) (bool, error) {
	switch rule.Relation {
	case RelHasParent:
		if strings.EqualFold(rule.Alt, `region`) {
			region := e.makeRegion(node)
			e.Store.Reparent(node, region)
			node.SetAttr(`Parent`, ScalarAttr(region.ID))
			return true, nil
		}
		parent := e.makeGenericParent(node, rule.Alt)
		e.Store.Reparent(node, parent)
		node.SetAttr(`Parent`, ScalarAttr(parent.ID))
		return true, nil
	case RelHasSister:
		sisters, err := e.makeSister(node, rule.Alt)
		return len(sisters) > 0, err
	case RelHasChild:
		child := e.makeChild(node, rule.Alt)
		return child != nil, nil
	}
	return false, nil
}

// makeRegion returns an existing region for node.SeqName if one already
// exists, otherwise synthesizes one spanning [1, max end over all nodes
// sharing node's SeqName], strand +, as a new child of root (spec.md
// §4.5.2). Reusing an existing region keeps repeated make repairs for
// siblings on the same sequence from minting a fresh region each time.
func (e *Engine) makeRegion(node *Feature) *Feature {
	for _, f := range ByType(e.Store.Root, `region`, false) {
		if f.SeqName == node.SeqName {
			return f
		}
	}

	maxEnd := node.End
	for _, f := range WalkDepthFirst(e.Store.Root, func(f *Feature) (bool, bool) { return !f.IsRoot(), false }) {
		if f.SeqName == node.SeqName && f.End > maxEnd {
			maxEnd = f.End
		}
	}
	region := e.Store.CreateChild(e.Store.Root, `region`, 1, maxEnd, "")
	region.SeqName = node.SeqName
	region.Strand = `+`
	return region
}

// makeGenericParent synthesizes a node of type alt spanning node's own
// coordinates, inheriting strand and the current parent chain (spec.md
// §4.5.2).
func (e *Engine) makeGenericParent(node *Feature, alt string) *Feature {
	parent := node.Parent
	if parent == nil {
		parent = e.Store.Root
	}
	f := e.Store.CreateChild(parent, alt, node.Start, node.End, "")
	f.SeqName = node.SeqName
	f.Strand = node.Strand
	if pv, ok := parent.Attr(`ID`); ok {
		f.SetAttr(`Parent`, pv)
	} else if !parent.IsRoot() {
		f.SetAttr(`Parent`, ScalarAttr(parent.ID))
	}
	return f
}
