// Package gff3 parses GFF3 text into an in-memory feature forest, then
// validates and repairs that forest against a declarative rule set -
// see the Engine type for the full configuration surface.
package gff3

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/grendeloz/runp"
	log "github.com/sirupsen/logrus"
)

// Engine owns one feature forest plus the configuration used to build and
// validate it. All configuration methods except AddExpectation (which
// returns an error) return the Engine itself so calls can be chained, e.g.:
//
//	e := gff3.NewEngine().
//	        Multiline(`CDS`).
//	        LacksID(`all`, `make`).
//	        UndefinedParent(`make`)
type Engine struct {
	Store  *Store
	Header []string

	// InstanceID/Provenance are ambient bookkeeping: every config call
	// below appends an entry so a caller can dump a trail alongside a
	// die diagnostic.
	InstanceID string
	Provenance []runp.RunParameters

	sep             byte
	commentPatterns []CommentPattern
	typeMap         map[string]string
	multilineAll    bool
	multilineTypes  map[string]bool
	lacksIDDefault  string
	lacksID         map[string]string
	undefinedParent string
	expectCols      int
	expectColsFlag  ColumnFlag
	rules           map[string][]Rule

	// FASTA-block state, live only during Parse.
	inFasta     bool
	fastaRegion *Feature
}

// NewEngine returns a ready-to-configure Engine with an empty forest and
// the documented defaults: separator TAB, lacks_id "ignore",
// undefined_parent "make".
func NewEngine() *Engine {
	e := &Engine{
		Store:           NewStore(),
		InstanceID:      uuid.New().String(),
		sep:             '\t',
		typeMap:         make(map[string]string),
		multilineTypes:  make(map[string]bool),
		lacksIDDefault:  `ignore`,
		lacksID:         make(map[string]string),
		undefinedParent: `make`,
		rules:           make(map[string][]Rule),
	}
	e.note("NewEngine")
	return e
}

func (e *Engine) note(format string, args ...interface{}) {
	p := runp.NewRunParameters()
	e.Provenance = append(e.Provenance, p)
	log.Debugf("gff3(%s): "+format, append([]interface{}{e.InstanceID}, args...)...)
}

// Separator overrides the column separator (default TAB).
func (e *Engine) Separator(sep byte) *Engine {
	e.sep = sep
	e.note("Separator(%q)", sep)
	return e
}

// HasComments declares one or more inline comment conventions applied to
// every data line before tokenization.
func (e *Engine) HasComments(patterns ...CommentPattern) *Engine {
	e.commentPatterns = append(e.commentPatterns, patterns...)
	e.note("HasComments(%d patterns)", len(patterns))
	return e
}

// MapTypes declares raw-type -> canonical-type aliasing applied at parse
// time, before multiline/lacks_id policy lookups.
func (e *Engine) MapTypes(m map[string]string) *Engine {
	for k, v := range m {
		e.typeMap[k] = v
	}
	e.note("MapTypes(%d entries)", len(m))
	return e
}

// Multiline allows typ (case-insensitive) to coalesce across lines;
// "all" allows any type.
func (e *Engine) Multiline(typ string) *Engine {
	if strings.EqualFold(typ, `all`) {
		e.multilineAll = true
	} else {
		e.multilineTypes[strings.ToLower(typ)] = true
	}
	e.note("Multiline(%s)", typ)
	return e
}

func (e *Engine) isMultiline(typ string) bool {
	return e.multilineAll || e.multilineTypes[strings.ToLower(typ)]
}

// LacksID sets the policy for missing-ID lines of typ: one of
// ignore/warn/die/make, or an alternative attribute name to use in place
// of ID. "all" sets the default applied to types with no specific entry.
func (e *Engine) LacksID(typ, policy string) *Engine {
	if strings.EqualFold(typ, `all`) {
		e.lacksIDDefault = policy
	} else {
		e.lacksID[strings.ToLower(typ)] = policy
	}
	e.note("LacksID(%s,%s)", typ, policy)
	return e
}

func (e *Engine) lacksIDPolicy(typ string) string {
	if p, ok := e.lacksID[strings.ToLower(typ)]; ok {
		return p
	}
	return e.lacksIDDefault
}

// UndefinedParent sets the policy ("die" or "make", default "make") for
// nodes whose Parent reference never resolves after the orphan-resolution
// fixpoint.
func (e *Engine) UndefinedParent(policy string) *Engine {
	e.undefinedParent = strings.ToLower(policy)
	e.note("UndefinedParent(%s)", policy)
	return e
}

// ExpectColumns enforces exactly n columns per data line, dispatching
// flag (ignore/warn/die/skip) on mismatch.
func (e *Engine) ExpectColumns(n int, flag string) *Engine {
	e.expectCols = n
	f, err := parseColumnFlag(flag)
	if err != nil {
		log.Warnf("gff3: ExpectColumns: %v, defaulting to ignore", err)
		f = ColumnIgnore
	}
	e.expectColsFlag = f
	e.note("ExpectColumns(%d,%s)", n, flag)
	return e
}

// AddExpectation registers a validation rule. See Rule for the grammar of
// relation/alt/flag.
func (e *Engine) AddExpectation(typePattern, relation, alt, flag string) error {
	rule, err := newRule(relation, alt, flag)
	if err != nil {
		return fmt.Errorf("gff3: AddExpectation: %w", err)
	}
	for _, name := range strings.Split(strings.ToLower(typePattern), "|") {
		e.rules[name] = append(e.rules[name], rule)
	}
	e.note("AddExpectation(%s,%s,%s,%s)", typePattern, relation, alt, flag)
	return nil
}
