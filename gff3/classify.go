package gff3

import (
	"regexp"
	"strings"
)

// lineKind is the result of classifying one input line (spec.md §4.2).
type lineKind int

const (
	lineData lineKind = iota
	lineBlank
	lineComment
	lineDirective
	lineFastaHeader
	lineFastaBody
)

var fastaHeaderRe = regexp.MustCompile(`^>(\S*)`)

// classify categorizes a raw line. inFasta tracks whether the builder is
// currently inside a FASTA block, since a FASTA body line is otherwise
// indistinguishable from plain text.
func classify(line string, inFasta bool) (kind lineKind, depth int, fastaName string) {
	if strings.TrimSpace(line) == "" {
		return lineBlank, 0, ""
	}
	if line[0] == '#' {
		d := 0
		for d < len(line) && line[d] == '#' {
			d++
		}
		if d >= 2 {
			return lineDirective, d, ""
		}
		return lineComment, d, ""
	}
	if line[0] == '>' {
		m := fastaHeaderRe.FindStringSubmatch(line)
		name := ""
		if len(m) == 2 {
			name = m[1]
		}
		return lineFastaHeader, 0, name
	}
	if inFasta {
		return lineFastaBody, 0, ""
	}
	return lineData, 0, ""
}

// CommentPattern declares an inline comment convention (spec.md §4.2,
// has_comments). A single-delimiter pattern strips from Delim to
// end-of-line; a paired pattern strips every matched Delim...End span.
type CommentPattern struct {
	Delim string
	End   string // empty for a single trailing delimiter
}

// stripComments applies every configured CommentPattern to line, in
// order, before tokenization. The interaction between this stripping and
// quoted '=' / ';' inside attribute values is undefined by design - see
// DESIGN.md Open Questions - so stripping is purely textual and happens
// before the tokenizer has any notion of columns.
func stripComments(line string, patterns []CommentPattern) string {
	for _, p := range patterns {
		if p.End == "" {
			if i := strings.Index(line, p.Delim); i >= 0 {
				line = line[:i]
			}
			continue
		}
		for {
			i := strings.Index(line, p.Delim)
			if i < 0 {
				break
			}
			j := strings.Index(line[i+len(p.Delim):], p.End)
			if j < 0 {
				break
			}
			j += i + len(p.Delim)
			line = line[:i] + line[j+len(p.End):]
		}
	}
	return line
}
