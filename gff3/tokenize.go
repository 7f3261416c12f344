package gff3

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ColumnFlag is the policy applied when a data line's column count does
// not match a configured expected width (spec.md §4.1, §6 expect_columns).
type ColumnFlag int

const (
	ColumnIgnore ColumnFlag = iota
	ColumnWarn
	ColumnDie
	ColumnSkip
)

func parseColumnFlag(s string) (ColumnFlag, error) {
	switch strings.ToLower(s) {
	case `ignore`:
		return ColumnIgnore, nil
	case `warn`:
		return ColumnWarn, nil
	case `die`:
		return ColumnDie, nil
	case `skip`:
		return ColumnSkip, nil
	default:
		return ColumnIgnore, fmt.Errorf("tokenize: unrecognised column flag %q", s)
	}
}

// tokenLine is the tokenizer's output for one data line: the eight typed
// fields plus an ordered attribute map. A nil tokenLine with no error means
// the line was dropped by a "skip" column-count policy.
type tokenLine struct {
	SeqName    string
	Source     string
	Type       string
	Start      int
	End        int
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]AttrValue
	AttrOrder  []string
}

// tokenize splits line on sep and parses it into a tokenLine. expectCols
// of 0 means no width check is performed. line must already have had
// inline comment patterns stripped (classify.go) and must not be blank,
// a comment, a directive or FASTA text.
func tokenize(line string, sep byte, expectCols int, flag ColumnFlag) (*tokenLine, error) {
	fields := strings.Split(line, string(sep))

	if expectCols > 0 && len(fields) != expectCols {
		switch flag {
		case ColumnIgnore:
			// fall through to best-effort parse below
		case ColumnWarn:
			log.Warnf("tokenize: line has %d columns, expected %d: %s", len(fields), expectCols, line)
		case ColumnDie:
			return nil, fmt.Errorf("tokenize: line has %d columns, expected %d: %s", len(fields), expectCols, line)
		case ColumnSkip:
			return nil, nil
		}
	}

	if len(fields) < 8 {
		return nil, fmt.Errorf("tokenize: line has only %d columns, need at least 8: %s", len(fields), line)
	}

	tl := &tokenLine{
		SeqName: fields[0],
		Source:  fields[1],
		Type:    fields[2],
		Score:   fields[5],
		Strand:  fields[6],
		Phase:   fields[7],
	}

	start, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return nil, fmt.Errorf("tokenize: cannot parse start %q: %w", fields[3], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return nil, fmt.Errorf("tokenize: cannot parse end %q: %w", fields[4], err)
	}
	tl.Start, tl.End = start, end

	tl.Attributes = make(map[string]AttrValue)
	if len(fields) >= 9 {
		attrField := strings.TrimSpace(fields[8])
		if attrField != "" {
			for _, pair := range strings.Split(attrField, ";") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				kv := strings.SplitN(pair, "=", 2)
				key := strings.TrimSpace(kv[0])
				if key == "" {
					continue
				}
				var raw string
				if len(kv) == 2 {
					raw = strings.TrimSpace(kv[1])
				}
				raw = percentDecode(raw)
				if raw == "" {
					// Empty values drop the key entirely (spec.md §4.1).
					continue
				}
				var val AttrValue
				if strings.Contains(raw, ",") {
					val = ListAttr(strings.Split(raw, ","))
				} else {
					val = ScalarAttr(raw)
				}
				if _, seen := tl.Attributes[key]; !seen {
					tl.AttrOrder = append(tl.AttrOrder, key)
				}
				tl.Attributes[key] = val
			}
		}
	}

	return tl, nil
}

// percentDecode replaces %XX hex escapes with the corresponding byte. It
// is deliberately forgiving of malformed escapes (left verbatim) rather
// than erroring, matching the tokenizer's overall lenient-by-default
// posture (spec.md §7 category 1).
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if hi, ok := hexVal(s[i+1]); ok {
				if lo, ok := hexVal(s[i+2]); ok {
					b.WriteByte(byte(hi<<4 | lo))
					i += 2
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
