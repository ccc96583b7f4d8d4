package norm

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"f90norm/internal/scan"
	"f90norm/internal/source"
	"f90norm/internal/stmt"
)

// DefaultWidth is the wrap width for merged declarations when neither the
// flag nor the config sets one.
const DefaultWidth = 80

// MergeDecls consolidates runs of consecutive "::" declarations that share
// the same text before the separator (compared case- and whitespace-
// insensitively) into one declaration whose entity list is the concatenation
// in source order, wrapped at width. Lines carrying a comment, blank lines
// and everything that is not such a declaration pass through unchanged and
// break the run. Runs of one are still reflowed, so an overlong declaration
// wraps even when it has no neighbors to merge with.
func MergeDecls(lines []source.Line, width int) []source.Line {
	if width <= 0 {
		width = DefaultWidth
	}

	out := make([]source.Line, 0, len(lines))
	var run *declRun
	flush := func() {
		if run == nil {
			return
		}
		for i, text := range wrapDecl(run.indent, run.lhs, run.items, width) {
			var num uint32
			if i == 0 {
				num = run.num
			}
			out = append(out, source.Line{Num: num, Text: text})
		}
		run = nil
	}

	for _, ln := range lines {
		d, items, ok := mergeable(ln.Text)
		if !ok {
			flush()
			out = append(out, ln)
			continue
		}
		lhs := strings.TrimSpace(d.Head + d.Attrs)
		key := normalizeLHS(lhs)
		if run != nil && run.key == key {
			run.items = append(run.items, items...)
			continue
		}
		flush()
		run = &declRun{indent: d.Indent, lhs: lhs, key: key, items: items, num: ln.Num}
	}
	flush()
	return out
}

type declRun struct {
	indent string
	lhs    string // exact spelling from the first statement of the run
	key    string // normalized lhs, decides run membership
	items  []string
	num    uint32
}

// mergeable classifies one output line. Only comment-free "::" declarations
// take part in merging; derived-type definition headers ("type :: point")
// look like one but open a block and must stay put.
func mergeable(text string) (stmt.Decl, []string, bool) {
	code, comment := scan.SplitCodeComment(text)
	if comment != "" {
		return stmt.Decl{}, nil, false
	}
	// Строки с маркером продолжения не трогаем: это куски чужого statement
	if strings.HasSuffix(strings.TrimRight(code, " \t"), "&") {
		return stmt.Decl{}, nil, false
	}
	if stmt.IsTypeDefStart(code) {
		return stmt.Decl{}, nil, false
	}
	d, ok := stmt.MatchDecl(code)
	if !ok || !d.HasSep {
		return stmt.Decl{}, nil, false
	}
	var items []string
	for _, part := range scan.SplitTopLevel(d.Entities, ',') {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return stmt.Decl{}, nil, false
	}
	return d, items, true
}

// normalizeLHS folds case, collapses whitespace and normalizes the spacing
// around commas and parentheses, so that "INTEGER( kind=8 )" and
// "integer(kind=8)" land in the same run.
func normalizeLHS(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ':
			if i+1 < len(s) && (s[i+1] == ',' || s[i+1] == '(' || s[i+1] == ')') {
				continue
			}
			b.WriteByte(c)
		case ',':
			b.WriteString(", ")
			for i+1 < len(s) && s[i+1] == ' ' {
				i++
			}
		case '(', ')':
			b.WriteByte(c)
			for i+1 < len(s) && s[i+1] == ' ' {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// wrapDecl renders one declaration, filling each line greedily and breaking
// with ", &" before the width runs out. A break backtracks as many entities
// as needed to make room for the marker, but a single entity that cannot fit
// stays on its own overlong line. Continuation lines are indented three
// spaces past the declaration and carry no leading "&".
func wrapDecl(indent, lhs string, items []string, width int) []string {
	firstPrefix := indent + lhs + " :: "
	contPrefix := indent + "   "

	var out []string
	remaining := append([]string(nil), items...)
	first := true
	for len(remaining) > 0 {
		prefix := contPrefix
		if first {
			prefix = firstPrefix
		}

		var lineItems []string
		line := ""
		for len(remaining) > 0 {
			cand := prefix + strings.Join(lineItems, ", ")
			if len(lineItems) > 0 {
				cand += ", "
			}
			cand += remaining[0]
			if runewidth.StringWidth(cand) > width && len(lineItems) > 0 {
				break
			}
			lineItems = append(lineItems, remaining[0])
			remaining = remaining[1:]
			line = cand
			if len(lineItems) == 1 && runewidth.StringWidth(line) > width {
				break // одной сущности некуда переноситься
			}
		}

		if len(remaining) > 0 {
			// освобождаем место под маркер продолжения
			for len(lineItems) > 1 && runewidth.StringWidth(line)+len(", &") > width {
				last := lineItems[len(lineItems)-1]
				lineItems = lineItems[:len(lineItems)-1]
				remaining = append([]string{last}, remaining...)
				line = prefix + strings.Join(lineItems, ", ")
			}
			line += ", &"
		}
		out = append(out, line)
		first = false
	}
	return out
}
