// Package stmt models logical Fortran statements: physical lines merged
// across continuations, split at semicolons, and classified as declarations.
package stmt

import (
	"strings"

	"f90norm/internal/source"
)

// Comment is a trailing comment captured while merging, anchored to the
// physical line it came from. Text includes the '!' marker.
type Comment struct {
	Line uint32
	Text string
}

// Statement is one logical statement: the merged code text of one or more
// physical lines plus every trailing comment met along the way, in source
// order. Blank and comment-only lines are statements too (with blank code),
// so the stream covers the whole file.
type Statement struct {
	Code     string        // merged code text, comments removed
	Lines    []source.Line // physical lines consumed, in order
	Comments []Comment
}

// Synth builds a statement with no physical origin, for lines the
// normalizer inserts itself. Its line number renders as 0 and is never
// used for diagnostics.
func Synth(code string) Statement {
	return Statement{Code: code, Lines: []source.Line{{Num: 0, Text: code}}}
}

// StartLine returns the 1-based number of the first physical line.
func (s Statement) StartLine() uint32 {
	if len(s.Lines) == 0 {
		return 0
	}
	return s.Lines[0].Num
}

// EndLine returns the 1-based number of the last physical line.
func (s Statement) EndLine() uint32 {
	if len(s.Lines) == 0 {
		return 0
	}
	return s.Lines[len(s.Lines)-1].Num
}

// Indent returns the leading whitespace of the statement's code.
func (s Statement) Indent() string {
	return indentOf(s.Code)
}

// IsBlank reports whether the statement has neither code nor comments.
func (s Statement) IsBlank() bool {
	return strings.TrimSpace(s.Code) == "" && len(s.Comments) == 0
}

// IsCommentOnly reports whether the statement carries comments but no code.
func (s Statement) IsCommentOnly() bool {
	return strings.TrimSpace(s.Code) == "" && len(s.Comments) > 0
}

// Render converts the statement back to output lines. The comment anchored
// to the statement's last physical line stays inline; comments collected
// from earlier (skipped or continued) lines are re-emitted after it, each on
// its own line at the statement's indentation.
func (s Statement) Render() []source.Line {
	if len(s.Comments) == 0 {
		return []source.Line{{Num: s.StartLine(), Text: s.Code}}
	}

	// Комментарий последней физической строки остаётся на строке кода
	inline := -1
	last := len(s.Comments) - 1
	if s.Comments[last].Line == s.EndLine() {
		inline = last
	}

	text := s.Code
	if inline >= 0 {
		text += s.Comments[inline].Text
	}
	out := []source.Line{{Num: s.StartLine(), Text: text}}
	indent := s.Indent()
	for i, c := range s.Comments {
		if i == inline {
			continue
		}
		out = append(out, source.Line{Num: c.Line, Text: indent + c.Text})
	}
	return out
}

// RenderAll renders a statement stream to output lines.
func RenderAll(stmts []Statement) []source.Line {
	var out []source.Line
	for _, st := range stmts {
		out = append(out, st.Render()...)
	}
	return out
}

func indentOf(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
