package stmt

import (
	"strings"

	"f90norm/internal/scan"
	"f90norm/internal/source"
)

// Split cuts a logical statement at unquoted semicolons into fragment
// statements, one per output line. The first fragment keeps the original
// text; later fragments are re-indented to the statement's indentation.
// Empty fragments are dropped. The statement's comments ride on the last
// fragment only. A statement without semicolons comes back unchanged.
func Split(st Statement) []Statement {
	parts := scan.SplitUnquoted(st.Code, ';')
	if len(parts) == 1 {
		return []Statement{st}
	}

	indent := st.Indent()
	var frags []Statement
	lastKept := -1
	for idx, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		code := part
		if idx > 0 {
			code = indent + strings.TrimLeft(part, " \t")
		}
		frags = append(frags, Statement{Code: code, Lines: st.Lines})
		lastKept = idx
	}

	if len(frags) == 0 {
		// Строка из одних точек с запятой: остаются только комментарии
		if len(st.Comments) == 0 {
			return nil
		}
		return []Statement{{Code: indent, Lines: st.Lines, Comments: st.Comments}}
	}

	last := &frags[len(frags)-1]
	last.Comments = st.Comments
	switch {
	case !hasInlineComment(st):
		last.Code = strings.TrimRight(last.Code, " \t")
	case lastKept != len(parts)-1:
		// комментарий переезжает с отброшенного пустого хвоста;
		// один пробел, чтобы он не прилип к коду
		last.Code = strings.TrimRight(last.Code, " \t") + " "
	}
	for i := range frags[:len(frags)-1] {
		frags[i].Code = strings.TrimRight(frags[i].Code, " \t")
	}
	return frags
}

// hasInlineComment reports whether the statement's final comment sits on its
// last physical line, so rendering will keep it on the code line.
func hasInlineComment(st Statement) bool {
	if len(st.Comments) == 0 {
		return false
	}
	return st.Comments[len(st.Comments)-1].Line == st.EndLine()
}

// SplitStatements renders a logical statement directly to output lines,
// fragments cut at unquoted semicolons. Standalone surface for callers that
// do not run the full pipeline.
func SplitStatements(st Statement) []source.Line {
	var out []source.Line
	for _, frag := range Split(st) {
		out = append(out, frag.Render()...)
	}
	return out
}
