package norm

import (
	"sort"

	"f90norm/internal/proc"
	"f90norm/internal/stmt"
)

// InsertImplicitNone adds an "implicit none" statement to every unit body
// that lacks one. It goes after the last use statement of the leading use
// block, otherwise directly after the header. Indentation copies the first
// declaration of the body when present, else the header indent plus four
// spaces. Bodies that already carry any implicit statement are left alone,
// so a second pass changes nothing.
func InsertImplicitNone(stmts []stmt.Statement, units []proc.Unit) []stmt.Statement {
	out := make([]stmt.Statement, len(stmts))
	copy(out, stmts)

	// Вставки идут от конца файла к началу, чтобы не сдвигать индексы
	// ещё не обработанных юнитов
	order := make([]proc.Unit, len(units))
	copy(order, units)
	sort.Slice(order, func(i, j int) bool { return order[i].Start > order[j].Start })

	for _, u := range order {
		lo := headerIndex(out, u)
		hi := endIndex(out, u)
		if lo < 0 || hi < 0 || hi <= lo+1 {
			continue
		}
		body := out[lo+1 : hi]
		body = body[:containsCut(body)]
		if hasImplicit(body) {
			continue
		}
		at := lo + 1 + afterLeadingUses(body)
		ins := stmt.Synth(implicitIndent(out[lo], body) + "implicit none")
		out = append(out[:at], append([]stmt.Statement{ins}, out[at:]...)...)
	}
	return out
}

func hasImplicit(body []stmt.Statement) bool {
	for _, st := range body {
		if stmt.IsImplicit(st.Code) {
			return true
		}
	}
	return false
}

// afterLeadingUses returns the offset just past the last use statement of
// the leading use block. Blank and comment lines do not end the block but
// the insertion lands directly after the use itself.
func afterLeadingUses(body []stmt.Statement) int {
	at := 0
	for i, st := range body {
		switch {
		case st.IsBlank() || st.IsCommentOnly():
		case stmt.IsUse(st.Code):
			at = i + 1
		default:
			return at
		}
	}
	return at
}

func implicitIndent(header stmt.Statement, body []stmt.Statement) string {
	for _, st := range body {
		if stmt.IsTypeDefStart(st.Code) || stmt.IsInterfaceStart(st.Code) {
			// Сам блок — объявление; его отступ и есть образец
			return st.Indent()
		}
		if _, ok := stmt.MatchDecl(st.Code); ok {
			return st.Indent()
		}
	}
	return header.Indent() + "    "
}
