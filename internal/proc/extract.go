package proc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"f90norm/internal/scan"
	"f90norm/internal/stmt"
)

var typeKeywords = map[string]bool{
	"integer": true, "real": true, "complex": true, "logical": true,
	"character": true, "type": true, "class": true,
}

var prefixKeywords = map[string]bool{
	"pure": true, "elemental": true, "impure": true,
	"recursive": true, "module": true,
}

type frame struct {
	kind Kind
	name string // as written
	line uint32
}

type endStmt struct {
	hasKind bool
	kind    Kind
	name    string
}

// Extract walks comment-stripped logical statements and returns every
// function, subroutine and program unit, ordered by start line. Headers
// inside interface blocks are signatures, not definitions, and are skipped.
// Mismatched or unclosed boundaries produce a *BoundaryError.
func Extract(stmts []stmt.Statement) ([]Unit, error) {
	var (
		stack      []frame
		interfaces []uint32 // start lines of open interface blocks
		units      []Unit
	)

	for _, st := range stmts {
		code := st.Code
		if strings.TrimSpace(code) == "" {
			continue
		}

		if stmt.IsInterfaceStart(code) {
			interfaces = append(interfaces, st.StartLine())
			continue
		}
		if stmt.IsInterfaceEnd(code) {
			if len(interfaces) == 0 {
				return nil, &BoundaryError{
					Kind: BoundaryUnexpectedEnd,
					Line: st.StartLine(),
					Msg:  "end interface without an open interface block",
				}
			}
			interfaces = interfaces[:len(interfaces)-1]
			continue
		}
		if len(interfaces) > 0 {
			// внутри interface — только сигнатуры, пропускаем всё
			continue
		}

		if name, kind, ok := parseHeader(code); ok {
			stack = append(stack, frame{kind: kind, name: name, line: st.StartLine()})
			continue
		}

		end, ok := parseEnd(code)
		if !ok {
			continue
		}
		if len(stack) == 0 {
			if end.hasKind {
				return nil, &BoundaryError{
					Kind: BoundaryUnexpectedEnd,
					Line: st.StartLine(),
					Msg:  fmt.Sprintf("end %s with no open %s", end.kind, end.kind),
				}
			}
			// голый end закрывает модуль или что-то, что мы не отслеживаем
			continue
		}

		top := stack[len(stack)-1]
		if end.hasKind && end.kind != top.kind {
			return nil, &BoundaryError{
				Kind: BoundaryEndMismatch,
				Line: st.StartLine(),
				Msg: fmt.Sprintf("end %s does not close %s %q opened at line %d",
					end.kind, top.kind, top.name, top.line),
			}
		}
		if end.name != "" && !strings.EqualFold(end.name, top.name) {
			return nil, &BoundaryError{
				Kind: BoundaryEndMismatch,
				Line: st.StartLine(),
				Msg: fmt.Sprintf("end name %q does not match %s %q opened at line %d",
					end.name, top.kind, top.name, top.line),
				Hint: closestOpenName(end.name, stack),
			}
		}

		stack = stack[:len(stack)-1]
		units = append(units, Unit{
			Name:  top.name,
			Kind:  top.kind,
			Start: top.line,
			End:   st.EndLine(),
			Depth: len(stack),
		})
	}

	if len(interfaces) > 0 {
		return nil, &BoundaryError{
			Kind: BoundaryInterfaceUnclosed,
			Line: interfaces[len(interfaces)-1],
			Msg:  "interface block is never closed",
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, &BoundaryError{
			Kind: BoundaryUnclosed,
			Line: top.line,
			Msg:  fmt.Sprintf("%s %q is never closed", top.kind, top.name),
		}
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Start < units[j].Start })
	return units, nil
}

// IsHeader reports whether code opens a procedure or program unit.
func IsHeader(code string) bool {
	_, _, ok := parseHeader(code)
	return ok
}

// parseHeader recognizes procedure and program headers: an optional run of
// prefix keywords (pure, recursive, ...) and type-spec prefixes
// ("integer(kind=8)", "double precision", "character*8") before function or
// subroutine, or a leading program keyword. Anything else is not a header,
// in particular "call my_subroutine(x)" and keyword-named variables.
func parseHeader(code string) (name string, kind Kind, ok bool) {
	rest := strings.TrimLeft(code, " \t")
	first := true
	for {
		word, after := stmt.CutWord(rest)
		if word == "" {
			return "", 0, false
		}
		lw := strings.ToLower(word)
		switch {
		case lw == "function" || lw == "subroutine":
			name, _ := stmt.CutWord(strings.TrimLeft(after, " \t"))
			if name == "" {
				return "", 0, false
			}
			if lw == "function" {
				return name, KindFunction, true
			}
			return name, KindSubroutine, true
		case lw == "program" && first:
			name, _ := stmt.CutWord(strings.TrimLeft(after, " \t"))
			if name == "" {
				return "", 0, false
			}
			return name, KindProgram, true
		case lw == "end":
			return "", 0, false
		case prefixKeywords[lw]:
			rest = strings.TrimLeft(after, " \t")
		case lw == "double":
			second, tail := stmt.CutWord(strings.TrimLeft(after, " \t"))
			if !strings.EqualFold(second, "precision") {
				return "", 0, false
			}
			rest = strings.TrimLeft(tail, " \t")
		case typeKeywords[lw]:
			rest = strings.TrimLeft(skipKindSpec(after), " \t")
		default:
			return "", 0, false
		}
		first = false
	}
}

// skipKindSpec consumes an optional kind/length specifier hanging off a type
// prefix: "(kind=8)", "*8", "*(*)".
func skipKindSpec(s string) string {
	trimmed := strings.TrimLeft(s, " \t")
	switch {
	case strings.HasPrefix(trimmed, "("):
		if n := scan.CloseParen(trimmed); n > 0 {
			return trimmed[n:]
		}
		return s
	case strings.HasPrefix(trimmed, "*"):
		rest := strings.TrimLeft(trimmed[1:], " \t")
		if strings.HasPrefix(rest, "(") {
			if n := scan.CloseParen(rest); n > 0 {
				return rest[n:]
			}
			return s
		}
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return s
		}
		return rest[i:]
	default:
		return s
	}
}

// parseEnd recognizes end statements for the kinds we track. "end if",
// "end do", "end module" and friends report ok=false and are ignored by the
// extractor; a bare "end" closes the innermost open frame.
func parseEnd(code string) (endStmt, bool) {
	word, after := stmt.CutWord(strings.TrimLeft(code, " \t"))
	if !strings.EqualFold(word, "end") {
		return endStmt{}, false
	}
	second, tail := stmt.CutWord(strings.TrimLeft(after, " \t"))
	if second == "" {
		return endStmt{}, true
	}
	var kind Kind
	switch strings.ToLower(second) {
	case "function":
		kind = KindFunction
	case "subroutine":
		kind = KindSubroutine
	case "program":
		kind = KindProgram
	default:
		return endStmt{}, false
	}
	name, _ := stmt.CutWord(strings.TrimLeft(tail, " \t"))
	return endStmt{hasKind: true, kind: kind, name: name}, true
}

// closestOpenName picks the open frame name nearest to the mistyped end
// name, for a "did you mean" hint. Далёкие имена не предлагаем.
func closestOpenName(written string, stack []frame) string {
	best := ""
	bestDist := -1
	for _, fr := range stack {
		d := edlib.LevenshteinDistance(strings.ToLower(written), strings.ToLower(fr.name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = fr.name, d
		}
	}
	if best == "" || bestDist > 2 {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best)
}
