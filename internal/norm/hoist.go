package norm

import (
	"f90norm/internal/proc"
	"f90norm/internal/stmt"
)

type hoistClass uint8

const (
	classNeutral hoistClass = iota // blank, comment-only, use, implicit
	classDecl
	classExec
)

// HoistDeclarations reorders statements inside each unit body so that all
// declarations precede all executable statements. Order is preserved within
// each class; neutral statements come first. The region a body is hoisted in
// ends at its contains statement, and the spans of nested child units are
// skipped as opaque blocks even when no contains introduces them, so nothing
// ever crosses a unit boundary. The statement multiset of every body is
// preserved and a second pass is a no-op.
func HoistDeclarations(stmts []stmt.Statement, units []proc.Unit) []stmt.Statement {
	out := make([]stmt.Statement, len(stmts))
	copy(out, stmts)
	for _, u := range units {
		lo := headerIndex(out, u)
		hi := endIndex(out, u)
		if lo < 0 || hi < 0 || hi <= lo+1 {
			continue
		}
		hoistBody(out[lo+1:hi], childrenOf(u, units))
	}
	return out
}

// childrenOf returns the units nested directly inside u; their bodies are
// hoisted in their own passes and must stay intact during u's.
func childrenOf(u proc.Unit, units []proc.Unit) []proc.Unit {
	var children []proc.Unit
	for _, c := range units {
		if u.Contains(c) && c.Depth == u.Depth+1 {
			children = append(children, c)
		}
	}
	return children
}

// headerIndex locates the statement opening the unit. When a semicolon split
// left several statements on the header's line, the one that actually parses
// as a header wins.
func headerIndex(stmts []stmt.Statement, u proc.Unit) int {
	for i, st := range stmts {
		if st.StartLine() != u.Start {
			continue
		}
		if proc.IsHeader(st.Code) {
			return i
		}
	}
	for i, st := range stmts {
		if st.StartLine() == u.Start {
			return i
		}
	}
	return -1
}

func endIndex(stmts []stmt.Statement, u proc.Unit) int {
	// Последний statement на строке end — сам end
	for i := len(stmts) - 1; i >= 0; i-- {
		if stmts[i].EndLine() == u.End {
			return i
		}
	}
	return -1
}

// hoistBody partitions one body in place: neutral, then declarations, then
// executable statements. Derived-type definitions and interface blocks move
// as single declaration-class groups so their inner lines stay together; a
// child unit's span moves as a single executable-class group, untouched
// inside. Everything from a contains statement onward is left as is.
func hoistBody(body []stmt.Statement, children []proc.Unit) {
	head := body[:containsCut(body)]
	var neutral, decls, execs []stmt.Statement

	for i := 0; i < len(head); {
		st := head[i]
		j := i + 1
		class := classify(st)
		switch child, nested := childStart(children, st); {
		case nested:
			j = spanEnd(head, i, child)
			class = classExec
		case stmt.IsTypeDefStart(st.Code):
			j = blockEnd(head, i, stmt.IsTypeDefEnd)
			class = classDecl
		case stmt.IsInterfaceStart(st.Code):
			j = blockEnd(head, i, stmt.IsInterfaceEnd)
			class = classDecl
		}

		switch class {
		case classNeutral:
			neutral = append(neutral, head[i:j]...)
		case classDecl:
			decls = append(decls, head[i:j]...)
		default:
			execs = append(execs, head[i:j]...)
		}
		i = j
	}

	rebuilt := make([]stmt.Statement, 0, len(head))
	rebuilt = append(rebuilt, neutral...)
	rebuilt = append(rebuilt, decls...)
	rebuilt = append(rebuilt, execs...)
	copy(head, rebuilt)
}

// containsCut finds the index of the body's contains statement, skipping
// type definition blocks (type-bound procedure parts have their own
// contains) and interface blocks. Returns len(body) when there is none.
func containsCut(body []stmt.Statement) int {
	for i := 0; i < len(body); {
		switch {
		case stmt.IsContains(body[i].Code):
			return i
		case stmt.IsTypeDefStart(body[i].Code):
			i = blockEnd(body, i, stmt.IsTypeDefEnd)
		case stmt.IsInterfaceStart(body[i].Code):
			i = blockEnd(body, i, stmt.IsInterfaceEnd)
		default:
			i++
		}
	}
	return len(body)
}

// childStart reports the child unit whose header sits at st, if any.
func childStart(children []proc.Unit, st stmt.Statement) (proc.Unit, bool) {
	for _, c := range children {
		if st.StartLine() == c.Start {
			return c, true
		}
	}
	return proc.Unit{}, false
}

// spanEnd returns the index one past the statement closing the child span
// opened at start.
func spanEnd(body []stmt.Statement, start int, child proc.Unit) int {
	for i := start; i < len(body); i++ {
		if body[i].EndLine() >= child.End {
			return i + 1
		}
	}
	return len(body)
}

// blockEnd returns the index one past the statement closing the block opened
// at start. An unterminated block swallows the rest of the body rather than
// scrambling it.
func blockEnd(body []stmt.Statement, start int, isEnd func(string) bool) int {
	for i := start + 1; i < len(body); i++ {
		if isEnd(body[i].Code) {
			return i + 1
		}
	}
	return len(body)
}

func classify(st stmt.Statement) hoistClass {
	if st.IsBlank() || st.IsCommentOnly() {
		return classNeutral
	}
	if stmt.IsUse(st.Code) || stmt.IsImplicit(st.Code) {
		return classNeutral
	}
	if _, ok := stmt.MatchDecl(st.Code); ok {
		return classDecl
	}
	return classExec
}
