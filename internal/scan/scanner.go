// Package scan implements the quote-aware lexical primitive shared by every
// transform that must not act inside Fortran character literals.
//
// Назначение: единый конечный автомат по кавычкам (NORMAL / SINGLE / DOUBLE),
// чтобы логика кавычек не дублировалась по компонентам.
// Не делает: токенизации, разбора грамматики, работы с многострочными
// литералами (в свободной форме строка не переживает конец строки без &).
package scan

import "strings"

type quoteState uint8

const (
	stateNormal quoteState = iota
	stateSingle
	stateDouble
)

// walkUnquoted calls visit for every byte that lies outside a quoted string.
// A quote of the current kind doubled back-to-back is an escaped literal
// quote and keeps the string open. visit returning true stops the walk.
func walkUnquoted(text string, visit func(i int, b byte) bool) {
	st := stateNormal
	for i := 0; i < len(text); i++ {
		b := text[i]
		switch st {
		case stateSingle:
			if b == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++ // '' внутри строки — экранированная кавычка
					continue
				}
				st = stateNormal
			}
		case stateDouble:
			if b == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					i++
					continue
				}
				st = stateNormal
			}
		default:
			switch b {
			case '\'':
				st = stateSingle
			case '"':
				st = stateDouble
			default:
				if visit(i, b) {
					return
				}
			}
		}
	}
}

// CommentIndex returns the byte index of the first '!' outside any quoted
// string, or -1 when the line carries no comment. An unterminated string
// swallows the rest of the line: that is how a continued character literal
// looks mid-statement, not an error.
func CommentIndex(line string) int {
	idx := -1
	walkUnquoted(line, func(i int, b byte) bool {
		if b == '!' {
			idx = i
			return true
		}
		return false
	})
	return idx
}

// SplitCodeComment splits a line at its first unquoted comment marker. The
// comment substring includes the marker; an empty comment means none was
// found. code + comment reconstructs the line byte for byte.
func SplitCodeComment(line string) (code, comment string) {
	idx := CommentIndex(line)
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx:]
}

// SplitUnquoted splits text on every occurrence of sep outside quoted
// strings. Adjacent separators produce empty fragments; the caller decides
// what to do with them.
func SplitUnquoted(text string, sep byte) []string {
	var parts []string
	last := 0
	walkUnquoted(text, func(i int, b byte) bool {
		if b == sep {
			parts = append(parts, text[last:i])
			last = i + 1
		}
		return false
	})
	return append(parts, text[last:])
}

// SplitTopLevel splits text on sep occurrences that lie outside quoted
// strings and outside any parenthesized group. Used for entity lists, where
// commas inside dimension(2,3) or kind=selected_int_kind(15) must not split.
func SplitTopLevel(text string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	walkUnquoted(text, func(i int, b byte) bool {
		switch b {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, text[last:i])
				last = i + 1
			}
		}
		return false
	})
	return append(parts, text[last:])
}

// CloseParen returns the length of the balanced parenthesized group opening
// at text[0], quote-aware, or -1 when text does not start with '(' or the
// group never closes on this line.
func CloseParen(text string) int {
	if len(text) == 0 || text[0] != '(' {
		return -1
	}
	depth := 0
	end := -1
	walkUnquoted(text, func(i int, b byte) bool {
		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i + 1
				return true
			}
		}
		return false
	})
	return end
}

// IndexUnquoted returns the index of the first occurrence of substr that
// starts outside any quoted string, or -1.
func IndexUnquoted(text, substr string) int {
	if substr == "" {
		return 0
	}
	idx := -1
	walkUnquoted(text, func(i int, b byte) bool {
		if b == substr[0] && strings.HasPrefix(text[i:], substr) {
			idx = i
			return true
		}
		return false
	})
	return idx
}
