package stmt

import (
	"strings"

	"f90norm/internal/scan"
)

// Decl is a statement classified as a type declaration, cut into raw parts.
// Head covers the keyword and the optional kind/length specifier as written;
// Attrs is the raw attribute text between Head and "::" (leading comma
// included); Entities is whatever declares the names.
type Decl struct {
	Indent   string
	Keyword  string // canonical lower-case keyword ("integer", "double precision", ...)
	Head     string // keyword + specifier, original spelling
	Star     bool   // legacy star-length specifier (integer*4, character*(*))
	Attrs    string
	Entities string
	HasSep   bool // "::" already present
}

var procPrefixes = map[string]bool{
	"pure":      true,
	"elemental": true,
	"impure":    true,
	"recursive": true,
	"module":    true,
}

// MatchDecl classifies code (comment already removed) as a type-declaration
// statement. Both separated ("integer :: i") and unseparated ("integer i")
// forms match; HasSep tells them apart. Lines that merely share a prefix do
// not match: procedure headers ("real function f"), derived-type definition
// headers ("type point"), select-type guards ("type is (integer)"),
// assignments to keyword-named arrays ("real(i) = 1").
func MatchDecl(code string) (Decl, bool) {
	indent := indentOf(code)
	body := code[len(indent):]

	keyword, kwLen := matchTypeKeyword(body)
	if keyword == "" {
		return Decl{}, false
	}

	specLen, star := matchSpecifier(body[kwLen:])
	head := body[:kwLen+specLen]
	tail := body[kwLen+specLen:]
	tailTrim := strings.TrimLeft(tail, " \t")

	d := Decl{Indent: indent, Keyword: keyword, Head: head, Star: star}

	// type/class без спецификатора вида — определение типа или guard,
	// объявлением не считается (кроме формы с явным "::")
	if (keyword == "type" || keyword == "class") && specLen == 0 && !strings.HasPrefix(tailTrim, "::") {
		return Decl{}, false
	}

	switch {
	case strings.HasPrefix(tailTrim, "::"):
		d.HasSep = true
		d.Entities = tailTrim[2:]
		return d, true
	case strings.HasPrefix(tailTrim, ","):
		// attribute form is only a declaration with an explicit separator
		sep := scan.IndexUnquoted(tail, "::")
		if sep < 0 {
			return Decl{}, false
		}
		d.HasSep = true
		d.Attrs = tail[:sep]
		d.Entities = tail[sep+2:]
		return d, true
	case tailTrim == "":
		return Decl{}, false
	case isIdentStart(tailTrim[0]):
		if isProcHeaderTail(tailTrim) {
			return Decl{}, false
		}
		d.Entities = tail
		return d, true
	default:
		return Decl{}, false
	}
}

// Colonize inserts the missing "::" separator: "integer i, j" becomes
// "integer :: i, j", with exactly one space on each side. Already-separated
// declarations, legacy star-length forms and non-declarations come back
// unchanged, so the transform is idempotent and safe to run blindly.
func Colonize(code string) string {
	d, ok := MatchDecl(code)
	if !ok || d.HasSep || d.Star {
		return code
	}
	return d.Indent + d.Head + " :: " + strings.TrimLeft(d.Entities, " \t")
}

// SuspectStatementFunction reports the ambiguous shape "keyword(args) = expr"
// — an assignment to an array or statement function whose name collides with
// a type keyword. MatchDecl rejects it; callers may want to warn, because
// the author more likely meant a declaration with a typo.
func SuspectStatementFunction(code string) bool {
	body := strings.TrimLeft(code, " \t")
	_, kwLen := matchTypeKeyword(body)
	if kwLen == 0 {
		return false
	}
	specLen, star := matchSpecifier(body[kwLen:])
	if specLen == 0 || star {
		return false
	}
	tail := strings.TrimLeft(body[kwLen+specLen:], " \t")
	return strings.HasPrefix(tail, "=") && !strings.HasPrefix(tail, "==")
}

// matchTypeKeyword matches a leading type keyword, case-insensitively, and
// returns its canonical lower-case form plus the matched raw length.
func matchTypeKeyword(body string) (string, int) {
	word, _ := CutWord(body)
	if word == "" {
		return "", 0
	}
	switch strings.ToLower(word) {
	case "integer", "real", "complex", "logical", "character", "type", "class":
		return strings.ToLower(word), len(word)
	case "double":
		rest := body[len(word):]
		ws := len(rest) - len(strings.TrimLeft(rest, " \t"))
		if ws == 0 {
			return "", 0
		}
		second, _ := CutWord(rest[ws:])
		if strings.EqualFold(second, "precision") {
			return "double precision", len(word) + ws + len(second)
		}
	}
	return "", 0
}

// matchSpecifier consumes an optional kind/length specifier after the
// keyword: a parenthesized group "(kind=8)" or the legacy star form "*8" /
// "*(*)". Returns consumed length (0 when absent) and whether it was the
// star form.
func matchSpecifier(rest string) (int, bool) {
	i := skipBlanks(rest, 0)
	if i >= len(rest) {
		return 0, false
	}
	switch rest[i] {
	case '(':
		n := scan.CloseParen(rest[i:])
		if n < 0 {
			return 0, false
		}
		return i + n, false
	case '*':
		j := skipBlanks(rest, i+1)
		if j < len(rest) && rest[j] == '(' {
			n := scan.CloseParen(rest[j:])
			if n < 0 {
				return 0, false
			}
			return j + n, true
		}
		k := j
		for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
			k++
		}
		if k == j {
			return 0, false
		}
		return k, true
	default:
		return 0, false
	}
}

// isProcHeaderTail reports whether text (already past the type prefix) leads
// into a function or subroutine header, allowing prefix keywords like pure
// or recursive in between.
func isProcHeaderTail(text string) bool {
	rest := text
	for {
		word, after := CutWord(rest)
		if word == "" {
			return false
		}
		switch lw := strings.ToLower(word); {
		case lw == "function" || lw == "subroutine":
			return true
		case procPrefixes[lw]:
			rest = strings.TrimLeft(after, " \t")
		default:
			return false
		}
	}
}

// CutWord splits an identifier-shaped word off the front of s.
func CutWord(s string) (word, rest string) {
	if s == "" || !isIdentStart(s[0]) {
		return "", s
	}
	i := 1
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || b == '_' || b >= '0' && b <= '9'
}
