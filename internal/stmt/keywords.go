package stmt

import "strings"

// FirstWord returns the lower-cased first identifier word of code, or ""
// when code does not begin with one.
func FirstWord(code string) string {
	word, _ := CutWord(strings.TrimLeft(code, " \t"))
	return strings.ToLower(word)
}

// IsUse reports a use statement.
func IsUse(code string) bool {
	return FirstWord(code) == "use"
}

// IsImplicit reports an implicit statement (implicit none included).
func IsImplicit(code string) bool {
	return FirstWord(code) == "implicit"
}

// IsContains reports a bare contains statement.
func IsContains(code string) bool {
	word, rest := CutWord(strings.TrimLeft(code, " \t"))
	return strings.EqualFold(word, "contains") && strings.TrimSpace(rest) == ""
}

// IsInterfaceStart reports "interface ..." or "abstract interface".
func IsInterfaceStart(code string) bool {
	word, rest := CutWord(strings.TrimLeft(code, " \t"))
	if strings.EqualFold(word, "interface") {
		return true
	}
	if !strings.EqualFold(word, "abstract") {
		return false
	}
	second, _ := CutWord(strings.TrimLeft(rest, " \t"))
	return strings.EqualFold(second, "interface")
}

// IsInterfaceEnd reports "end interface [name]".
func IsInterfaceEnd(code string) bool {
	return isEndOf(code, "interface")
}

// IsTypeDefStart reports a derived-type definition header: "type point",
// "type :: point", "type, extends(shape) :: circle". Declarations with a
// parenthesized specifier ("type(point) p") and select-type guards
// ("type is (integer)") do not count.
func IsTypeDefStart(code string) bool {
	word, rest := CutWord(strings.TrimLeft(code, " \t"))
	if !strings.EqualFold(word, "type") {
		return false
	}
	restTrim := strings.TrimLeft(rest, " \t")
	switch {
	case restTrim == "":
		return false
	case restTrim[0] == '(':
		return false
	case strings.HasPrefix(restTrim, "::"):
		name, _ := CutWord(strings.TrimLeft(restTrim[2:], " \t"))
		return name != ""
	case restTrim[0] == ',':
		return true
	default:
		name, _ := CutWord(restTrim)
		if name == "" || strings.EqualFold(name, "is") {
			return false
		}
		return true
	}
}

// IsTypeDefEnd reports "end type [name]".
func IsTypeDefEnd(code string) bool {
	return isEndOf(code, "type")
}

func isEndOf(code, kind string) bool {
	word, rest := CutWord(strings.TrimLeft(code, " \t"))
	if !strings.EqualFold(word, "end") {
		return false
	}
	second, _ := CutWord(strings.TrimLeft(rest, " \t"))
	return strings.EqualFold(second, kind)
}
