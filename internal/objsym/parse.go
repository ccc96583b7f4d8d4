package objsym

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse reads "nm --defined-only" output, one symbol per line, in either
// the plain form "value type name" or the -A form "object:value type name"
// (archive members read "archive.a:member.o:value type name"). object names
// the input for lines that carry no prefix of their own. Undefined entries,
// compiler-generated helpers and names that demangle to nothing are
// dropped.
func Parse(r io.Reader, object string) ([]Symbol, error) {
	var syms []Symbol
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if sym, ok := parseLine(sc.Text(), object); ok {
			syms = append(syms, sym)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read nm output: %w", err)
	}
	return syms, nil
}

func parseLine(line, object string) (Symbol, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields[1]) != 1 {
		return Symbol{}, false
	}

	// с ключом -A nm сам подписывает каждую строку именем объекта
	addr := fields[0]
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		object, addr = addr[:i], addr[i+1:]
	}
	if !isHex(addr) {
		return Symbol{}, false
	}

	typ := fields[1][0]
	switch typ {
	case 'U', 'w', 'v':
		return Symbol{}, false // ссылка, не определение
	}

	raw := fields[2]
	if generated(raw) {
		return Symbol{}, false
	}
	name := Demangle(raw)
	if name == "" {
		return Symbol{}, false
	}
	return Symbol{Object: object, Address: addr, Type: typ, Raw: raw, Name: name}, true
}

// isHex accepts the nm value column: hex digits, or nothing at all when the
// object prefix stands alone.
func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' {
			continue
		}
		return false
	}
	return true
}

// ObjectSymbols is the per-object view of a listing.
type ObjectSymbols struct {
	Object  string
	Symbols []Symbol
}

// ByObject buckets symbols per object, keeping objects in order of first
// appearance and symbols in listing order within each.
func ByObject(syms []Symbol) []ObjectSymbols {
	index := make(map[string]int)
	var out []ObjectSymbols
	for _, s := range syms {
		i, ok := index[s.Object]
		if !ok {
			i = len(out)
			index[s.Object] = i
			out = append(out, ObjectSymbols{Object: s.Object})
		}
		out[i].Symbols = append(out[i].Symbols, s)
	}
	return out
}
