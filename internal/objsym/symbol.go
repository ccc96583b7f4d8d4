// Package objsym reads object-file symbol tables out of nm listings and
// recovers the Fortran names behind gfortran's mangling. Everything here is
// pure text processing; running nm itself is the caller's business.
package objsym

import "strings"

// Symbol is one defined symbol from an object-file listing.
type Symbol struct {
	Object  string // object or archive member it came from
	Address string // value column, kept as printed
	Type    byte   // nm type letter
	Raw     string // name as the compiler emitted it
	Name    string // demangled Fortran name
}

// Demangle recovers the Fortran name from a gfortran-mangled symbol. Module
// entities ("__fluxes_MOD_compute") come back as "fluxes::compute"; plain
// externals lose their trailing underscores, so "compute_" and "my_sub__"
// both read naturally again. Anything else is returned unchanged.
func Demangle(raw string) string {
	if mod, entity, ok := splitModule(raw); ok {
		return mod + "::" + entity
	}
	return strings.TrimRight(raw, "_")
}

// splitModule cuts a "__module_MOD_entity" symbol into its parts.
func splitModule(raw string) (mod, entity string, ok bool) {
	if !strings.HasPrefix(raw, "__") {
		return "", "", false
	}
	i := strings.Index(raw, "_MOD_")
	if i < 3 {
		return "", "", false
	}
	return raw[2:i], raw[i+len("_MOD_"):], true
}

// generated reports compiler-emitted support symbols no Fortran author
// wrote: derived-type vtables and init/copy/final helpers inside modules,
// and global constructor glue.
func generated(raw string) bool {
	if strings.HasPrefix(raw, "_GLOBAL__") {
		return true
	}
	if _, entity, ok := splitModule(raw); ok {
		return strings.HasPrefix(entity, "__")
	}
	return false
}
