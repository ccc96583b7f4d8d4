package objsym

import (
	"slices"
	"sort"
)

// Group is one externally visible name defined by several objects.
type Group struct {
	Name    string
	Objects []string
}

// Duplicates reports names defined in more than one object, the usual
// symptom of a routine pasted between source files. Only external symbols
// count: file-local (lowercase) entries cannot collide at link time, and
// common blocks ('C') legitimately appear in every object that declares
// them. Groups are ordered by object count, largest first, then by name;
// objects within a group keep their listing order.
func Duplicates(syms []Symbol) []Group {
	objects := make(map[string][]string)
	var names []string
	for _, s := range syms {
		if s.Type < 'A' || s.Type > 'Z' || s.Type == 'C' {
			continue
		}
		prev, seen := objects[s.Name]
		if !seen {
			names = append(names, s.Name)
		}
		if slices.Contains(prev, s.Object) {
			continue
		}
		objects[s.Name] = append(prev, s.Object)
	}

	var groups []Group
	for _, name := range names {
		if objs := objects[name]; len(objs) > 1 {
			groups = append(groups, Group{Name: name, Objects: objs})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Objects) != len(groups[j].Objects) {
			return len(groups[i].Objects) > len(groups[j].Objects)
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}
