package reference

import "strings"

// Authors is the optional author list of a paper. A paper whose author field
// was absent has Known == false, which is different from a known, empty list.
type Authors struct {
	Names []string `json:"names,omitempty"`
	Known bool     `json:"known"`
}

// SomeAuthors returns a known author list.
func SomeAuthors(names ...string) Authors {
	return Authors{Names: names, Known: true}
}

// NoAuthors returns the missing-author marker.
func NoAuthors() Authors {
	return Authors{}
}

// ParseAuthors splits a comma-separated author field.
//
// An empty field yields NoAuthors. Names are trimmed; empty names (e.g. from a
// trailing comma) are kept so the list mirrors the field, and skipped by the
// graph code.
func ParseAuthors(field string) Authors {
	if strings.TrimSpace(field) == "" {
		return NoAuthors()
	}
	parts := strings.Split(field, ",")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return SomeAuthors(names...)
}

// NonEmpty returns the names that are not blank.
func (a Authors) NonEmpty() []string {
	out := make([]string, 0, len(a.Names))
	for _, n := range a.Names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
