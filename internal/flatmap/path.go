package flatmap

import "strings"

// Separator joins tag segments.
const Separator = "."

// Nested returns the tag of segment below parent.
func Nested(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + Separator + segment
}

// PathIndex records every tag that has a value at or below it.
type PathIndex struct {
	paths map[string]struct{}
}

// NewPathIndex indexes the keys of m. For key "a.b.c" the tags "a", "a.b" and
// "a.b.c" are covered; the root tag "" is covered when m is not empty.
func NewPathIndex(m *Map) PathIndex {
	paths := make(map[string]struct{}, m.Len()*2)
	for k := range m.All() {
		paths[""] = struct{}{}
		paths[k] = struct{}{}
		rest := k
		for {
			i := strings.LastIndex(rest, Separator)
			if i < 0 {
				break
			}
			rest = rest[:i]
			if _, seen := paths[rest]; seen {
				break
			}
			paths[rest] = struct{}{}
		}
	}
	return PathIndex{paths: paths}
}

// Covers reports whether some key equals tag or starts with tag + ".".
func (p PathIndex) Covers(tag string) bool {
	_, ok := p.paths[tag]
	return ok
}

// Children returns the distinct first segments found directly below tag, in
// key order.
func Children(m *Map, tag string) []string {
	prefix := tag
	if prefix != "" {
		prefix += Separator
	}
	seen := make(map[string]struct{})
	var out []string
	for k := range m.All() {
		if !strings.HasPrefix(k, prefix) || len(k) == len(prefix) {
			continue
		}
		seg := k[len(prefix):]
		if i := strings.Index(seg, Separator); i >= 0 {
			seg = seg[:i]
		}
		if _, dup := seen[seg]; dup {
			continue
		}
		seen[seg] = struct{}{}
		out = append(out, seg)
	}
	return out
}
