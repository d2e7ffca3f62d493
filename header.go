package ratelimits

import (
	"sort"
	"strings"
)

// Map is a HeaderSet backed by a plain map. Keys are visited in sorted order,
// so names that differ only in case resolve the same way on every call.
type Map map[string]string

// Range implements HeaderSet.
func (m Map) Range(fn func(name, value string) bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !fn(k, m[k]) {
			return
		}
	}
}

// index is the lowercased, first-value-wins view of a HeaderSet.
type index map[string]string

func newIndex(h HeaderSet) index {
	idx := make(index)
	if h == nil {
		return idx
	}
	h.Range(func(name, value string) bool {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return true
		}
		if _, seen := idx[key]; !seen {
			idx[key] = strings.TrimSpace(value)
		}
		return true
	})
	return idx
}

func (idx index) get(name string) (string, bool) {
	v, ok := idx[name]
	return v, ok
}

// hasAny reports whether at least one of names is present.
func (idx index) hasAny(names ...string) bool {
	for _, name := range names {
		if _, ok := idx[name]; ok {
			return true
		}
	}
	return false
}

// hasPrefix reports whether any header name starts with one of prefixes.
func (idx index) hasPrefix(prefixes ...string) bool {
	for name := range idx {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
	}
	return false
}
