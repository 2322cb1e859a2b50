// Package idmerge computes collision-free renamings of ids imported into
// an existing id namespace.
package idmerge

import (
	"strconv"
	"strings"
)

// Prefix returns id without its trailing digits.
func Prefix(id string) string {
	return strings.TrimRight(id, "0123456789")
}

// Merge returns a renaming for every id in imported.
//
// Ids absent from existing map to themselves. A colliding id maps to its
// prefix followed by the smallest positive number giving a name that is
// neither in existing, nor in imported, nor generated earlier in the same
// merge. An id listed several times in imported maps to the same name each
// time. The result depends only on the order of imported.
func Merge(existing, imported []string) map[string]string {
	taken := make(map[string]bool, len(existing)+len(imported))
	dest := make(map[string]bool, len(existing))
	for _, id := range existing {
		taken[id] = true
		dest[id] = true
	}
	for _, id := range imported {
		taken[id] = true
	}

	out := make(map[string]string, len(imported))
	for _, id := range imported {
		if _, done := out[id]; done {
			continue
		}
		if !dest[id] {
			out[id] = id
			continue
		}
		prefix := Prefix(id)
		for n := 1; ; n++ {
			candidate := prefix + strconv.Itoa(n)
			if !taken[candidate] {
				taken[candidate] = true
				out[id] = candidate
				break
			}
		}
	}
	return out
}
