// Package linkset is a two-way many-to-many index of int64 ids used by the
// in-memory stores. Both directions are kept consistent on every mutation.
package linkset

import (
	"maps"
	"slices"
)

type set map[int64]struct{}

// Links relates left ids to right ids (for example album -> artist).
// The zero value is not usable; call New.
type Links struct {
	fwd map[int64]set
	rev map[int64]set
}

func New() *Links {
	return &Links{fwd: map[int64]set{}, rev: map[int64]set{}}
}

// Add links left to right. It reports whether the pair was new.
func (l *Links) Add(left, right int64) bool {
	if l.Has(left, right) {
		return false
	}
	put(l.fwd, left, right)
	put(l.rev, right, left)
	return true
}

// Remove unlinks the pair. It reports whether the pair existed.
func (l *Links) Remove(left, right int64) bool {
	if !l.Has(left, right) {
		return false
	}
	drop(l.fwd, left, right)
	drop(l.rev, right, left)
	return true
}

func (l *Links) Has(left, right int64) bool {
	_, ok := l.fwd[left][right]
	return ok
}

// Right returns the ids linked to left in ascending order.
func (l *Links) Right(left int64) []int64 {
	return sorted(l.fwd[left])
}

// Left returns the ids linked to right in ascending order.
func (l *Links) Left(right int64) []int64 {
	return sorted(l.rev[right])
}

// Replace makes rights the exact link set of left.
func (l *Links) Replace(left int64, rights []int64) {
	l.DropLeft(left)
	for _, r := range rights {
		l.Add(left, r)
	}
}

// DropLeft removes every link of left.
func (l *Links) DropLeft(left int64) {
	for r := range l.fwd[left] {
		drop(l.rev, r, left)
	}
	delete(l.fwd, left)
}

// DropRight removes every link of right.
func (l *Links) DropRight(right int64) {
	for lf := range l.rev[right] {
		drop(l.fwd, lf, right)
	}
	delete(l.rev, right)
}

// Clone returns a deep copy.
func (l *Links) Clone() *Links {
	return &Links{fwd: cloneIndex(l.fwd), rev: cloneIndex(l.rev)}
}

func put(idx map[int64]set, k, v int64) {
	s, ok := idx[k]
	if !ok {
		s = set{}
		idx[k] = s
	}
	s[v] = struct{}{}
}

func drop(idx map[int64]set, k, v int64) {
	s, ok := idx[k]
	if !ok {
		return
	}
	delete(s, v)
	if len(s) == 0 {
		delete(idx, k)
	}
}

func sorted(s set) []int64 {
	out := slices.Collect(maps.Keys(s))
	slices.Sort(out)
	if out == nil {
		out = []int64{}
	}
	return out
}

func cloneIndex(idx map[int64]set) map[int64]set {
	out := make(map[int64]set, len(idx))
	for k, s := range idx {
		out[k] = maps.Clone(s)
	}
	return out
}
