package common

import "sort"

// IntSet is an unordered set of integers. The zero value is not usable, use
// NewIntSet.
type IntSet struct {
	items map[int]struct{}
}

// NewIntSet returns a set holding the given values.
func NewIntSet(values ...int) *IntSet {
	s := &IntSet{items: make(map[int]struct{}, len(values))}
	s.AddAll(values)
	return s
}

// Add inserts v and reports whether it was new.
func (s *IntSet) Add(v int) bool {
	if _, ok := s.items[v]; ok {
		return false
	}
	s.items[v] = struct{}{}
	return true
}

// AddAll inserts every value and returns how many were new.
func (s *IntSet) AddAll(values []int) int {
	added := 0
	for _, v := range values {
		if s.Add(v) {
			added++
		}
	}
	return added
}

// Contains ...
func (s *IntSet) Contains(v int) bool {
	_, ok := s.items[v]
	return ok
}

// Len ...
func (s *IntSet) Len() int {
	return len(s.items)
}

// Slice returns the members in ascending order. It never returns nil.
func (s *IntSet) Slice() []int {
	res := make([]int, 0, len(s.items))
	for v := range s.items {
		res = append(res, v)
	}
	sort.Ints(res)
	return res
}

// Difference returns the members of s that are not in other, in ascending
// order.
func (s *IntSet) Difference(other *IntSet) []int {
	res := []int{}
	for v := range s.items {
		if !other.Contains(v) {
			res = append(res, v)
		}
	}
	sort.Ints(res)
	return res
}

// IsSubset reports whether every member of s is in other.
func (s *IntSet) IsSubset(other *IntSet) bool {
	if s.Len() > other.Len() {
		return false
	}
	for v := range s.items {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}
