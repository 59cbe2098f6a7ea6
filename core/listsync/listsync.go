// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package listsync reconciles a cached ordered sequence with a freshly
// queried one using contiguous insert and remove runs.
//
// Both sequences are expected to come from the same backend ordering, so
// they agree except for localised insertions and removals. The algorithm
// walks both with two cursors. On a mismatch it looks for the cached element
// in the query within a bounded lookahead: if found, the query elements in
// between are one insertion run; otherwise the cached element, together with
// the following cached elements that are not found either, is one removal
// run. Elements common to both are never moved.
package listsync

// DefaultLookahead bounds how far ahead of the query cursor a cached element
// is searched for before it is treated as removed.
const DefaultLookahead = 512

// Op is the kind of an Edit.
type Op int

const (
	Remove Op = iota
	Insert
)

// String implements fmt.Stringer.
func (op Op) String() string {
	if op == Insert {
		return "insert"
	}
	return "remove"
}

// Edit is one contiguous run. Index addresses the sequence as mutated by the
// edits before it. For insertions QueryIndex is the position of the first
// inserted element in the query.
type Edit struct {
	Op         Op
	Index      int
	Count      int
	QueryIndex int
}

// Agent applies edits to the caller's sequence.
type Agent[T comparable] interface {
	// RemoveRange removes count elements starting at index.
	RemoveRange(index, count int)

	// InsertRange inserts query[queryIndex:queryIndex+count] at index.
	InsertRange(index, count int, query []T, queryIndex int)
}

// Diff computes the runs that transform cache into query. Elements are
// assumed unique within each sequence. A lookahead below one uses
// DefaultLookahead.
func Diff[T comparable](cache, query []T, lookahead int) []Edit {
	if lookahead < 1 {
		lookahead = DefaultLookahead
	}

	position := make(map[T]int, len(query))
	for i, v := range query {
		position[v] = i
	}
	// found reports whether v occurs in the query window starting at j.
	found := func(v T, j int) (int, bool) {
		p, ok := position[v]
		if !ok || p < j || p-j >= lookahead {
			return 0, false
		}
		return p, true
	}

	var edits []Edit
	// The mutated prefix always equals query[:j], so j is also the
	// position in the mutated sequence.
	i, j := 0, 0
	for i < len(cache) && j < len(query) {
		if cache[i] == query[j] {
			i++
			j++
			continue
		}
		if p, ok := found(cache[i], j); ok {
			edits = append(edits, Edit{Op: Insert, Index: j, Count: p - j, QueryIndex: j})
			j = p
			continue
		}
		k := i + 1
		for k < len(cache) {
			if _, ok := found(cache[k], j); ok {
				break
			}
			k++
		}
		edits = append(edits, Edit{Op: Remove, Index: j, Count: k - i})
		i = k
	}
	if i < len(cache) {
		edits = append(edits, Edit{Op: Remove, Index: j, Count: len(cache) - i})
	}
	if j < len(query) {
		edits = append(edits, Edit{Op: Insert, Index: j, Count: len(query) - j, QueryIndex: j})
	}
	return edits
}

// Synchronize applies the runs that transform cache into query through agent
// and returns the number of runs applied.
func Synchronize[T comparable](agent Agent[T], cache, query []T, lookahead int) int {
	edits := Diff(cache, query, lookahead)
	Apply(agent, edits, query)
	return len(edits)
}

// Apply replays edits through agent.
func Apply[T comparable](agent Agent[T], edits []Edit, query []T) {
	for _, e := range edits {
		switch e.Op {
		case Remove:
			agent.RemoveRange(e.Index, e.Count)
		case Insert:
			agent.InsertRange(e.Index, e.Count, query, e.QueryIndex)
		}
	}
}

// Patch returns a copy of cache with edits applied.
func Patch[T comparable](cache []T, edits []Edit, query []T) []T {
	out := make([]T, len(cache))
	copy(out, cache)
	for _, e := range edits {
		switch e.Op {
		case Remove:
			out = append(out[:e.Index], out[e.Index+e.Count:]...)
		case Insert:
			ins := query[e.QueryIndex : e.QueryIndex+e.Count]
			tail := append([]T(nil), out[e.Index:]...)
			out = append(append(out[:e.Index], ins...), tail...)
		}
	}
	return out
}
