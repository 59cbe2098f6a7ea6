// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package namegroup

import (
	"github.com/juju/collections/set"
)

// Index counts contacts per bucket. It remembers which buckets were touched
// since the last Flush so that listeners only hear about real changes.
//
// Index is not safe for concurrent use.
type Index struct {
	counts  map[string]int
	flushed map[string]int
	touched set.Strings
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		counts:  make(map[string]int),
		flushed: make(map[string]int),
		touched: set.NewStrings(),
	}
}

// Increment adds one member to group. Empty groups are ignored.
func (x *Index) Increment(group string) {
	if group == "" {
		return
	}
	x.counts[group]++
	x.touched.Add(group)
}

// Decrement removes one member from group. Groups without members are left
// alone so that counts never go negative.
func (x *Index) Decrement(group string) {
	if group == "" || x.counts[group] == 0 {
		return
	}
	x.counts[group]--
	if x.counts[group] == 0 {
		delete(x.counts, group)
	}
	x.touched.Add(group)
}

// Move transfers one member between groups.
func (x *Index) Move(from, to string) {
	if from == to {
		return
	}
	x.Decrement(from)
	x.Increment(to)
}

// Count returns the number of members of group.
func (x *Index) Count(group string) int {
	return x.counts[group]
}

// Total returns the number of members across all groups.
func (x *Index) Total() int {
	var total int
	for _, n := range x.counts {
		total += n
	}
	return total
}

// Counts returns a copy of the non-zero counts.
func (x *Index) Counts() map[string]int {
	out := make(map[string]int, len(x.counts))
	for g, n := range x.counts {
		out[g] = n
	}
	return out
}

// Flush returns the new count of every group touched since the previous
// flush whose count differs from the flushed value. It returns nil when
// nothing changed.
func (x *Index) Flush() map[string]int {
	if x.touched.IsEmpty() {
		return nil
	}
	var updates map[string]int
	for _, g := range x.touched.Values() {
		n := x.counts[g]
		if n == x.flushed[g] {
			continue
		}
		if updates == nil {
			updates = make(map[string]int)
		}
		updates[g] = n
		if n == 0 {
			delete(x.flushed, g)
		} else {
			x.flushed[g] = n
		}
	}
	x.touched = set.NewStrings()
	return updates
}

// Reset drops all counts. The next flush reports every group that had
// members as zero.
func (x *Index) Reset() {
	for g := range x.counts {
		x.touched.Add(g)
	}
	x.counts = make(map[string]int)
}
