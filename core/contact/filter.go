// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contact

import (
	"strings"
)

// Filter selects a subset of contacts. The zero value matches everything;
// each set field narrows the match.
type Filter struct {
	// Favorite restricts the match to favorite contacts.
	Favorite bool

	// Presence restricts the match to contacts with this global presence.
	// PresenceUnknown does not restrict.
	Presence Presence

	// Ids restricts the match to the given ids when non-nil.
	Ids []Id

	// SyncTarget restricts the match to contacts with this sync target.
	SyncTarget string
}

// FavoritesFilter matches favorite contacts.
func FavoritesFilter() Filter {
	return Filter{Favorite: true}
}

// OnlineFilter matches contacts that are currently available.
func OnlineFilter() Filter {
	return Filter{Presence: PresenceAvailable}
}

// Match reports whether c satisfies the filter.
func (f Filter) Match(c Contact) bool {
	if f.Favorite && !c.Favorite {
		return false
	}
	if f.Presence != PresenceUnknown && c.Presence != f.Presence {
		return false
	}
	if f.SyncTarget != "" && c.SyncTarget != f.SyncTarget {
		return false
	}
	if f.Ids != nil {
		for _, id := range f.Ids {
			if id == c.Id {
				return true
			}
		}
		return false
	}
	return true
}

// NameField names a sortable name field.
type NameField int

const (
	FieldFirstName NameField = iota
	FieldLastName
)

// SortOrder is one key of a contact ordering. Comparisons are case
// insensitive and ascending; blank values sort first.
type SortOrder struct {
	Field NameField
}

// Sorting returns the ordering backends apply for the given label order:
// the leading name field first, the other one as tie break.
func Sorting(order DisplayLabelOrder) []SortOrder {
	if order == LastNameFirst {
		return []SortOrder{{Field: FieldLastName}, {Field: FieldFirstName}}
	}
	return []SortOrder{{Field: FieldFirstName}, {Field: FieldLastName}}
}

func (s SortOrder) value(c Contact) string {
	if s.Field == FieldLastName {
		return c.Name.Last
	}
	return c.Name.First
}

// Compare orders a and b by the given sorting. Contacts equal under every
// sort key are ordered by key so that the result is total.
func Compare(a, b Contact, sorting []SortOrder) int {
	for _, s := range sorting {
		av, bv := s.value(a), s.value(b)
		switch {
		case av == "" && bv != "":
			return -1
		case av != "" && bv == "":
			return 1
		}
		if r := strings.Compare(strings.ToLower(av), strings.ToLower(bv)); r != 0 {
			return r
		}
	}
	switch ak, bk := a.Id.Key(), b.Id.Key(); {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	}
	return 0
}

// FetchHint carries optimisation hints for contact fetches. Backends may
// ignore them.
type FetchHint struct {
	Optimizations Optimization
}

// Optimization is a bit set of fetch optimisation hints.
type Optimization uint

const (
	NoRelationships Optimization = 1 << iota
	NoActionPreferences
	NoBinaryBlobs
)

// SummaryFetchHint is used while lists are first populated.
func SummaryFetchHint() FetchHint {
	return FetchHint{Optimizations: NoRelationships | NoActionPreferences | NoBinaryBlobs}
}

// Has reports whether the hint carries all bits of o.
func (h FetchHint) Has(o Optimization) bool {
	return h.Optimizations&o == o
}
