// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contact

import (
	"slices"

	"github.com/juju/errors"
)

// AggregateSyncTarget is the sync target of merged contacts. Change
// refetches are limited to these.
const AggregateSyncTarget = "aggregate"

// AggregatesRelationship relates an aggregate contact to its constituents.
const AggregatesRelationship = "Aggregates"

// Presence is the global presence state of a contact.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresenceAvailable
	PresenceHidden
	PresenceBusy
	PresenceAway
	PresenceExtendedAway
	PresenceOffline
)

// String implements fmt.Stringer.
func (p Presence) String() string {
	switch p {
	case PresenceAvailable:
		return "available"
	case PresenceHidden:
		return "hidden"
	case PresenceBusy:
		return "busy"
	case PresenceAway:
		return "away"
	case PresenceExtendedAway:
		return "extended-away"
	case PresenceOffline:
		return "offline"
	}
	return "unknown"
}

// Name holds the name detail of a contact.
type Name struct {
	First       string
	Middle      string
	Last        string
	CustomLabel string
}

// IsEmpty reports whether no name field is set.
func (n Name) IsEmpty() bool {
	return n == Name{}
}

// Contact is the backend shaped contact payload.
type Contact struct {
	Id             Id
	Name           Name
	Nickname       string
	Avatar         string
	PhoneNumbers   []string
	EmailAddresses []string
	OnlineAccounts []string
	Organization   string
	Favorite       bool
	Presence       Presence
	SyncTarget     string
}

// Copy returns a deep copy of the contact.
func (c Contact) Copy() Contact {
	c.PhoneNumbers = slices.Clone(c.PhoneNumbers)
	c.EmailAddresses = slices.Clone(c.EmailAddresses)
	c.OnlineAccounts = slices.Clone(c.OnlineAccounts)
	return c
}

// RoleDataEqual reports whether the fields that drive row rendering, the name
// and the avatar, are the same in both contacts.
func RoleDataEqual(a, b Contact) bool {
	return a.Name == b.Name && a.Avatar == b.Avatar
}

// Relationship links two contacts.
type Relationship struct {
	First  Id
	Second Id
	Type   string
}

// DisplayLabelOrder selects which name field leads labels and sorting.
type DisplayLabelOrder int

const (
	FirstNameFirst DisplayLabelOrder = iota
	LastNameFirst
)

// String implements fmt.Stringer.
func (o DisplayLabelOrder) String() string {
	if o == LastNameFirst {
		return "last-name-first"
	}
	return "first-name-first"
}

// Validate returns an error if the order is not a known value.
func (o DisplayLabelOrder) Validate() error {
	if o != FirstNameFirst && o != LastNameFirst {
		return errors.NotValidf("display label order %d", int(o))
	}
	return nil
}
