// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contact

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Key is the dense internal key derived from a contact Id. It is stable for
// the lifetime of the process and is used as the primary cache key.
//
// A Key carries only the local number of an id. It is one-to-one within a
// single manager; ids of different managers with the same local number share
// a key, so a cache holds the contacts of one manager only.
type Key uint32

// NullKey is returned for invalid ids. No valid Id maps to it.
const NullKey Key = 0

type idKind uint8

const (
	nullId idKind = iota
	localId
	managerId
)

// managerLocalPrefix prefixes the local part of a manager qualified id.
const managerLocalPrefix = "sql-"

// Id is an opaque backend contact identifier. Backends identify contacts
// either by a bare local number or by a manager qualified string; both shapes
// are held here and reduce to the same Key.
//
// The zero value is the null id, which never identifies a real contact.
type Id struct {
	kind    idKind
	local   uint32
	manager string
}

// NewLocalId returns the Id for a backend local id. Zero yields the null id.
func NewLocalId(local uint32) Id {
	if local == 0 {
		return Id{}
	}
	return Id{kind: localId, local: local}
}

// NewManagerId returns a manager qualified Id.
func NewManagerId(manager string, local uint32) Id {
	if local == 0 {
		return Id{}
	}
	return Id{kind: managerId, local: local, manager: manager}
}

// ParseId parses the String form of an Id: either a decimal local id or
// "<manager>::sql-<n>".
func ParseId(s string) (Id, error) {
	if s == "" {
		return Id{}, errors.NotValidf("empty contact id")
	}
	if manager, local, ok := strings.Cut(s, "::"); ok {
		n, err := strconv.ParseUint(strings.TrimPrefix(local, managerLocalPrefix), 10, 32)
		if err != nil || !strings.HasPrefix(local, managerLocalPrefix) || n == 0 {
			return Id{}, errors.NotValidf("contact id %q", s)
		}
		return NewManagerId(manager, uint32(n)), nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return Id{}, errors.NotValidf("contact id %q", s)
	}
	return NewLocalId(uint32(n)), nil
}

// IsValid reports whether the id can identify a contact.
func (id Id) IsValid() bool {
	return id.kind != nullId && id.local != 0
}

// IsNull reports whether id is the null id.
func (id Id) IsNull() bool {
	return !id.IsValid()
}

// Key returns the internal key for the id, or NullKey if it is invalid.
func (id Id) Key() Key {
	if !id.IsValid() {
		return NullKey
	}
	return Key(id.local)
}

// Manager returns the manager name of a manager qualified id.
func (id Id) Manager() string {
	return id.manager
}

// String returns the textual form accepted by ParseId.
func (id Id) String() string {
	switch id.kind {
	case localId:
		return strconv.FormatUint(uint64(id.local), 10)
	case managerId:
		return fmt.Sprintf("%s::%s%d", id.manager, managerLocalPrefix, id.local)
	}
	return ""
}

// GoString makes ids readable in test failures.
func (id Id) GoString() string {
	if !id.IsValid() {
		return "contact.Id(null)"
	}
	return fmt.Sprintf("contact.Id(%s)", id.String())
}

// IdForKey returns a local Id carrying the given key.
func IdForKey(key Key) Id {
	return NewLocalId(uint32(key))
}

// Keys maps ids to their internal keys.
func Keys(ids []Id) []Key {
	keys := make([]Key, len(ids))
	for i, id := range ids {
		keys[i] = id.Key()
	}
	return keys
}
