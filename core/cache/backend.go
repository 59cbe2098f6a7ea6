// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/juju/worker/v4"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// Backend is the asynchronous contact repository the cache is populated
// from. Every request method returns immediately; results arrive on the
// returned Request.
type Backend interface {
	// FetchContacts streams the contacts matching filter in the given order.
	FetchContacts(filter contact.Filter, sorting []contact.SortOrder, hint contact.FetchHint) (Request, error)

	// FetchContactIds returns the ids of the contacts matching filter in the
	// given order.
	FetchContactIds(filter contact.Filter, sorting []contact.SortOrder) (Request, error)

	// FetchContactsById returns the full contacts for ids.
	FetchContactsById(ids []contact.Id) (Request, error)

	// FetchRelationships returns the relationships of the given kind whose
	// first contact is anchor.
	FetchRelationships(anchor contact.Id, kind string) (Request, error)

	// SaveContacts creates or updates contacts. Contacts without a valid id
	// are created.
	SaveContacts(contacts []contact.Contact) (Request, error)

	// RemoveContacts removes contacts.
	RemoveContacts(ids []contact.Id) (Request, error)

	// WatchChanges returns a watcher reporting backend side changes.
	WatchChanges() (ChangeWatcher, error)

	// SelfContactId returns the id of the device owner's own contact.
	SelfContactId() contact.Id
}

// Request is an in-flight backend request. Results delivers batches in order
// and is closed when the request finishes; Wait then reports whether it
// succeeded.
type Request interface {
	worker.Worker
	Results() <-chan Result
}

// Result is one batch of request results. Which field is set depends on the
// request.
type Result struct {
	Contacts      []contact.Contact
	Ids           []contact.Id
	Relationships []contact.Relationship
}

// ChangeKind classifies a ChangeBatch.
type ChangeKind int

const (
	ContactsAdded ChangeKind = iota
	ContactsChanged
	ContactsRemoved
	// DataChanged reports that an unknown set of contacts changed.
	DataChanged
)

// String implements fmt.Stringer.
func (k ChangeKind) String() string {
	switch k {
	case ContactsAdded:
		return "added"
	case ContactsChanged:
		return "changed"
	case ContactsRemoved:
		return "removed"
	}
	return "data-changed"
}

// ChangeBatch is one backend change notification.
type ChangeBatch struct {
	Kind ChangeKind
	Ids  []contact.Id
}

// ChangeWatcher delivers backend change notifications.
type ChangeWatcher interface {
	worker.Worker
	Changes() <-chan ChangeBatch
}

// Role names the kind of backend request the pipeline has outstanding.
type Role int

const (
	RoleNone Role = iota
	RoleFetchContacts
	RoleFetchIds
	RoleFetchById
	RoleRelationships
	RoleSave
	RoleRemove
	roleCount
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleFetchContacts:
		return "fetch-contacts"
	case RoleFetchIds:
		return "fetch-ids"
	case RoleFetchById:
		return "fetch-by-id"
	case RoleRelationships:
		return "relationships"
	case RoleSave:
		return "save"
	case RoleRemove:
		return "remove"
	}
	return "none"
}
