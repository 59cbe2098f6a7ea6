// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package sqlite provides a contact backend stored in a SQLite database.
// Every request runs on its own goroutine; writes are published to change
// watchers once committed.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/juju/clock"
	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/pubsub/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

var logger = loggo.GetLogger("contactcache.backend.sqlite")

// ManagerName qualifies the ids of contacts held by the backend.
const ManagerName = "org.nemomobile.contacts.sqlite"

// BatchSize is the number of contacts delivered in each result of a
// streamed fetch.
const BatchSize = 50

// changesTopic carries committed changes to watchers.
const changesTopic = "contacts.changes"

// Logger represents the methods used by the backend to log messages.
type Logger interface {
	Tracef(string, ...interface{})
	Debugf(string, ...interface{})
	Warningf(string, ...interface{})
	Errorf(string, ...interface{})
}

// Config holds the parameters of a Backend.
type Config struct {
	// Path is the database file. It is created if missing.
	Path   string
	Clock  clock.Clock
	Logger Logger
}

// Validate returns an error if config cannot be used to open a Backend.
func (config Config) Validate() error {
	if config.Path == "" {
		return errors.NotValidf("empty Path")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Backend implements cache.Backend over a SQLite database.
type Backend struct {
	db     *sql.DB
	clock  clock.Clock
	logger Logger
	hub    *pubsub.SimpleHub
	self   contact.Id
}

var _ cache.Backend = (*Backend)(nil)

// Open opens the database at config.Path, creating the schema and the self
// contact on first use.
func Open(config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	db, err := sql.Open("sqlite3", config.Path+"?_busy_timeout=1000&_foreign_keys=on")
	if err != nil {
		return nil, errors.Annotatef(err, "opening %q", config.Path)
	}
	// Streamed reads load their rows before any further query, so a single
	// connection serialises every transaction without deadlocking.
	db.SetMaxOpenConns(1)

	b := &Backend{
		db:     db,
		clock:  config.Clock,
		logger: config.Logger,
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: config.Logger,
		}),
	}
	ctx := context.Background()
	if err := b.runTxn(ctx, createSchema); err != nil {
		_ = db.Close()
		return nil, errors.Annotate(err, "creating schema")
	}
	var self int64
	err = b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		self, err = ensureSelfContact(ctx, tx)
		return errors.Trace(err)
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Annotate(err, "creating self contact")
	}
	b.self = managerId(self)
	return b, nil
}

// Close closes the database. Outstanding requests fail.
func (b *Backend) Close() error {
	return errors.Trace(b.db.Close())
}

// SelfContactId is part of cache.Backend.
func (b *Backend) SelfContactId() contact.Id {
	return b.self
}

// WatchChanges is part of cache.Backend.
func (b *Backend) WatchChanges() (cache.ChangeWatcher, error) {
	return newChangeWatcher(b.hub), nil
}

// FetchContacts is part of cache.Backend. Contacts are streamed in batches
// of BatchSize. The fetch hint is ignored.
func (b *Backend) FetchContacts(filter contact.Filter, sorting []contact.SortOrder, _ contact.FetchHint) (cache.Request, error) {
	q, err := buildQuery(filter, sorting)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return b.start("fetch-contacts", func(ctx context.Context, emit func(cache.Result) error) error {
		var contacts []contact.Contact
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			contacts, err = selectContacts(ctx, tx, q)
			return errors.Trace(err)
		})
		if err != nil {
			return errors.Trace(err)
		}
		for len(contacts) > 0 {
			n := min(BatchSize, len(contacts))
			if err := emit(cache.Result{Contacts: contacts[:n]}); err != nil {
				return errors.Trace(err)
			}
			contacts = contacts[n:]
		}
		return nil
	}), nil
}

// FetchContactIds is part of cache.Backend.
func (b *Backend) FetchContactIds(filter contact.Filter, sorting []contact.SortOrder) (cache.Request, error) {
	q, err := buildQuery(filter, sorting)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return b.start("fetch-ids", func(ctx context.Context, emit func(cache.Result) error) error {
		var ids []contact.Id
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			ids, err = selectIds(ctx, tx, q)
			return errors.Trace(err)
		})
		if err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(emit(cache.Result{Ids: ids}))
	}), nil
}

// FetchContactsById is part of cache.Backend. Contacts are returned in
// the order requested; unknown ids are skipped.
func (b *Backend) FetchContactsById(ids []contact.Id) (cache.Request, error) {
	rowIds, err := rowIds(ids)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return b.start("fetch-by-id", func(ctx context.Context, emit func(cache.Result) error) error {
		var contacts []contact.Contact
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			contacts, err = selectContactsById(ctx, tx, rowIds)
			return errors.Trace(err)
		})
		if err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(emit(cache.Result{Contacts: contacts}))
	}), nil
}

// FetchRelationships is part of cache.Backend.
func (b *Backend) FetchRelationships(anchor contact.Id, kind string) (cache.Request, error) {
	if !anchor.IsValid() {
		return nil, errors.NotValidf("contact id %q", anchor)
	}
	return b.start("relationships", func(ctx context.Context, emit func(cache.Result) error) error {
		var rels []contact.Relationship
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			rels, err = selectRelationships(ctx, tx, int64(anchor.Key()), kind)
			return errors.Trace(err)
		})
		if err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(emit(cache.Result{Relationships: rels}))
	}), nil
}

// SaveContacts is part of cache.Backend. Contacts without a valid id are
// created; the new ids are reported to watchers as additions.
func (b *Backend) SaveContacts(contacts []contact.Contact) (cache.Request, error) {
	contacts = transform.Slice(contacts, contact.Contact.Copy)
	return b.start("save", func(ctx context.Context, emit func(cache.Result) error) error {
		var (
			saved          []contact.Contact
			added, changed []contact.Id
		)
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			saved = transform.Slice(contacts, contact.Contact.Copy)
			added, changed = nil, nil
			for i := range saved {
				ct := &saved[i]
				if ct.SyncTarget == "" {
					ct.SyncTarget = contact.AggregateSyncTarget
				}
				if !ct.Id.IsValid() {
					id, err := insertContact(ctx, tx, *ct)
					if err != nil {
						return errors.Trace(err)
					}
					ct.Id = managerId(id)
					added = append(added, ct.Id)
					continue
				}
				if err := updateContact(ctx, tx, *ct); err != nil {
					return errors.Trace(err)
				}
				changed = append(changed, managerId(int64(ct.Id.Key())))
			}
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		b.publish(cache.ContactsAdded, added)
		b.publish(cache.ContactsChanged, changed)
		return errors.Trace(emit(cache.Result{Contacts: saved}))
	}), nil
}

// RemoveContacts is part of cache.Backend. The ids of the contacts that
// existed are emitted. The self contact cannot be removed.
func (b *Backend) RemoveContacts(ids []contact.Id) (cache.Request, error) {
	rowIds, err := rowIds(ids)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, id := range rowIds {
		if id == int64(b.self.Key()) {
			return nil, errors.NotSupportedf("removing the self contact")
		}
	}
	return b.start("remove", func(ctx context.Context, emit func(cache.Result) error) error {
		var removed []contact.Id
		err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			removed, err = deleteContacts(ctx, tx, rowIds)
			return errors.Trace(err)
		})
		if err != nil {
			return errors.Trace(err)
		}
		b.publish(cache.ContactsRemoved, removed)
		if len(removed) == 0 {
			return nil
		}
		return errors.Trace(emit(cache.Result{Ids: removed}))
	}), nil
}

// AddRelationships records relationships between existing contacts.
func (b *Backend) AddRelationships(ctx context.Context, rels []contact.Relationship) error {
	for _, rel := range rels {
		if !rel.First.IsValid() || !rel.Second.IsValid() {
			return errors.NotValidf("relationship %s %q %s", rel.First, rel.Type, rel.Second)
		}
	}
	err := b.runTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return errors.Trace(insertRelationships(ctx, tx, rels))
	})
	if err != nil {
		return errors.Trace(err)
	}
	ids := make([]contact.Id, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, managerId(int64(rel.First.Key())))
	}
	b.publish(cache.ContactsChanged, ids)
	return nil
}

func (b *Backend) publish(kind cache.ChangeKind, ids []contact.Id) {
	if len(ids) == 0 {
		return
	}
	_ = b.hub.Publish(changesTopic, cache.ChangeBatch{Kind: kind, Ids: ids})
}

func managerId(rowId int64) contact.Id {
	return contact.NewManagerId(ManagerName, uint32(rowId))
}

func rowIds(ids []contact.Id) ([]int64, error) {
	out := make([]int64, len(ids))
	for i, id := range ids {
		if !id.IsValid() {
			return nil, errors.NotValidf("contact id %q", id)
		}
		out[i] = int64(id.Key())
	}
	return out, nil
}
