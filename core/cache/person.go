// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// Person is a snapshot of one cached contact as presented to callers.
// Snapshots are deep copies; use WatchPerson to follow changes.
type Person struct {
	Key          contact.Key
	Contact      contact.Contact
	DisplayLabel string
	NameGroup    string

	// Complete is set once the full contact has been fetched.
	Complete bool

	// Constituents holds the keys of the contacts aggregated by this one.
	// It is only meaningful once ConstituentsKnown is set.
	Constituents      []contact.Key
	ConstituentsKnown bool
}

// Id returns the backend id of the person.
func (p Person) Id() contact.Id {
	return p.Contact.Id
}

func personTopic(key contact.Key) string {
	return fmt.Sprintf("person-%d", key)
}

// keyFor returns the key for id. Keys carry only the local part of an id,
// so ids qualified by a manager other than the backend's are rejected.
func (c *Cache) keyFor(id contact.Id) (contact.Key, error) {
	key := id.Key()
	if key == contact.NullKey {
		return contact.NullKey, errors.NotValidf("contact id %q", id)
	}
	if !c.ownsId(id) {
		return contact.NullKey, errors.NotValidf("contact id %q from manager %q", id, id.Manager())
	}
	return key, nil
}

// ownsId reports whether id belongs to the backend's manager. Bare local
// ids always do.
func (c *Cache) ownsId(id contact.Id) bool {
	return id.Manager() == "" || c.manager == "" || id.Manager() == c.manager
}

// Person returns the person for id. The record is created if it is not
// cached yet, and a detail fetch is queued, once, if it is incomplete.
func (c *Cache) Person(id contact.Id) (Person, error) {
	key, err := c.keyFor(id)
	if err != nil {
		return Person{}, errors.Trace(err)
	}

	c.mu.Lock()
	r, ok := c.records[key]
	if !ok {
		r = c.ensureRecord(key)
		r.contact.Id = id
	}
	r.watched = true
	c.cancelEviction(key)
	var fetch contact.Id
	if !r.complete && !r.fetchRequested {
		r.fetchRequested = true
		fetch = r.contact.Id
	}
	p := c.snapshot(key, r)
	c.mu.Unlock()

	if fetch.IsValid() {
		c.queueChanged([]contact.Id{fetch})
	}
	return p, nil
}

// SelfPerson returns the person for the device owner's own contact.
func (c *Cache) SelfPerson() (Person, error) {
	p, err := c.Person(c.backend.SelfContactId())
	return p, errors.Trace(err)
}

// PersonByPhoneNumber returns the person owning number.
func (c *Cache) PersonByPhoneNumber(number string) (Person, error) {
	key, ok := c.ContactByPhoneNumber(number)
	if !ok {
		return Person{}, errors.NotFoundf("contact with phone number %q", number)
	}
	c.mu.RLock()
	r, ok := c.records[key]
	var id contact.Id
	if ok {
		id = r.contact.Id
	}
	c.mu.RUnlock()
	if !ok {
		return Person{}, errors.NotFoundf("contact with phone number %q", number)
	}
	p, err := c.Person(id)
	return p, errors.Trace(err)
}

// WatchPerson returns a watcher delivering a snapshot of the person for key
// whenever it changes. The current snapshot is delivered first if the person
// is cached.
func (c *Cache) WatchPerson(key contact.Key) *PersonWatcher {
	var current *Person
	c.mu.Lock()
	if r, ok := c.records[key]; ok {
		c.cancelEviction(key)
		if r.watched {
			p := c.snapshot(key, r)
			current = &p
		}
	}
	c.mu.Unlock()
	return newPersonWatcher(key, c.hub, current)
}

// FetchConstituents queues a lookup of the contacts aggregated by id. The
// result is delivered through the person's watchers.
func (c *Cache) FetchConstituents(id contact.Id) error {
	key, err := c.keyFor(id)
	if err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	c.ensureRecord(key).watched = true
	c.cancelEviction(key)
	queued := c.queue.addFetchConstituents(id)
	c.mu.Unlock()
	if queued {
		c.requestUpdate()
	}
	return nil
}

// reportConstituents records the constituents of the aggregate and publishes
// the updated person.
func (c *Cache) reportConstituents(aggregate contact.Key, constituents []contact.Key) {
	c.mu.Lock()
	r := c.ensureRecord(aggregate)
	r.constituents = constituents
	r.constituentsKnown = true
	persons := c.personSnapshots([]*record{r})
	c.mu.Unlock()
	c.publishPersons(persons)
}

// snapshot returns a deep copy of the record as a Person. The caller must
// hold a lock.
func (c *Cache) snapshot(key contact.Key, r *record) Person {
	p := Person{
		Key:               key,
		Contact:           r.contact.Copy(),
		DisplayLabel:      r.displayLabel,
		NameGroup:         r.nameGroup,
		Complete:          r.complete,
		ConstituentsKnown: r.constituentsKnown,
	}
	if p.NameGroup == "" {
		p.NameGroup = c.classify(r)
	}
	if r.constituents != nil {
		p.Constituents = append([]contact.Key{}, r.constituents...)
	}
	return p
}

// personSnapshots returns snapshots of the watched records among records.
// The caller must hold a lock.
func (c *Cache) personSnapshots(records []*record) []Person {
	var persons []Person
	for _, r := range records {
		if !r.watched {
			continue
		}
		persons = append(persons, c.snapshot(r.contact.Id.Key(), r))
	}
	return persons
}

func (c *Cache) publishPersons(persons []Person) {
	for i := range persons {
		p := persons[i]
		_ = c.hub.Publish(personTopic(p.Key), &p)
	}
}
