// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/namegroup"
)

// record is the cached state of one contact. Records are created on first
// reference, possibly before any data has been fetched.
type record struct {
	contact contact.Contact
	hasData bool

	// complete is set once a full fetch has stored the contact.
	// fetchRequested is set once a detail fetch has been queued for it.
	complete       bool
	fetchRequested bool

	displayLabel string

	// nameGroup is the group the record is counted under while it is a
	// member of All, and empty otherwise. inAll counts its occurrences in
	// All, which briefly exceeds one while a reconciliation moves it.
	nameGroup string
	inAll     int

	phones []string

	// watched is set once a Person has been handed out for the record.
	watched bool

	constituents      []contact.Key
	constituentsKnown bool
}

// ensureRecord returns the record for key, creating a placeholder if needed.
// The caller must hold the write lock.
func (c *Cache) ensureRecord(key contact.Key) *record {
	if r, ok := c.records[key]; ok {
		return r
	}
	r := &record{contact: contact.Contact{Id: contact.IdForKey(key)}}
	r.displayLabel = contact.DisplayLabel(r.contact, c.order)
	c.records[key] = r
	return r
}

// classify returns the name group for the record. The caller must hold a
// lock.
func (c *Cache) classify(r *record) string {
	return namegroup.Classify(r.contact, r.displayLabel, c.order)
}

// storeContact replaces the payload of r with ct and reports whether the role
// data changed. A record counted in a name group moves to the group of its
// new name. The caller must hold the write lock.
func (c *Cache) storeContact(r *record, ct contact.Contact, complete bool) bool {
	roleChanged := !r.hasData || !contact.RoleDataEqual(r.contact, ct)
	ct = ct.Copy()
	if !ct.Id.IsValid() {
		ct.Id = r.contact.Id
	}
	r.contact = ct
	r.hasData = true
	if complete {
		r.complete = true
	}
	r.displayLabel = contact.DisplayLabel(ct, c.order)
	c.indexPhones(ct.Id.Key(), r)
	if r.nameGroup != "" {
		group := c.classify(r)
		c.groups.Move(r.nameGroup, group)
		r.nameGroup = group
	}
	return roleChanged
}

// indexPhones replaces the phone index entries of the record. The caller must
// hold the write lock.
func (c *Cache) indexPhones(key contact.Key, r *record) {
	for _, number := range r.phones {
		if c.phones[number] == key {
			delete(c.phones, number)
		}
	}
	r.phones = r.phones[:0]
	for _, number := range r.contact.PhoneNumbers {
		normalized := contact.NormalizePhoneNumber(number)
		if normalized == "" {
			continue
		}
		c.phones[normalized] = key
		r.phones = append(r.phones, normalized)
	}
}

// dropRecord forgets the record for key. The caller must hold the write lock.
func (c *Cache) dropRecord(key contact.Key, r *record) {
	for _, number := range r.phones {
		if c.phones[number] == key {
			delete(c.phones, number)
		}
	}
	c.groups.Decrement(r.nameGroup)
	delete(c.records, key)
	c.counters.evicted++
}

// updateContacts stores fully fetched contacts and notifies observers of
// every list row whose role data changed.
func (c *Cache) updateContacts(contacts []contact.Contact) {
	var changed []contact.Key
	var watched []*record
	c.mu.Lock()
	for _, ct := range contacts {
		key := ct.Id.Key()
		if key == contact.NullKey {
			continue
		}
		r := c.ensureRecord(key)
		if c.storeContact(r, ct, true) {
			changed = append(changed, key)
		}
		if r.watched {
			watched = append(watched, r)
		}
	}
	persons := c.personSnapshots(watched)
	updates := c.groups.Flush()
	c.mu.Unlock()

	for _, key := range changed {
		c.notifyDataChanged(key)
	}
	c.publishPersons(persons)
	c.publishNameGroups(updates)
}

// notifyDataChanged tells the observers of every list holding key that its
// row changed.
func (c *Cache) notifyDataChanged(key contact.Key) {
	for _, filter := range listFilters {
		row := c.row(filter, key)
		if row < 0 {
			continue
		}
		for _, o := range c.observersFor(filter) {
			o.SourceDataChanged(row, row)
		}
	}
}

// cancelEviction keeps the record for key through the next sweep. It is
// called whenever the record is referenced again. The caller must hold the
// write lock.
func (c *Cache) cancelEviction(key contact.Key) {
	if c.expired[key] < 0 {
		delete(c.expired, key)
	}
}

// sweepExpired drops the records that left All more often than they joined
// it since the previous sweep, then starts a new sweep window. Records still
// in All are kept.
func (c *Cache) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, delta := range c.expired {
		if delta >= 0 {
			continue
		}
		if r, ok := c.records[key]; ok && r.inAll == 0 {
			c.dropRecord(key, r)
		}
	}
	c.expired = make(map[contact.Key]int)
	c.updatesPending = false
}

// setDisplayLabelOrder recomputes every label and name group for order. It
// returns false if the order is unchanged.
func (c *Cache) setDisplayLabelOrder(order contact.DisplayLabelOrder) (map[string]int, []Person, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if order == c.order {
		return nil, nil, false
	}
	c.order = order
	var watched []*record
	for _, r := range c.records {
		r.displayLabel = contact.DisplayLabel(r.contact, order)
		if r.nameGroup != "" {
			group := c.classify(r)
			c.groups.Move(r.nameGroup, group)
			r.nameGroup = group
		}
		if r.watched {
			watched = append(watched, r)
		}
	}
	return c.groups.Flush(), c.personSnapshots(watched), true
}
