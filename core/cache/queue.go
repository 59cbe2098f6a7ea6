// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// maxRequestAttempts is how many times a failing remove, save or refetch
// batch is tried before it is dropped.
const maxRequestAttempts = 3

// workQueue holds the work waiting for the pipeline. It is guarded by the
// cache mutex.
type workQueue struct {
	remove      []contact.Id
	localRemove []contact.Key

	create    []contact.Contact
	save      map[contact.Key]contact.Contact
	saveOrder []contact.Key
	localSave []contact.Contact

	changed     []contact.Id
	changedKeys map[contact.Key]bool

	// fetchConstituents lists the aggregates whose constituents were asked
	// for. The head is being worked on; constituentIds holds its
	// constituents once the relationships are known.
	fetchConstituents []contact.Id
	constituentIds    []contact.Id

	failures map[Role]int
}

func newWorkQueue() workQueue {
	return workQueue{
		save:        make(map[contact.Key]contact.Contact),
		changedKeys: make(map[contact.Key]bool),
		failures:    make(map[Role]int),
	}
}

// addSave queues an update of an existing contact. A later save of the same
// contact replaces the earlier one.
func (q *workQueue) addSave(key contact.Key, ct contact.Contact) {
	if _, ok := q.save[key]; !ok {
		q.saveOrder = append(q.saveOrder, key)
	}
	q.save[key] = ct
}

func (q *workQueue) dropSave(key contact.Key) {
	if _, ok := q.save[key]; !ok {
		return
	}
	delete(q.save, key)
	for i, k := range q.saveOrder {
		if k == key {
			q.saveOrder = append(q.saveOrder[:i], q.saveOrder[i+1:]...)
			break
		}
	}
}

// takeSaves returns the queued creates followed by the queued updates, and
// empties both.
func (q *workQueue) takeSaves() []contact.Contact {
	contacts := append([]contact.Contact(nil), q.create...)
	for _, key := range q.saveOrder {
		contacts = append(contacts, q.save[key])
	}
	q.create = nil
	q.save = make(map[contact.Key]contact.Contact)
	q.saveOrder = nil
	return contacts
}

// addChanged queues ids for refetching, skipping ids already queued.
func (q *workQueue) addChanged(ids []contact.Id) {
	for _, id := range ids {
		key := id.Key()
		if key == contact.NullKey || q.changedKeys[key] {
			continue
		}
		q.changedKeys[key] = true
		q.changed = append(q.changed, id)
	}
}

func (q *workQueue) takeChanged() []contact.Id {
	ids := q.changed
	q.changed = nil
	q.changedKeys = make(map[contact.Key]bool)
	return ids
}

// addFetchConstituents queues a constituents lookup for the aggregate and
// reports whether it was not already queued.
func (q *workQueue) addFetchConstituents(id contact.Id) bool {
	for _, queued := range q.fetchConstituents {
		if queued.Key() == id.Key() {
			return false
		}
	}
	q.fetchConstituents = append(q.fetchConstituents, id)
	return true
}

// popConstituents drops the aggregate at the head of the lookup queue.
func (q *workQueue) popConstituents() {
	if len(q.fetchConstituents) > 0 {
		q.fetchConstituents = q.fetchConstituents[1:]
	}
	q.constituentIds = nil
}

// size returns the number of queued operations.
func (q *workQueue) size() int {
	return len(q.remove) + len(q.localRemove) + len(q.create) + len(q.saveOrder) +
		len(q.localSave) + len(q.changed) + len(q.fetchConstituents)
}
