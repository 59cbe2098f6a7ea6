// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/juju/errors"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// activeRequest is the single backend request the pipeline has outstanding.
type activeRequest struct {
	role Role
	req  Request

	// filter is the list being populated, or FilterNone outside the
	// population phases.
	filter FilterType

	ids       []contact.Id
	contacts  []contact.Contact
	aggregate contact.Id

	// Accumulated results.
	keys         []contact.Key
	constituents []contact.Id
}

// Start begins populating the lists, favorites first. Calling it again has
// no effect.
func (c *Cache) Start() {
	if c.started {
		return
	}
	c.started = true
	c.mu.Lock()
	c.updatesPending = true
	c.mu.Unlock()
	c.fetchHint = contact.SummaryFetchHint()
	c.beginPhase(FilterFavorites)
}

// Phase returns the list currently being populated, or FilterNone.
func (c *Cache) Phase() FilterType {
	return c.phase
}

// ActiveRole returns the role of the outstanding request, or RoleNone.
func (c *Cache) ActiveRole() Role {
	if c.active == nil {
		return RoleNone
	}
	return c.active.role
}

// Drive issues the next backend request, in priority order: removals,
// saves, constituent fetches, relationship lookups, refetches of changed
// contacts and finally a refresh of every list. With nothing left to do it
// evicts the records that have left All. Drive does nothing while a request
// is outstanding or a refresh is in progress.
func (c *Cache) Drive() {
	if !c.started || c.active != nil || c.phase != FilterNone {
		return
	}
	c.applyLocalChanges()

	var a *activeRequest
	c.mu.Lock()
	q := &c.queue
	switch {
	case len(q.remove) > 0:
		a = &activeRequest{role: RoleRemove, ids: q.remove}
		q.remove = nil
	case len(q.create)+len(q.saveOrder) > 0:
		a = &activeRequest{role: RoleSave, contacts: q.takeSaves()}
	case len(q.constituentIds) > 0:
		a = &activeRequest{
			role:      RoleFetchById,
			ids:       append([]contact.Id(nil), q.constituentIds...),
			aggregate: q.fetchConstituents[0],
		}
	case len(q.fetchConstituents) > 0:
		a = &activeRequest{role: RoleRelationships, aggregate: q.fetchConstituents[0]}
	case len(q.changed) > 0:
		a = &activeRequest{role: RoleFetchContacts, ids: q.takeChanged()}
	}
	c.mu.Unlock()

	switch {
	case a != nil:
		c.issue(a)
	case c.refreshRequired:
		c.refreshRequired = false
		c.logger.Debugf("refreshing contact lists")
		c.beginPhase(FilterFavorites)
	default:
		c.sweepExpired()
	}
}

// applyLocalChanges applies queued removals and saves to the lists before
// the backend hears about them.
func (c *Cache) applyLocalChanges() {
	c.mu.Lock()
	removes := c.queue.localRemove
	saves := c.queue.localSave
	c.queue.localRemove = nil
	c.queue.localSave = nil
	c.mu.Unlock()

	for _, key := range removes {
		c.removeFromLists(key)
	}
	if len(saves) == 0 {
		return
	}

	var keys []contact.Key
	var watched []*record
	c.mu.Lock()
	for _, ct := range saves {
		key := ct.Id.Key()
		r, ok := c.records[key]
		if !ok {
			continue
		}
		c.storeContact(r, ct, false)
		keys = append(keys, key)
		watched = append(watched, r)
	}
	persons := c.personSnapshots(watched)
	updates := c.groups.Flush()
	c.mu.Unlock()

	for _, key := range keys {
		c.notifyDataChanged(key)
	}
	c.publishPersons(persons)
	c.publishNameGroups(updates)
}

// beginPhase starts populating filter, or ends the population walk when
// filter is FilterNone. A list that has never been fetched is streamed in
// full; otherwise its ids are queried and reconciled.
func (c *Cache) beginPhase(filter FilterType) {
	c.phase = filter
	if filter == FilterNone {
		c.fetchHint = contact.FetchHint{}
		if c.shouldRedrive() {
			c.requestDrive()
		}
		return
	}

	c.mu.RLock()
	initial := !c.populated[filter] && len(c.lists[filter]) == 0
	c.mu.RUnlock()
	role := RoleFetchIds
	if initial {
		role = RoleFetchContacts
	}
	c.issue(&activeRequest{role: role, filter: filter})
}

// issue starts the backend request for a. A request that cannot be started
// finishes straight away with the error.
func (c *Cache) issue(a *activeRequest) {
	c.active = a
	c.mu.Lock()
	c.counters.started[a.role]++
	c.mu.Unlock()

	req, err := c.startRequest(a)
	if err != nil {
		c.finish(errors.Annotatef(err, "starting %s request", a.role))
		return
	}
	a.req = req
	c.logger.Tracef("started %s request for %s", a.role, a.filter)
	if c.config.RequestStarted != nil {
		c.config.RequestStarted(a.role, req)
	}
}

func (c *Cache) startRequest(a *activeRequest) (Request, error) {
	switch a.role {
	case RoleFetchContacts:
		if a.filter != FilterNone {
			return c.backend.FetchContacts(a.filter.backendFilter(), c.sorting(), c.fetchHint)
		}
		filter := contact.Filter{Ids: a.ids, SyncTarget: contact.AggregateSyncTarget}
		return c.backend.FetchContacts(filter, c.sorting(), c.fetchHint)
	case RoleFetchIds:
		return c.backend.FetchContactIds(a.filter.backendFilter(), c.sorting())
	case RoleFetchById:
		return c.backend.FetchContactsById(a.ids)
	case RoleRelationships:
		return c.backend.FetchRelationships(a.aggregate, contact.AggregatesRelationship)
	case RoleSave:
		return c.backend.SaveContacts(a.contacts)
	case RoleRemove:
		return c.backend.RemoveContacts(a.ids)
	}
	return nil, errors.NotSupportedf("request role %s", a.role)
}

// ResultsAvailable consumes a batch of results from req. Results from a
// request other than the outstanding one are ignored.
func (c *Cache) ResultsAvailable(req Request, result Result) {
	a := c.active
	if a == nil || a.req != req {
		c.logger.Debugf("ignoring results from a request that is not outstanding")
		return
	}
	switch a.role {
	case RoleFetchContacts:
		if a.filter != FilterNone {
			c.appendContacts(a.filter, result.Contacts)
		} else {
			c.updateContacts(result.Contacts)
		}
	case RoleFetchById:
		c.updateContacts(result.Contacts)
	case RoleFetchIds:
		for _, id := range result.Ids {
			if key := id.Key(); key != contact.NullKey {
				a.keys = append(a.keys, key)
			}
		}
	case RoleRelationships:
		for _, rel := range result.Relationships {
			if rel.Type == contact.AggregatesRelationship && rel.First.Key() == a.aggregate.Key() {
				a.constituents = append(a.constituents, rel.Second)
			}
		}
	}
}

// RequestFinished completes req. err is nil if the request succeeded.
func (c *Cache) RequestFinished(req Request, err error) {
	a := c.active
	if a == nil || a.req != req {
		c.logger.Debugf("ignoring completion of a request that is not outstanding")
		return
	}
	c.finish(err)
}

// finish completes the outstanding request and moves the pipeline on.
func (c *Cache) finish(err error) {
	a := c.active
	c.active = nil

	c.mu.Lock()
	if err != nil {
		c.logger.Warningf("%s request failed: %v", a.role, err)
		c.counters.failed[a.role]++
		c.stalled = true
		c.requeue(a)
	} else {
		c.queue.failures[a.role] = 0
	}
	c.mu.Unlock()

	switch a.role {
	case RoleRelationships:
		c.finishRelationships(a, err)
	case RoleFetchById:
		c.finishConstituents(a, err)
	}

	if a.filter != FilterNone {
		c.completePhase(a, err)
		c.beginPhase(a.filter.nextPhase())
		return
	}
	if c.shouldRedrive() {
		c.requestDrive()
	}
}

// requeue puts the work of a failed request back on the queue, unless it
// has failed too often. The caller must hold the write lock.
func (c *Cache) requeue(a *activeRequest) {
	q := &c.queue
	switch a.role {
	case RoleRemove, RoleSave:
	case RoleFetchContacts:
		if a.filter != FilterNone {
			return
		}
	default:
		return
	}
	q.failures[a.role]++
	if q.failures[a.role] >= maxRequestAttempts {
		c.logger.Errorf("dropping %s request after %d failed attempts", a.role, q.failures[a.role])
		q.failures[a.role] = 0
		return
	}
	switch a.role {
	case RoleRemove:
		q.remove = append(a.ids, q.remove...)
	case RoleSave:
		q.create = append(a.contacts, q.create...)
	case RoleFetchContacts:
		q.addChanged(a.ids)
	}
}

func (c *Cache) finishRelationships(a *activeRequest, err error) {
	c.mu.Lock()
	if err != nil {
		c.queue.popConstituents()
		c.mu.Unlock()
		return
	}
	if len(a.constituents) > 0 {
		c.queue.constituentIds = a.constituents
		c.mu.Unlock()
		return
	}
	c.queue.popConstituents()
	c.mu.Unlock()
	c.reportConstituents(a.aggregate.Key(), []contact.Key{})
}

func (c *Cache) finishConstituents(a *activeRequest, err error) {
	c.mu.Lock()
	c.queue.popConstituents()
	c.mu.Unlock()
	if err != nil {
		return
	}
	c.reportConstituents(a.aggregate.Key(), contact.Keys(a.ids))
}

// completePhase finishes populating a list. A failed list keeps what it
// has and is refreshed on the next drive.
func (c *Cache) completePhase(a *activeRequest, err error) {
	if err != nil {
		c.refreshRequired = true
		return
	}
	if a.role == RoleFetchIds {
		n := c.synchronizeList(a.filter, a.keys)
		c.logger.Tracef("reconciled %s list with %d runs", a.filter, n)
	}
	c.makePopulated(a.filter)
}

func (c *Cache) shouldRedrive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatesPending && !c.stalled
}

// HandleChange applies a backend change notification.
func (c *Cache) HandleChange(batch ChangeBatch) {
	switch batch.Kind {
	case ContactsAdded, ContactsChanged:
		c.contactsChanged(batch.Ids)
	case ContactsRemoved:
		c.refreshRequired = true
		c.requestUpdate()
	case DataChanged:
		c.DataChanged()
	}
}

// DataChanged refetches every fully fetched contact.
func (c *Cache) DataChanged() {
	var ids []contact.Id
	c.mu.RLock()
	for _, r := range c.records {
		if r.complete {
			ids = append(ids, r.contact.Id)
		}
	}
	c.mu.RUnlock()
	c.contactsChanged(ids)
}

// contactsChanged queues ids for refetching once the change stream settles.
func (c *Cache) contactsChanged(ids []contact.Id) {
	c.mu.Lock()
	c.queue.addChanged(ids)
	c.mu.Unlock()
	c.contactsUpdated = true
	c.debounce.postpone()
}

// queueChanged queues ids for refetching on the next drive.
func (c *Cache) queueChanged(ids []contact.Id) {
	c.mu.Lock()
	c.queue.addChanged(ids)
	c.mu.Unlock()
	c.requestUpdate()
}

// SetDisplayLabelOrder recomputes labels and name groups for order, tells
// every observer and refreshes the lists in the new sort order.
func (c *Cache) SetDisplayLabelOrder(order contact.DisplayLabelOrder) error {
	if err := order.Validate(); err != nil {
		return errors.Trace(err)
	}
	updates, persons, changed := c.setDisplayLabelOrder(order)
	if !changed {
		return nil
	}
	c.logger.Infof("display label order changed to %s", order)
	for _, o := range c.allObservers() {
		o.UpdateDisplayLabelOrder()
	}
	c.publishPersons(persons)
	c.publishNameGroups(updates)
	c.refreshRequired = true
	c.requestUpdate()
	return nil
}

// Save queues ct to be written to the backend. Contacts that are not cached
// are created.
func (c *Cache) Save(ct contact.Contact) {
	if ct.Id.IsValid() && !c.ownsId(ct.Id) {
		c.logger.Warningf("not saving contact %s from another manager", ct.Id)
		return
	}
	ct = ct.Copy()
	key := ct.Id.Key()
	c.mu.Lock()
	if _, ok := c.records[key]; ok && key != contact.NullKey {
		c.queue.addSave(key, ct)
		c.queue.localSave = append(c.queue.localSave, ct)
	} else {
		c.queue.create = append(c.queue.create, ct)
	}
	c.mu.Unlock()
	c.requestUpdate()
}

// Import queues the creation of contacts. Any ids they carry are dropped.
func (c *Cache) Import(contacts []contact.Contact) {
	if len(contacts) == 0 {
		return
	}
	c.mu.Lock()
	for _, ct := range contacts {
		ct = ct.Copy()
		ct.Id = contact.Id{}
		c.queue.create = append(c.queue.create, ct)
	}
	c.mu.Unlock()
	c.requestUpdate()
}

// Remove queues the removal of id. The contact leaves the lists on the next
// drive.
func (c *Cache) Remove(id contact.Id) error {
	key, err := c.keyFor(id)
	if err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	c.queue.remove = append(c.queue.remove, id)
	c.queue.localRemove = append(c.queue.localRemove, key)
	c.queue.dropSave(key)
	c.mu.Unlock()
	c.requestUpdate()
	return nil
}
