// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/listsync"
)

// FilterType names one of the built-in contact lists.
type FilterType int

const (
	// FilterNone has no list of its own. Its observers are told when All
	// becomes populated.
	FilterNone FilterType = iota
	FilterAll
	FilterFavorites
	FilterOnline
	filterTypeCount
)

// listFilters are the filters with a maintained sequence.
var listFilters = []FilterType{FilterFavorites, FilterAll, FilterOnline}

// String implements fmt.Stringer.
func (f FilterType) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterFavorites:
		return "favorites"
	case FilterOnline:
		return "online"
	}
	return "none"
}

func (f FilterType) isList() bool {
	return f == FilterAll || f == FilterFavorites || f == FilterOnline
}

// backendFilter returns the backend query for the filter.
func (f FilterType) backendFilter() contact.Filter {
	switch f {
	case FilterFavorites:
		return contact.FavoritesFilter()
	case FilterOnline:
		return contact.OnlineFilter()
	}
	return contact.Filter{}
}

// nextPhase returns the population phase following f.
func (f FilterType) nextPhase() FilterType {
	switch f {
	case FilterFavorites:
		return FilterAll
	case FilterAll:
		return FilterOnline
	}
	return FilterNone
}

// insertRange inserts query[queryIndex:queryIndex+count] at index in the
// filter's list, bracketed by observer notifications. Inserting into All
// counts the new members and queues a fetch for any without data.
func (c *Cache) insertRange(filter FilterType, index, count int, query []contact.Key, queryIndex int) {
	keys := query[queryIndex : queryIndex+count]
	if count == 0 {
		return
	}

	observers := c.observersFor(filter)
	for _, o := range observers {
		o.SourceAboutToInsertItems(index, index+count-1)
	}

	c.mu.Lock()
	list := c.lists[filter]
	tail := append([]contact.Key(nil), list[index:]...)
	list = append(append(list[:index], keys...), tail...)
	c.lists[filter] = list

	var fetch []contact.Id
	if filter == FilterAll {
		for _, key := range keys {
			c.expired[key]++
			r := c.ensureRecord(key)
			if !r.hasData && !r.fetchRequested {
				r.fetchRequested = true
				fetch = append(fetch, r.contact.Id)
			}
			c.joinAll(r)
		}
	}
	updates := c.groups.Flush()
	c.mu.Unlock()

	for _, o := range observers {
		o.SourceItemsInserted(index, index+count-1)
	}
	c.publishNameGroups(updates)
	if len(fetch) > 0 {
		c.queueChanged(fetch)
	}
}

// joinAll counts one more occurrence of r in All. The record is counted in
// its name group while it has any. The caller must hold the write lock.
func (c *Cache) joinAll(r *record) {
	r.inAll++
	if r.inAll == 1 {
		r.nameGroup = c.classify(r)
		c.groups.Increment(r.nameGroup)
	}
}

// leaveAll drops one occurrence of r from All. A reconciliation moves a
// record by inserting it before removing the old copy, so the record stays
// counted until its last occurrence goes. The caller must hold the write
// lock.
func (c *Cache) leaveAll(r *record) {
	if r.inAll == 0 {
		return
	}
	r.inAll--
	if r.inAll == 0 {
		c.groups.Decrement(r.nameGroup)
		r.nameGroup = ""
	}
}

// removeRange removes count keys starting at index from the filter's list,
// bracketed by observer notifications.
func (c *Cache) removeRange(filter FilterType, index, count int) {
	if count == 0 {
		return
	}
	observers := c.observersFor(filter)
	for _, o := range observers {
		o.SourceAboutToRemoveItems(index, index+count-1)
	}

	c.mu.Lock()
	list := c.lists[filter]
	if filter == FilterAll {
		for _, key := range list[index : index+count] {
			c.expired[key]--
			if r, ok := c.records[key]; ok {
				c.leaveAll(r)
			}
		}
	}
	c.lists[filter] = append(list[:index], list[index+count:]...)
	updates := c.groups.Flush()
	c.mu.Unlock()

	for _, o := range observers {
		o.SourceItemsRemoved()
	}
	c.publishNameGroups(updates)
}

// appendContacts adds streamed contacts to the end of an unpopulated list.
func (c *Cache) appendContacts(filter FilterType, contacts []contact.Contact) {
	var keys []contact.Key
	c.mu.RLock()
	present := make(map[contact.Key]bool, len(c.lists[filter]))
	for _, key := range c.lists[filter] {
		present[key] = true
	}
	c.mu.RUnlock()
	for _, ct := range contacts {
		key := ct.Id.Key()
		if key == contact.NullKey || key == c.selfKey || present[key] {
			continue
		}
		present[key] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}

	c.mu.RLock()
	begin := len(c.lists[filter])
	c.mu.RUnlock()
	end := begin + len(keys) - 1

	observers := c.observersFor(filter)
	for _, o := range observers {
		o.SourceAboutToInsertItems(begin, end)
	}

	c.mu.Lock()
	var changed []*record
	for _, ct := range contacts {
		key := ct.Id.Key()
		if key == contact.NullKey || key == c.selfKey {
			continue
		}
		r := c.ensureRecord(key)
		if !r.complete {
			if c.storeContact(r, ct, false) {
				changed = append(changed, r)
			}
		}
	}
	if filter == FilterAll {
		for _, key := range keys {
			c.joinAll(c.records[key])
		}
	}
	c.lists[filter] = append(c.lists[filter], keys...)
	persons := c.personSnapshots(changed)
	updates := c.groups.Flush()
	c.mu.Unlock()

	for _, o := range observers {
		o.SourceItemsInserted(begin, end)
	}
	c.publishPersons(persons)
	c.publishNameGroups(updates)
}

// synchronizeList reconciles the filter's list with a fresh id query.
func (c *Cache) synchronizeList(filter FilterType, query []contact.Key) int {
	keys := make([]contact.Key, 0, len(query))
	for _, key := range query {
		if key != contact.NullKey && key != c.selfKey {
			keys = append(keys, key)
		}
	}
	cached := c.Contacts(filter)
	return listsync.Synchronize[contact.Key](listAgent{cache: c, filter: filter}, cached, keys, c.lookahead())
}

// listAgent applies reconciliation runs to one of the cache's lists.
type listAgent struct {
	cache  *Cache
	filter FilterType
}

func (a listAgent) RemoveRange(index, count int) {
	a.cache.removeRange(a.filter, index, count)
}

func (a listAgent) InsertRange(index, count int, query []contact.Key, queryIndex int) {
	a.cache.insertRange(a.filter, index, count, query, queryIndex)
}

// removeFromLists drops key from every list it appears in.
func (c *Cache) removeFromLists(key contact.Key) {
	for _, filter := range listFilters {
		if row := c.row(filter, key); row >= 0 {
			c.removeRange(filter, row, 1)
		}
	}
}

// row returns the position of key in the filter's list, or -1.
func (c *Cache) row(filter FilterType, key contact.Key) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, k := range c.lists[filter] {
		if k == key {
			return i
		}
	}
	return -1
}

// makePopulated marks the filter as populated and tells its observers. All
// also populates None.
func (c *Cache) makePopulated(filter FilterType) {
	targets := []FilterType{filter}
	if filter == FilterAll {
		targets = append(targets, FilterNone)
	}
	for _, f := range targets {
		c.mu.Lock()
		already := c.populated[f]
		c.populated[f] = true
		c.mu.Unlock()
		if already {
			continue
		}
		for _, o := range c.observersFor(f) {
			o.MakePopulated()
		}
	}
}
