// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/juju/errors"
)

const nameGroupsTopic = "name-groups"

// ListObserver follows one of the cache's lists. Row ranges are inclusive.
// Observers are compared by identity, so implementations should be pointers.
type ListObserver interface {
	SourceAboutToRemoveItems(begin, end int)
	SourceItemsRemoved()
	SourceAboutToInsertItems(begin, end int)
	SourceItemsInserted(begin, end int)
	SourceDataChanged(begin, end int)

	// MakePopulated is called once the list has completed its first fetch.
	MakePopulated()

	// UpdateDisplayLabelOrder is called after labels have been recomputed
	// for a new display label order.
	UpdateDisplayLabelOrder()
}

// NameGroupListener is told about name group count changes. Only groups
// whose count changed are reported; a group that emptied is reported as
// zero.
type NameGroupListener interface {
	NameGroupsUpdated(counts map[string]int)
}

// RegisterList starts notifying observer of changes to the filter's list. An
// observer registered for an already populated list is told so right away.
func (c *Cache) RegisterList(observer ListObserver, filter FilterType) error {
	if observer == nil {
		return errors.NotValidf("nil observer")
	}
	if filter < 0 || filter >= filterTypeCount {
		return errors.NotValidf("filter %d", int(filter))
	}
	c.mu.Lock()
	for _, o := range c.observers[filter] {
		if o == observer {
			c.mu.Unlock()
			return nil
		}
	}
	c.observers[filter] = append(c.observers[filter], observer)
	populated := c.populated[filter]
	c.mu.Unlock()

	if populated {
		observer.MakePopulated()
	}
	return nil
}

// UnregisterList stops notifying observer about the filter's list. It
// reports whether the observer was registered.
func (c *Cache) UnregisterList(observer ListObserver, filter FilterType) bool {
	if filter < 0 || filter >= filterTypeCount {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	observers := c.observers[filter]
	for i, o := range observers {
		if o == observer {
			c.observers[filter] = append(observers[:i:i], observers[i+1:]...)
			return true
		}
	}
	return false
}

// ObserverCount returns the number of registered list observers.
func (c *Cache) ObserverCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int
	for _, observers := range c.observers {
		n += len(observers)
	}
	return n
}

// RegisterNameGroupListener starts delivering name group updates to
// listener. Updates are delivered asynchronously, in order.
func (c *Cache) RegisterNameGroupListener(listener NameGroupListener) error {
	if listener == nil {
		return errors.NotValidf("nil listener")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.listeners[listener]; ok {
		return nil
	}
	c.listeners[listener] = c.hub.Subscribe(nameGroupsTopic, func(_ string, data interface{}) {
		counts, ok := data.(map[string]int)
		if !ok {
			logger.Criticalf("programming error: topic data expected map[string]int, got %T", data)
			return
		}
		listener.NameGroupsUpdated(counts)
	})
	return nil
}

// UnregisterNameGroupListener stops delivering updates to listener.
func (c *Cache) UnregisterNameGroupListener(listener NameGroupListener) {
	c.mu.Lock()
	unsub, ok := c.listeners[listener]
	delete(c.listeners, listener)
	c.mu.Unlock()
	if ok {
		unsub()
	}
}

// observersFor returns a copy of the observers of the filter.
func (c *Cache) observersFor(filter FilterType) []ListObserver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.observers[filter]) == 0 {
		return nil
	}
	return append([]ListObserver(nil), c.observers[filter]...)
}

// allObservers returns a copy of every registered observer, each once.
func (c *Cache) allObservers() []ListObserver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []ListObserver
	seen := make(map[ListObserver]bool)
	for _, observers := range c.observers {
		for _, o := range observers {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

func (c *Cache) publishNameGroups(updates map[string]int) {
	if len(updates) == 0 {
		return
	}
	_ = c.hub.Publish(nameGroupsTopic, updates)
}
