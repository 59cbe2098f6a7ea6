// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

type counters struct {
	started [roleCount]uint64
	failed  [roleCount]uint64
	evicted uint64
}

// Stats is a point in time summary of the cache.
type Stats struct {
	Records     int
	ListLengths map[FilterType]int
	Populated   map[FilterType]bool
	QueuedOps   int
	Observers   int

	RequestsStarted map[Role]uint64
	RequestsFailed  map[Role]uint64
	Evicted         uint64
}

// Stats returns a summary of the cache.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		Records:         len(c.records),
		ListLengths:     make(map[FilterType]int),
		Populated:       make(map[FilterType]bool),
		QueuedOps:       c.queue.size(),
		RequestsStarted: make(map[Role]uint64),
		RequestsFailed:  make(map[Role]uint64),
		Evicted:         c.counters.evicted,
	}
	for _, filter := range listFilters {
		s.ListLengths[filter] = len(c.lists[filter])
		s.Populated[filter] = c.populated[filter]
	}
	for _, observers := range c.observers {
		s.Observers += len(observers)
	}
	for role := RoleFetchContacts; role < roleCount; role++ {
		s.RequestsStarted[role] = c.counters.started[role]
		s.RequestsFailed[role] = c.counters.failed[role]
	}
	return s
}

// Report returns information that is used in the dependency engine report.
func (c *Cache) Report() map[string]interface{} {
	stats := c.Stats()
	lists := make(map[string]interface{})
	for filter, n := range stats.ListLengths {
		lists[filter.String()] = map[string]interface{}{
			"length":    n,
			"populated": stats.Populated[filter],
		}
	}
	return map[string]interface{}{
		"records":             stats.Records,
		"lists":               lists,
		"queued-operations":   stats.QueuedOps,
		"observers":           stats.Observers,
		"evicted":             stats.Evicted,
		"display-label-order": c.DisplayLabelOrder().String(),
	}
}
