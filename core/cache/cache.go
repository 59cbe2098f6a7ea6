// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cache holds the in-memory contact cache: one record per contact,
// the ordered id sequences of the built-in filters, the name group index and
// the registry of list observers, together with the pipeline that keeps them
// in step with the backend.
//
// The cache is driven by a single goroutine, the pipeline goroutine, which
// calls Start, Drive, the change methods and the request event methods.
// Read accessors and the queueing methods (Save, Remove, Person,
// FetchConstituents) may be called from any goroutine. Observers and
// listeners are always called without internal locks held, so they may call
// back into the read accessors.
package cache

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/pubsub/v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/listsync"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/namegroup"
)

var logger = loggo.GetLogger("contactcache.core.cache")

const (
	// DebounceWindow is how long change notifications are collected before
	// the resulting refetch is issued.
	DebounceWindow = 500 * time.Millisecond

	// DebounceCeiling bounds how long a steady stream of changes can keep
	// postponing the refetch.
	DebounceCeiling = 5 * time.Second

	// BusyRetryDelay is how long a due refetch waits for an outstanding
	// request to finish.
	BusyRetryDelay = 250 * time.Millisecond
)

// Logger represents the methods used by the cache to log messages.
type Logger interface {
	Tracef(string, ...interface{})
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warningf(string, ...interface{})
	Errorf(string, ...interface{})
}

// Config holds the dependencies and parameters of a Cache.
type Config struct {
	Backend Backend
	Clock   clock.Clock
	Hub     *pubsub.SimpleHub
	Logger  Logger

	// DisplayLabelOrder is the initial label and sort order.
	DisplayLabelOrder contact.DisplayLabelOrder

	// Lookahead bounds the list reconciliation search. Zero uses
	// listsync.DefaultLookahead.
	Lookahead int

	// RequestStarted, if set, is called on the pipeline goroutine with
	// every request the cache issues to the backend.
	RequestStarted func(Role, Request)
}

// Validate returns an error if the config cannot be used to create a Cache.
func (config Config) Validate() error {
	if config.Backend == nil {
		return errors.NotValidf("nil Backend")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Hub == nil {
		return errors.NotValidf("nil Hub")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	if config.Lookahead < 0 {
		return errors.NotValidf("negative Lookahead")
	}
	return errors.Trace(config.DisplayLabelOrder.Validate())
}

// Cache is the contact cache engine.
type Cache struct {
	config  Config
	backend Backend
	clock   clock.Clock
	hub     *pubsub.SimpleHub
	logger  Logger
	selfKey contact.Key
	manager string
	wake    chan struct{}

	mu             sync.RWMutex
	records        map[contact.Key]*record
	phones         map[string]contact.Key
	lists          [filterTypeCount][]contact.Key
	populated      [filterTypeCount]bool
	observers      [filterTypeCount][]ListObserver
	listeners      map[NameGroupListener]func()
	groups         *namegroup.Index
	expired        map[contact.Key]int
	order          contact.DisplayLabelOrder
	queue          workQueue
	updatesPending bool
	stalled        bool
	counters       counters

	// The fields below are only touched by the pipeline goroutine.
	started         bool
	phase           FilterType
	active          *activeRequest
	fetchHint       contact.FetchHint
	refreshRequired bool
	contactsUpdated bool
	debounce        debouncer
}

// New returns a cache reading from config.Backend. No request is issued
// until Start is called.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	c := &Cache{
		config:    config,
		backend:   config.Backend,
		clock:     config.Clock,
		hub:       config.Hub,
		logger:    config.Logger,
		selfKey:   config.Backend.SelfContactId().Key(),
		manager:   config.Backend.SelfContactId().Manager(),
		wake:      make(chan struct{}, 1),
		records:   make(map[contact.Key]*record),
		phones:    make(map[string]contact.Key),
		listeners: make(map[NameGroupListener]func()),
		groups:    namegroup.NewIndex(),
		expired:   make(map[contact.Key]int),
		order:     config.DisplayLabelOrder,
		queue:     newWorkQueue(),
	}
	c.debounce = debouncer{clock: config.Clock}
	return c, nil
}

// Wake delivers a value whenever the pipeline has work to do. The pipeline
// goroutine should call Drive on receipt.
func (c *Cache) Wake() <-chan struct{} {
	return c.wake
}

// SelfKey returns the key of the device owner's own contact, which is never
// listed.
func (c *Cache) SelfKey() contact.Key {
	return c.selfKey
}

// DisplayLabelOrder returns the current label and sort order.
func (c *Cache) DisplayLabelOrder() contact.DisplayLabelOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order
}

// Contacts returns a copy of the ordered keys of the given filter.
func (c *Cache) Contacts(filter FilterType) []contact.Key {
	if !filter.isList() {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]contact.Key, len(c.lists[filter]))
	copy(out, c.lists[filter])
	return out
}

// IsPopulated reports whether the filter has completed its first fetch.
func (c *Cache) IsPopulated(filter FilterType) bool {
	if filter < 0 || filter >= filterTypeCount {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated[filter]
}

// NameGroupCounts returns the current number of All members per name group.
func (c *Cache) NameGroupCounts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.groups.Counts()
}

// Contact returns the cached payload for key.
func (c *Cache) Contact(key contact.Key) (contact.Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[key]
	if !ok || !r.hasData {
		return contact.Contact{}, false
	}
	return r.contact.Copy(), true
}

// ContactByPhoneNumber returns the key of the contact owning number.
func (c *Cache) ContactByPhoneNumber(number string) (contact.Key, bool) {
	normalized := contact.NormalizePhoneNumber(number)
	if normalized == "" {
		return contact.NullKey, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.phones[normalized]
	return key, ok
}

func (c *Cache) sorting() []contact.SortOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return contact.Sorting(c.order)
}

func (c *Cache) lookahead() int {
	if c.config.Lookahead == 0 {
		return listsync.DefaultLookahead
	}
	return c.config.Lookahead
}

// requestUpdate marks the pipeline as having pending work, clears any stall
// and wakes the pipeline goroutine.
func (c *Cache) requestUpdate() {
	c.mu.Lock()
	c.updatesPending = true
	c.stalled = false
	c.mu.Unlock()
	c.requestDrive()
}

func (c *Cache) requestDrive() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
