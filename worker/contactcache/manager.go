// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contactcache

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4/catacomb"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
)

// DefaultExpiryDelay is how long an unused cache is kept before its worker
// is stopped.
const DefaultExpiryDelay = 30 * time.Second

// ManagerConfig holds the dependencies of a Manager. Its Config is used for
// every cache worker the manager starts.
type ManagerConfig struct {
	Config

	// ExpiryDelay is how long the cache outlives its last user. Zero uses
	// DefaultExpiryDelay.
	ExpiryDelay time.Duration

	// NewWorker starts a cache worker. Nil uses New.
	NewWorker func(Config) (*Worker, error)
}

// Validate returns an error if config cannot drive the Manager.
func (config ManagerConfig) Validate() error {
	if err := config.Config.Validate(); err != nil {
		return errors.Trace(err)
	}
	if config.ExpiryDelay < 0 {
		return errors.NotValidf("negative ExpiryDelay")
	}
	return nil
}

// Manager hands out a shared cache. It counts the list observers, name group
// listeners and other users of the cache; the cache worker is started on
// first use and stopped once it has been unused for the expiry delay.
type Manager struct {
	catacomb catacomb.Catacomb
	config   ManagerConfig

	mu        sync.Mutex
	worker    *Worker
	lists     map[listKey]bool
	listeners map[cache.NameGroupListener]bool
	users     int
	expiry    clock.Timer
	// generation invalidates expiry timers that fire after the cache was
	// used again.
	generation uint64
}

type listKey struct {
	observer cache.ListObserver
	filter   cache.FilterType
}

// NewManager returns a new Manager. The caller takes responsibility for
// killing, and handling errors from, the returned Manager.
func NewManager(config ManagerConfig) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.ExpiryDelay == 0 {
		config.ExpiryDelay = DefaultExpiryDelay
	}
	if config.NewWorker == nil {
		config.NewWorker = New
	}
	m := &Manager{
		config:    config,
		lists:     make(map[listKey]bool),
		listeners: make(map[cache.NameGroupListener]bool),
	}
	err := catacomb.Invoke(catacomb.Plan{
		Site: &m.catacomb,
		Work: m.loop,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

// Kill is part of the worker.Worker interface.
func (m *Manager) Kill() {
	m.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (m *Manager) Wait() error {
	return m.catacomb.Wait()
}

func (m *Manager) loop() error {
	<-m.catacomb.Dying()
	m.mu.Lock()
	if m.expiry != nil {
		m.expiry.Stop()
	}
	m.worker = nil
	m.mu.Unlock()
	return m.catacomb.ErrDying()
}

// RegisterList registers observer for the filter's list with the cache,
// starting the cache if needed.
func (m *Manager) RegisterList(observer cache.ListObserver, filter cache.FilterType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, err := m.acquireLocked()
	if err != nil {
		return errors.Trace(err)
	}
	if err := w.cache.RegisterList(observer, filter); err != nil {
		m.releaseLocked()
		return errors.Trace(err)
	}
	key := listKey{observer: observer, filter: filter}
	if m.lists[key] {
		// Already counted.
		m.releaseLocked()
		return nil
	}
	m.lists[key] = true
	return nil
}

// UnregisterList unregisters observer from the filter's list.
func (m *Manager) UnregisterList(observer cache.ListObserver, filter cache.FilterType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := listKey{observer: observer, filter: filter}
	if !m.lists[key] {
		return
	}
	delete(m.lists, key)
	if m.worker != nil {
		m.worker.cache.UnregisterList(observer, filter)
	}
	m.releaseLocked()
}

// RegisterNameGroupListener registers listener with the cache, starting the
// cache if needed.
func (m *Manager) RegisterNameGroupListener(listener cache.NameGroupListener) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listeners[listener] {
		return nil
	}
	w, err := m.acquireLocked()
	if err != nil {
		return errors.Trace(err)
	}
	if err := w.cache.RegisterNameGroupListener(listener); err != nil {
		m.releaseLocked()
		return errors.Trace(err)
	}
	m.listeners[listener] = true
	return nil
}

// UnregisterNameGroupListener unregisters listener.
func (m *Manager) UnregisterNameGroupListener(listener cache.NameGroupListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.listeners[listener] {
		return
	}
	delete(m.listeners, listener)
	if m.worker != nil {
		m.worker.cache.UnregisterNameGroupListener(listener)
	}
	m.releaseLocked()
}

// Acquire returns the cache, keeping it alive until release is called.
// Calling release more than once has no further effect.
func (m *Manager) Acquire() (_ *cache.Cache, release func(), _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, err := m.acquireLocked()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	m.users++
	var once sync.Once
	release = func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.users--
			m.releaseLocked()
		})
	}
	return w.cache, release, nil
}

// Running reports whether a cache worker is running.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.worker != nil
}

// Report returns information that is used in the dependency engine report.
func (m *Manager) Report() map[string]interface{} {
	m.mu.Lock()
	w := m.worker
	report := map[string]interface{}{
		"lists":     len(m.lists),
		"listeners": len(m.listeners),
		"users":     m.users,
	}
	m.mu.Unlock()
	if w != nil {
		report["cache"] = w.Report()
	}
	return report
}

func (m *Manager) refsLocked() int {
	return len(m.lists) + len(m.listeners) + m.users
}

// acquireLocked cancels any pending expiry and returns the running cache
// worker, starting one if needed.
func (m *Manager) acquireLocked() (*Worker, error) {
	m.generation++
	if m.expiry != nil {
		m.expiry.Stop()
		m.expiry = nil
	}
	if m.worker != nil {
		return m.worker, nil
	}
	select {
	case <-m.catacomb.Dying():
		return nil, errors.New("cache manager stopped")
	default:
	}
	w, err := m.config.NewWorker(m.config.Config)
	if err != nil {
		return nil, errors.Annotate(err, "starting contact cache")
	}
	if err := m.catacomb.Add(w); err != nil {
		return nil, errors.Trace(err)
	}
	m.config.Logger.Debugf("contact cache started")
	m.worker = w
	return w, nil
}

// releaseLocked arms the expiry timer once nothing uses the cache.
func (m *Manager) releaseLocked() {
	if m.refsLocked() > 0 || m.worker == nil || m.expiry != nil {
		return
	}
	generation := m.generation
	m.expiry = m.config.Clock.AfterFunc(m.config.ExpiryDelay, func() {
		m.expire(generation)
	})
}

func (m *Manager) expire(generation uint64) {
	m.mu.Lock()
	if generation != m.generation || m.refsLocked() > 0 || m.worker == nil {
		m.mu.Unlock()
		return
	}
	w := m.worker
	m.worker = nil
	m.expiry = nil
	// A later cache starts with the order this one ended with.
	m.config.DisplayLabelOrder = w.cache.DisplayLabelOrder()
	m.mu.Unlock()

	m.config.Logger.Debugf("contact cache unused for %v, stopping", m.config.ExpiryDelay)
	w.Kill()
	if err := w.Wait(); err != nil {
		m.config.Logger.Warningf("contact cache stopped: %v", err)
	}
}
