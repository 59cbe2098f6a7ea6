// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/pubsub/v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/backend/sqlite"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/prefs"
	"github.com/kananoja/nemo-qml-plugin-contacts/worker/contactcache"
)

const (
	defaultDBPath  = "contacts.db"
	defaultTimeout = 10 * time.Second
)

// storeCommand is embedded by the commands that use the contact store. It
// provides the flags locating the store and the preferences.
type storeCommand struct {
	cmd.CommandBase
	dbPath    string
	prefsPath string
	timeout   time.Duration
}

// SetFlags implements cmd.Command.
func (c *storeCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.dbPath, "db", defaultDBPath, "Path of the sqlite contact store")
	f.StringVar(&c.prefsPath, "prefs", "", "Path of the preferences file")
	f.DurationVar(&c.timeout, "timeout", defaultTimeout, "How long to wait for the cache")
}

func (c *storeCommand) openBackend(ctx *cmd.Context) (*sqlite.Backend, error) {
	backend, err := sqlite.Open(sqlite.Config{
		Path:   ctx.AbsPath(c.dbPath),
		Clock:  clock.WallClock,
		Logger: logger,
	})
	return backend, errors.Trace(err)
}

func (c *storeCommand) preferences(ctx *cmd.Context) (prefs.Preferences, error) {
	if c.prefsPath == "" {
		return prefs.Preferences{DisplayLabelOrder: contact.FirstNameFirst}, nil
	}
	p, err := prefs.Read(ctx.AbsPath(c.prefsPath))
	return p, errors.Trace(err)
}

// session is a running cache over the contact store.
type session struct {
	backend *sqlite.Backend
	manager *contactcache.Manager
	clock   clock.Clock
	timeout time.Duration
}

// wait collects the results of a backend request.
func (c *storeCommand) wait(req cache.Request) ([]cache.Result, error) {
	var (
		results []cache.Result
		timeout = clock.WallClock.After(c.timeout)
	)
	for {
		select {
		case result, ok := <-req.Results():
			if !ok {
				return results, errors.Trace(req.Wait())
			}
			results = append(results, result)
		case <-timeout:
			req.Kill()
			_ = req.Wait()
			return nil, errors.Timeoutf("backend request")
		}
	}
}

func (c *storeCommand) openSession(ctx *cmd.Context) (*session, error) {
	p, err := c.preferences(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	config := contactcache.Config{
		Backend: backend,
		Clock:   clock.WallClock,
		Hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: logger,
		}),
		Logger:            logger,
		DisplayLabelOrder: p.DisplayLabelOrder,
	}
	if c.prefsPath != "" {
		path := ctx.AbsPath(c.prefsPath)
		config.NewPrefsWatcher = func() (contactcache.PrefsWatcher, error) {
			w, err := prefs.NewWatcher(path, logger)
			if err != nil {
				return nil, errors.Trace(err)
			}
			return w, nil
		}
	}
	manager, err := contactcache.NewManager(contactcache.ManagerConfig{Config: config})
	if err != nil {
		_ = backend.Close()
		return nil, errors.Trace(err)
	}
	return &session{
		backend: backend,
		manager: manager,
		clock:   clock.WallClock,
		timeout: c.timeout,
	}, nil
}

// Close stops the cache and closes the store.
func (s *session) Close() error {
	s.manager.Kill()
	err := s.manager.Wait()
	if closeErr := s.backend.Close(); err == nil {
		err = closeErr
	}
	return errors.Trace(err)
}

// populated returns the cache once the filter's list has been populated.
// The list stays registered until release is called.
func (s *session) populated(filter cache.FilterType) (_ *cache.Cache, release func(), _ error) {
	observer := newPopulatedObserver()
	if err := s.manager.RegisterList(observer, filter); err != nil {
		return nil, nil, errors.Trace(err)
	}
	c, releaseCache, err := s.manager.Acquire()
	if err != nil {
		s.manager.UnregisterList(observer, filter)
		return nil, nil, errors.Trace(err)
	}
	release = func() {
		releaseCache()
		s.manager.UnregisterList(observer, filter)
	}
	select {
	case <-observer.done:
		return c, release, nil
	case <-s.clock.After(s.timeout):
		release()
		return nil, nil, errors.Timeoutf("populating %s contacts", filter)
	}
}
