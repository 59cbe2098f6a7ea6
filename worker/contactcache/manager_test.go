// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contactcache_test

import (
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/worker/contactcache"
)

type ManagerSuite struct {
	baseSuite
}

var _ = gc.Suite(&ManagerSuite{})

func (s *ManagerSuite) newManager(c *gc.C) *contactcache.Manager {
	m, err := contactcache.NewManager(contactcache.ManagerConfig{
		Config: s.config(),
	})
	c.Assert(err, jc.ErrorIsNil)
	return m
}

func (s *ManagerSuite) TestValidateConfig(c *gc.C) {
	defer s.setupMocks(c).Finish()

	cfg := contactcache.ManagerConfig{Config: s.config(), ExpiryDelay: -time.Second}
	c.Check(cfg.Validate(), gc.ErrorMatches, "negative ExpiryDelay not valid")

	cfg = contactcache.ManagerConfig{Config: s.config()}
	cfg.Hub = nil
	_, err := contactcache.NewManager(cfg)
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *ManagerSuite) TestCacheStartsOnFirstUse(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectBackend()
	s.setContacts(person(1, "Ada", "Lovelace"))

	m := s.newManager(c)
	defer workertest.CleanKill(c, m)
	c.Check(m.Running(), jc.IsFalse)

	all := newObserver()
	c.Assert(m.RegisterList(all, cache.FilterAll), jc.ErrorIsNil)
	c.Check(m.Running(), jc.IsTrue)
	all.waitFor(c, "populated")

	// Registering twice is counted once.
	c.Assert(m.RegisterList(all, cache.FilterAll), jc.ErrorIsNil)
	c.Check(m.Report()["lists"], gc.Equals, 1)
	m.UnregisterList(all, cache.FilterAll)
	c.Check(m.Report()["lists"], gc.Equals, 0)
}

func (s *ManagerSuite) TestUnusedCacheExpires(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectBackend()

	m := s.newManager(c)
	defer workertest.CleanKill(c, m)

	all := newObserver()
	c.Assert(m.RegisterList(all, cache.FilterAll), jc.ErrorIsNil)
	all.waitFor(c, "populated")
	m.UnregisterList(all, cache.FilterAll)
	c.Check(m.Running(), jc.IsTrue)

	c.Assert(s.clock.WaitAdvance(contactcache.DefaultExpiryDelay, testing.LongWait, 1), jc.ErrorIsNil)
	s.waitStopped(c, m)

	// The next user starts a fresh cache.
	_, release, err := m.Acquire()
	c.Assert(err, jc.ErrorIsNil)
	defer release()
	c.Check(m.Running(), jc.IsTrue)
}

func (s *ManagerSuite) TestUseCancelsExpiry(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectBackend()

	m := s.newManager(c)
	defer workertest.CleanKill(c, m)

	_, release, err := m.Acquire()
	c.Assert(err, jc.ErrorIsNil)
	release()
	// Releasing again does not count twice.
	release()
	c.Check(m.Report()["users"], gc.Equals, 0)

	listener := newGroupListener()
	c.Assert(m.RegisterNameGroupListener(listener), jc.ErrorIsNil)
	s.clock.Advance(contactcache.DefaultExpiryDelay)
	c.Check(m.Running(), jc.IsTrue)

	m.UnregisterNameGroupListener(listener)
	c.Assert(s.clock.WaitAdvance(contactcache.DefaultExpiryDelay, testing.LongWait, 1), jc.ErrorIsNil)
	s.waitStopped(c, m)
}

func (s *ManagerSuite) TestKillStopsCache(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectBackend()

	m := s.newManager(c)
	cch, release, err := m.Acquire()
	c.Assert(err, jc.ErrorIsNil)
	defer release()
	c.Assert(cch, gc.NotNil)

	workertest.CleanKill(c, m)
	c.Check(m.Running(), jc.IsFalse)
	_, _, err = m.Acquire()
	c.Check(err, gc.ErrorMatches, "cache manager stopped")
}

func (s *ManagerSuite) waitStopped(c *gc.C, m *contactcache.Manager) {
	timeout := time.After(testing.LongWait)
	for m.Running() {
		select {
		case <-time.After(testing.ShortWait):
		case <-timeout:
			c.Fatalf("cache still running")
		}
	}
}

type groupListener struct {
	updates chan map[string]int
}

func newGroupListener() *groupListener {
	return &groupListener{updates: make(chan map[string]int, 10)}
}

func (l *groupListener) NameGroupsUpdated(counts map[string]int) {
	select {
	case l.updates <- counts:
	default:
	}
}
