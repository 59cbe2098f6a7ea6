// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache_test

import (
	"time"

	"github.com/juju/loggo/v2"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

type DebounceSuite struct {
	baseSuite
}

var _ = gc.Suite(&DebounceSuite{})

func loggoLogger() cache.Logger {
	return loggo.GetLogger("test")
}

func (s *DebounceSuite) TestChangesAreBatched(c *gc.C) {
	ada := person(1, "Ada", "Lovelace")
	s.populate(c, ada, person(2, "Bob", "Builder"))

	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: ids(1)})
	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsAdded, Ids: ids(2, 1)})
	s.assertNotWoken(c)
	c.Assert(s.cache.FetchTimer(), gc.NotNil)

	s.clock.Advance(cache.DebounceWindow - time.Millisecond)
	s.assertTimerNotFired(c)
	s.clock.Advance(time.Millisecond)
	s.fireTimer(c)
	c.Check(s.cache.FetchTimer(), gc.IsNil)

	s.drive(c)
	req := s.backend.last(c, "FetchContacts")
	c.Check(req.filter, jc.DeepEquals, contact.Filter{
		Ids:        ids(1, 2),
		SyncTarget: contact.AggregateSyncTarget,
	})
	c.Check(req.hint, jc.DeepEquals, contact.FetchHint{})

	ada.Name.First = "Alice"
	s.complete(req, cache.Result{Contacts: []contact.Contact{ada}})
	c.Check(s.all.events, jc.DeepEquals, []string{"data-changed 0-0"})

	// The reported changes also refresh the lists.
	s.drive(c)
	s.backend.last(c, "FetchContactIds")
}

func (s *DebounceSuite) TestPostponementIsBounded(c *gc.C) {
	s.populate(c, person(1, "Ada", "Lovelace"))

	step := 400 * time.Millisecond
	for i := 0; i < 12; i++ {
		s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: ids(1)})
		s.clock.Advance(step)
		s.assertTimerNotFired(c)
	}
	// 4.8s after the first change only 200ms of postponement remain.
	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: ids(1)})
	s.clock.Advance(199 * time.Millisecond)
	s.assertTimerNotFired(c)
	s.clock.Advance(time.Millisecond)

	// Past the ceiling further changes do not push the fetch back.
	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: ids(1)})
	s.fireTimer(c)
	s.drive(c)
	s.backend.last(c, "FetchContacts")
}

func (s *DebounceSuite) TestFetchWaitsForOutstandingRequest(c *gc.C) {
	ada := person(1, "Ada", "Lovelace")
	s.populate(c, ada)

	ada.Nickname = "Countess"
	s.cache.Save(ada)
	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: ids(1)})
	s.drive(c)
	save := s.backend.last(c, "SaveContacts")

	s.clock.Advance(cache.DebounceWindow)
	s.fireTimer(c)
	s.assertNotWoken(c)
	s.clock.Advance(cache.BusyRetryDelay)
	s.fireTimer(c)
	s.assertNotWoken(c)

	// Queued changes are fetched as soon as the pipeline is free.
	s.complete(save)
	s.drive(c)
	fetch := s.backend.last(c, "FetchContacts")
	s.clock.Advance(cache.BusyRetryDelay)
	s.fireTimer(c)
	s.complete(fetch, cache.Result{Contacts: []contact.Contact{ada}})
	s.drive(c)
	c.Check(s.cache.ActiveRole(), gc.Equals, cache.RoleNone)

	// Once idle, the timer promotes the changes to a refresh.
	s.clock.Advance(cache.BusyRetryDelay)
	s.fireTimer(c)
	s.drive(c)
	s.backend.last(c, "FetchContactIds")
}

func (s *DebounceSuite) TestDataChangedRefetchesCompleteContacts(c *gc.C) {
	ada := person(1, "Ada", "Lovelace")
	s.populate(c, ada, person(2, "Bob", "Builder"))

	// Only ada has been fetched in full.
	_, err := s.cache.Person(ada.Id)
	c.Assert(err, jc.ErrorIsNil)
	s.drive(c)
	s.complete(s.backend.last(c, "FetchContacts"), cache.Result{Contacts: []contact.Contact{ada}})
	s.drive(c)

	s.cache.HandleChange(cache.ChangeBatch{Kind: cache.DataChanged})
	s.clock.Advance(cache.DebounceWindow)
	s.fireTimer(c)
	s.drive(c)
	req := s.backend.last(c, "FetchContacts")
	c.Check(req.filter.Ids, jc.DeepEquals, ids(1))
}
