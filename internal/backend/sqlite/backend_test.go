// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/backend/sqlite"
)

type backendSuite struct {
	testing.IsolationSuite

	path    string
	backend *sqlite.Backend
}

var _ = gc.Suite(&backendSuite{})

func (s *backendSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.path = filepath.Join(c.MkDir(), "contacts.db")
	s.backend = s.open(c)
}

func (s *backendSuite) TearDownTest(c *gc.C) {
	c.Check(s.backend.Close(), jc.ErrorIsNil)
	s.IsolationSuite.TearDownTest(c)
}

func (s *backendSuite) open(c *gc.C) *sqlite.Backend {
	b, err := sqlite.Open(sqlite.Config{
		Path:   s.path,
		Clock:  clock.WallClock,
		Logger: loggo.GetLogger("test"),
	})
	c.Assert(err, jc.ErrorIsNil)
	return b
}

// collect reads every result of req and returns them with its outcome.
func collect(c *gc.C, req cache.Request) ([]cache.Result, error) {
	var results []cache.Result
	timeout := time.After(testing.LongWait)
	for {
		select {
		case r, ok := <-req.Results():
			if !ok {
				return results, req.Wait()
			}
			results = append(results, r)
		case <-timeout:
			c.Fatalf("timed out waiting for request")
		}
	}
}

func (s *backendSuite) save(c *gc.C, contacts ...contact.Contact) []contact.Contact {
	req, err := s.backend.SaveContacts(contacts)
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 1)
	return results[0].Contacts
}

func (s *backendSuite) fetch(c *gc.C, filter contact.Filter, order contact.DisplayLabelOrder) []contact.Contact {
	req, err := s.backend.FetchContacts(filter, contact.Sorting(order), contact.SummaryFetchHint())
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	var out []contact.Contact
	for _, r := range results {
		out = append(out, r.Contacts...)
	}
	return out
}

func firstNames(contacts []contact.Contact) []string {
	out := make([]string, len(contacts))
	for i, ct := range contacts {
		out[i] = ct.Name.First
	}
	return out
}

func named(first, last string) contact.Contact {
	return contact.Contact{Name: contact.Name{First: first, Last: last}}
}

func (s *backendSuite) TestValidateConfig(c *gc.C) {
	_, err := sqlite.Open(sqlite.Config{Clock: clock.WallClock, Logger: loggo.GetLogger("test")})
	c.Check(err, gc.ErrorMatches, "empty Path not valid")
	_, err = sqlite.Open(sqlite.Config{Path: s.path, Logger: loggo.GetLogger("test")})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *backendSuite) TestSelfContactIsStable(c *gc.C) {
	self := s.backend.SelfContactId()
	c.Check(self.IsValid(), jc.IsTrue)
	c.Check(self.Manager(), gc.Equals, sqlite.ManagerName)

	other := s.open(c)
	defer other.Close()
	c.Check(other.SelfContactId(), gc.Equals, self)

	// The self contact is not listed.
	c.Check(s.fetch(c, contact.Filter{}, contact.FirstNameFirst), gc.HasLen, 0)

	_, err := s.backend.RemoveContacts([]contact.Id{self})
	c.Check(err, jc.Satisfies, errors.IsNotSupported)
}

func (s *backendSuite) TestSaveAssignsIds(c *gc.C) {
	saved := s.save(c, named("Ada", "Lovelace"))
	c.Assert(saved, gc.HasLen, 1)
	c.Check(saved[0].Id.IsValid(), jc.IsTrue)
	c.Check(saved[0].Id.Manager(), gc.Equals, sqlite.ManagerName)
	c.Check(saved[0].SyncTarget, gc.Equals, contact.AggregateSyncTarget)
}

func (s *backendSuite) TestFetchOrdering(c *gc.C) {
	s.save(c, named("Ada", "Lovelace"), named("bob", "Builder"), named("", "Zed"))

	c.Check(firstNames(s.fetch(c, contact.Filter{}, contact.FirstNameFirst)),
		jc.DeepEquals, []string{"", "Ada", "bob"})
	c.Check(firstNames(s.fetch(c, contact.Filter{}, contact.LastNameFirst)),
		jc.DeepEquals, []string{"bob", "Ada", ""})
}

func (s *backendSuite) TestFetchStreamsBatches(c *gc.C) {
	var contacts []contact.Contact
	for i := 0; i <= sqlite.BatchSize; i++ {
		contacts = append(contacts, named(fmt.Sprintf("Person %03d", i), ""))
	}
	s.save(c, contacts...)

	req, err := s.backend.FetchContacts(contact.Filter{}, nil, contact.FetchHint{})
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 2)
	c.Check(results[0].Contacts, gc.HasLen, sqlite.BatchSize)
	c.Check(results[1].Contacts, gc.HasLen, 1)
}

func (s *backendSuite) TestFilters(c *gc.C) {
	ada := named("Ada", "Lovelace")
	ada.Favorite = true
	ada.PhoneNumbers = []string{"+44 20 1234", "555"}
	bob := named("Bob", "Builder")
	bob.Presence = contact.PresenceAvailable
	local := named("Cat", "Constituent")
	local.SyncTarget = "telepathy"
	s.save(c, ada, bob, local)

	favorites := s.fetch(c, contact.FavoritesFilter(), contact.FirstNameFirst)
	c.Assert(favorites, gc.HasLen, 1)
	c.Check(favorites[0].Name.First, gc.Equals, "Ada")
	c.Check(favorites[0].PhoneNumbers, jc.DeepEquals, []string{"+44 20 1234", "555"})

	c.Check(firstNames(s.fetch(c, contact.OnlineFilter(), contact.FirstNameFirst)), jc.DeepEquals, []string{"Bob"})
	c.Check(firstNames(s.fetch(c, contact.Filter{SyncTarget: "telepathy"}, contact.FirstNameFirst)), jc.DeepEquals, []string{"Cat"})

	req, err := s.backend.FetchContactIds(contact.Filter{}, contact.Sorting(contact.FirstNameFirst))
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 1)
	c.Check(results[0].Ids, gc.HasLen, 2)
}

func (s *backendSuite) TestFetchById(c *gc.C) {
	saved := s.save(c, named("Ada", "Lovelace"), named("Bob", "Builder"))

	ids := []contact.Id{saved[1].Id, contact.NewLocalId(999), contact.NewLocalId(uint32(saved[0].Id.Key()))}
	req, err := s.backend.FetchContactsById(ids)
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 1)
	c.Check(firstNames(results[0].Contacts), jc.DeepEquals, []string{"Bob", "Ada"})

	_, err = s.backend.FetchContactsById([]contact.Id{{}})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *backendSuite) TestUpdateUnknownContact(c *gc.C) {
	ct := named("Ghost", "")
	ct.Id = contact.NewLocalId(999)
	req, err := s.backend.SaveContacts([]contact.Contact{ct})
	c.Assert(err, jc.ErrorIsNil)
	_, err = collect(c, req)
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}

func (s *backendSuite) TestChangesAreWatched(c *gc.C) {
	w, err := s.backend.WatchChanges()
	c.Assert(err, jc.ErrorIsNil)
	defer workertest.CleanKill(c, w)

	saved := s.save(c, named("Ada", "Lovelace"))
	id := saved[0].Id
	s.assertChange(c, w, cache.ChangeBatch{Kind: cache.ContactsAdded, Ids: []contact.Id{id}})

	saved[0].Nickname = "Countess"
	s.save(c, saved[0])
	s.assertChange(c, w, cache.ChangeBatch{Kind: cache.ContactsChanged, Ids: []contact.Id{id}})

	req, err := s.backend.RemoveContacts([]contact.Id{id, contact.NewLocalId(999)})
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 1)
	c.Check(results[0].Ids, jc.DeepEquals, []contact.Id{id})
	s.assertChange(c, w, cache.ChangeBatch{Kind: cache.ContactsRemoved, Ids: []contact.Id{id}})

	c.Check(s.fetch(c, contact.Filter{}, contact.FirstNameFirst), gc.HasLen, 0)
}

func (s *backendSuite) assertChange(c *gc.C, w cache.ChangeWatcher, expected cache.ChangeBatch) {
	select {
	case batch, ok := <-w.Changes():
		c.Assert(ok, jc.IsTrue)
		c.Check(batch, jc.DeepEquals, expected)
	case <-time.After(testing.LongWait):
		c.Fatalf("timed out waiting for %s change", expected.Kind)
	}
}

func (s *backendSuite) TestRelationships(c *gc.C) {
	saved := s.save(c, named("Ada", "Lovelace"), named("Ada", "Local"), named("Ada", "Remote"))
	aggregate, first, second := saved[0].Id, saved[1].Id, saved[2].Id

	err := s.backend.AddRelationships(context.Background(), []contact.Relationship{
		{First: aggregate, Second: second, Type: contact.AggregatesRelationship},
		{First: aggregate, Second: first, Type: contact.AggregatesRelationship},
		{First: aggregate, Second: first, Type: "HasMember"},
	})
	c.Assert(err, jc.ErrorIsNil)

	req, err := s.backend.FetchRelationships(aggregate, contact.AggregatesRelationship)
	c.Assert(err, jc.ErrorIsNil)
	results, err := collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(results, gc.HasLen, 1)
	c.Check(results[0].Relationships, jc.DeepEquals, []contact.Relationship{
		{First: aggregate, Second: first, Type: contact.AggregatesRelationship},
		{First: aggregate, Second: second, Type: contact.AggregatesRelationship},
	})

	// Removing a constituent removes its relationships.
	req, err = s.backend.RemoveContacts([]contact.Id{first})
	c.Assert(err, jc.ErrorIsNil)
	_, err = collect(c, req)
	c.Assert(err, jc.ErrorIsNil)

	req, err = s.backend.FetchRelationships(aggregate, "")
	c.Assert(err, jc.ErrorIsNil)
	results, err = collect(c, req)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(results[0].Relationships, jc.DeepEquals, []contact.Relationship{
		{First: aggregate, Second: second, Type: contact.AggregatesRelationship},
	})

	err = s.backend.AddRelationships(context.Background(), []contact.Relationship{{First: aggregate}})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *backendSuite) TestKilledRequestStops(c *gc.C) {
	s.save(c, named("Ada", "Lovelace"))
	req, err := s.backend.FetchContacts(contact.Filter{}, nil, contact.FetchHint{})
	c.Assert(err, jc.ErrorIsNil)
	// Nobody reads the results.
	workertest.CleanKill(c, req)
}
