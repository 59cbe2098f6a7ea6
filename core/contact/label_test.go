// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contact_test

import (
	"sort"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

type LabelSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&LabelSuite{})

func (s *LabelSuite) TestDisplayLabelOrder(c *gc.C) {
	ct := contact.Contact{Name: contact.Name{First: "Ada", Last: "Lovelace"}}
	c.Check(contact.DisplayLabel(ct, contact.FirstNameFirst), gc.Equals, "Ada Lovelace")
	c.Check(contact.DisplayLabel(ct, contact.LastNameFirst), gc.Equals, "Lovelace Ada")
}

func (s *LabelSuite) TestDisplayLabelCustomLabelWins(c *gc.C) {
	ct := contact.Contact{Name: contact.Name{First: "Ada", CustomLabel: "Countess"}}
	c.Check(contact.DisplayLabel(ct, contact.FirstNameFirst), gc.Equals, "Countess")
}

func (s *LabelSuite) TestDisplayLabelFallsBack(c *gc.C) {
	ct := contact.Contact{
		EmailAddresses: []string{"", "ada@example.com"},
		PhoneNumbers:   []string{"+44 1234"},
	}
	c.Check(contact.DisplayLabel(ct, contact.FirstNameFirst), gc.Equals, "ada@example.com")

	ct.Organization = "Analytical Engines"
	c.Check(contact.DisplayLabel(ct, contact.FirstNameFirst), gc.Equals, "Analytical Engines")

	ct.Nickname = "ada"
	c.Check(contact.NonNameDisplayLabel(ct), gc.Equals, "ada")

	c.Check(contact.DisplayLabel(contact.Contact{}, contact.FirstNameFirst), gc.Equals, "")
}

func (s *LabelSuite) TestNormalizePhoneNumber(c *gc.C) {
	for in, out := range map[string]string{
		"+44 (0) 1234-567":  "+4401234567",
		"  555 0100 ":       "5550100",
		"＋３５８ ４０":           "+35840",
		"ext. 12+3":         "123",
		"+":                 "",
		"no digits at all":  "",
	} {
		c.Check(contact.NormalizePhoneNumber(in), gc.Equals, out, gc.Commentf("input %q", in))
	}
}

func (s *LabelSuite) TestFilterMatch(c *gc.C) {
	fav := contact.Contact{Id: contact.NewLocalId(1), Favorite: true, Presence: contact.PresenceAway}
	online := contact.Contact{Id: contact.NewLocalId(2), Presence: contact.PresenceAvailable, SyncTarget: contact.AggregateSyncTarget}

	c.Check(contact.Filter{}.Match(fav), jc.IsTrue)
	c.Check(contact.FavoritesFilter().Match(fav), jc.IsTrue)
	c.Check(contact.FavoritesFilter().Match(online), jc.IsFalse)
	c.Check(contact.OnlineFilter().Match(online), jc.IsTrue)
	c.Check(contact.OnlineFilter().Match(fav), jc.IsFalse)

	byId := contact.Filter{Ids: []contact.Id{contact.NewLocalId(2)}, SyncTarget: contact.AggregateSyncTarget}
	c.Check(byId.Match(online), jc.IsTrue)
	c.Check(byId.Match(fav), jc.IsFalse)

	c.Check(contact.Filter{Ids: []contact.Id{}}.Match(fav), jc.IsFalse)
}

func (s *LabelSuite) TestCompareBlanksFirstCaseInsensitive(c *gc.C) {
	contacts := []contact.Contact{
		{Id: contact.NewLocalId(1), Name: contact.Name{First: "bob", Last: "Young"}},
		{Id: contact.NewLocalId(2), Name: contact.Name{First: "Alice", Last: "Zed"}},
		{Id: contact.NewLocalId(3), Name: contact.Name{Last: "Adams"}},
		{Id: contact.NewLocalId(4), Name: contact.Name{First: "Bob", Last: "Adams"}},
	}
	sorting := contact.Sorting(contact.FirstNameFirst)
	sort.SliceStable(contacts, func(i, j int) bool {
		return contact.Compare(contacts[i], contacts[j], sorting) < 0
	})
	var ids []contact.Key
	for _, ct := range contacts {
		ids = append(ids, ct.Id.Key())
	}
	c.Check(ids, jc.DeepEquals, []contact.Key{3, 2, 4, 1})

	sorting = contact.Sorting(contact.LastNameFirst)
	sort.SliceStable(contacts, func(i, j int) bool {
		return contact.Compare(contacts[i], contacts[j], sorting) < 0
	})
	ids = ids[:0]
	for _, ct := range contacts {
		ids = append(ids, ct.Id.Key())
	}
	c.Check(ids, jc.DeepEquals, []contact.Key{3, 4, 1, 2})
}

func (s *LabelSuite) TestDisplayLabelOrderValidate(c *gc.C) {
	c.Check(contact.FirstNameFirst.Validate(), jc.ErrorIsNil)
	c.Check(contact.LastNameFirst.Validate(), jc.ErrorIsNil)
	c.Check(contact.DisplayLabelOrder(7).Validate(), gc.ErrorMatches, "display label order 7 not valid")
}
