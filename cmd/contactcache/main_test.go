// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/prefs"
)

type MainSuite struct {
	testing.IsolationSuite
	dir string
}

var _ = gc.Suite(&MainSuite{})

func (s *MainSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.dir = c.MkDir()
}

func (s *MainSuite) run(c *gc.C, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	ctx := &cmd.Context{
		Dir:    s.dir,
		Stdin:  &bytes.Buffer{},
		Stdout: &stdout,
		Stderr: &stderr,
	}
	code := cmd.Main(NewSuperCommand(), ctx, args)
	return code, stdout.String(), stderr.String()
}

func (s *MainSuite) add(c *gc.C, args ...string) contact.Id {
	code, stdout, stderr := s.run(c, append([]string{"add"}, args...)...)
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	id, err := contact.ParseId(strings.TrimSpace(stdout))
	c.Assert(err, jc.ErrorIsNil)
	return id
}

func (s *MainSuite) list(c *gc.C, args ...string) []contactSummary {
	args = append([]string{"list", "--format", "json"}, args...)
	code, stdout, stderr := s.run(c, args...)
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	var summaries []contactSummary
	c.Assert(json.Unmarshal([]byte(stdout), &summaries), jc.ErrorIsNil)
	return summaries
}

func names(summaries []contactSummary) []string {
	var out []string
	for _, s := range summaries {
		out = append(out, s.Name)
	}
	return out
}

func (s *MainSuite) TestHelp(c *gc.C) {
	code, stdout, _ := s.run(c, "help")
	c.Assert(code, gc.Equals, 0)
	for _, name := range []string{"add", "groups", "list", "remove", "set-order", "show"} {
		c.Check(stdout, jc.Contains, "    "+name+" ")
	}
}

func (s *MainSuite) TestListEmpty(c *gc.C) {
	c.Check(s.list(c), gc.HasLen, 0)
}

func (s *MainSuite) TestAddAndList(c *gc.C) {
	ada := s.add(c, "Ada", "Lovelace", "--favorite", "--phone", "+44 1, +44 2")
	s.add(c, "bob")

	summaries := s.list(c)
	c.Check(names(summaries), jc.DeepEquals, []string{"Ada Lovelace", "bob"})
	c.Check(summaries[0], jc.DeepEquals, contactSummary{
		Id:       ada.String(),
		Name:     "Ada Lovelace",
		Group:    "A",
		Favorite: true,
		Phones:   []string{"+44 1", "+44 2"},
	})
	c.Check(summaries[1].Group, gc.Equals, "B")
}

func (s *MainSuite) TestListFavorites(c *gc.C) {
	s.add(c, "Ada", "Lovelace", "--favorite")
	s.add(c, "bob")
	c.Check(names(s.list(c, "favorites")), jc.DeepEquals, []string{"Ada Lovelace"})
}

func (s *MainSuite) TestListTabular(c *gc.C) {
	s.add(c, "Ada", "Lovelace")
	code, stdout, _ := s.run(c, "list")
	c.Assert(code, gc.Equals, 0)
	c.Check(stdout, jc.Contains, "Name")
	c.Check(stdout, jc.Contains, "Ada Lovelace")
}

func (s *MainSuite) TestListUnknownList(c *gc.C) {
	code, _, stderr := s.run(c, "list", "enemies")
	c.Check(code, gc.Equals, 2)
	c.Check(stderr, jc.Contains, `list "enemies" not valid`)
}

func (s *MainSuite) TestListInLastNameFirstOrder(c *gc.C) {
	s.add(c, "Ada", "Lovelace")
	s.add(c, "bob")
	code, _, stderr := s.run(c, "set-order", "--prefs", "prefs.yaml", "last-name-first")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))

	p, err := prefs.Read(filepath.Join(s.dir, "prefs.yaml"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(p.DisplayLabelOrder, gc.Equals, contact.LastNameFirst)

	summaries := s.list(c, "--prefs", "prefs.yaml")
	c.Check(names(summaries), jc.DeepEquals, []string{"bob", "Lovelace Ada"})
	c.Check(summaries[1].Group, gc.Equals, "L")
}

func (s *MainSuite) TestSetOrderNeedsPrefs(c *gc.C) {
	code, _, stderr := s.run(c, "set-order", "last-name-first")
	c.Check(code, gc.Equals, 2)
	c.Check(stderr, jc.Contains, "--prefs must be specified")
}

func (s *MainSuite) TestGroups(c *gc.C) {
	s.add(c, "Ada")
	s.add(c, "alan")
	s.add(c, "bob")
	code, stdout, stderr := s.run(c, "groups", "--format", "json")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	var counts []groupCount
	c.Assert(json.Unmarshal([]byte(stdout), &counts), jc.ErrorIsNil)
	c.Check(counts, jc.DeepEquals, []groupCount{{"A", 2}, {"B", 1}})
}

func (s *MainSuite) TestRemove(c *gc.C) {
	ada := s.add(c, "Ada")
	s.add(c, "bob")
	code, _, stderr := s.run(c, "remove", ada.String())
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stderr, gc.Equals, "")
	c.Check(names(s.list(c)), jc.DeepEquals, []string{"bob"})

	code, _, stderr = s.run(c, "remove", ada.String())
	c.Assert(code, gc.Equals, 0)
	c.Check(stderr, gc.Equals, "removed 0 of 1 contacts\n")
}

func (s *MainSuite) TestRemoveBadId(c *gc.C) {
	code, _, _ := s.run(c, "remove", "not an id")
	c.Check(code, gc.Equals, 2)
}

func (s *MainSuite) TestShow(c *gc.C) {
	ada := s.add(c, "Ada", "Lovelace", "--email", "ada@example.com", "--organization", "Engines")
	code, stdout, stderr := s.run(c, "show", ada.String(), "--format", "json")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	var d personDetails
	c.Assert(json.Unmarshal([]byte(stdout), &d), jc.ErrorIsNil)
	c.Check(d, jc.DeepEquals, personDetails{
		Id:           ada.String(),
		DisplayLabel: "Ada Lovelace",
		Group:        "A",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Organization: "Engines",
		Presence:     "unknown",
		Emails:       []string{"ada@example.com"},
	})
}
