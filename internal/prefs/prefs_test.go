// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package prefs_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/prefs"
)

type prefsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&prefsSuite{})

func (s *prefsSuite) TestParse(c *gc.C) {
	tests := []struct {
		about    string
		data     string
		expected contact.DisplayLabelOrder
		err      string
	}{{
		about:    "empty document",
		expected: contact.FirstNameFirst,
	}, {
		about:    "by name",
		data:     "display-label-order: last-name-first\n",
		expected: contact.LastNameFirst,
	}, {
		about:    "by number",
		data:     "display-label-order: 1\n",
		expected: contact.LastNameFirst,
	}, {
		about:    "unknown settings are ignored",
		data:     "theme: dark\ndisplay-label-order: first-name-first\n",
		expected: contact.FirstNameFirst,
	}, {
		about: "unknown name",
		data:  "display-label-order: surname\n",
		err:   `display-label-order "surname" not valid`,
	}, {
		about: "out of range",
		data:  "display-label-order: 2\n",
		err:   "display label order 2 not valid",
	}, {
		about: "not a map",
		data:  "- display-label-order\n",
		err:   "parsing preferences: .*",
	}}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.about)
		p, err := prefs.Parse([]byte(test.data))
		if test.err != "" {
			c.Check(err, gc.ErrorMatches, test.err)
			continue
		}
		c.Assert(err, jc.ErrorIsNil)
		c.Check(p.DisplayLabelOrder, gc.Equals, test.expected)
	}
}

func (s *prefsSuite) TestWrongTypeIsNotValid(c *gc.C) {
	_, err := prefs.Parse([]byte("display-label-order: [1]\n"))
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *prefsSuite) TestParseDisplayLabelOrder(c *gc.C) {
	order, err := prefs.ParseDisplayLabelOrder("last-name-first")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(order, gc.Equals, contact.LastNameFirst)

	_, err = prefs.ParseDisplayLabelOrder("surname")
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *prefsSuite) TestReadMissingFile(c *gc.C) {
	p, err := prefs.Read(filepath.Join(c.MkDir(), "missing.yaml"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(p.DisplayLabelOrder, gc.Equals, contact.FirstNameFirst)
}

func (s *prefsSuite) TestWriteRead(c *gc.C) {
	path := filepath.Join(c.MkDir(), "prefs.yaml")
	err := prefs.Write(path, prefs.Preferences{DisplayLabelOrder: contact.LastNameFirst})
	c.Assert(err, jc.ErrorIsNil)
	p, err := prefs.Read(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(p.DisplayLabelOrder, gc.Equals, contact.LastNameFirst)
}

func (s *prefsSuite) TestWatcherReportsChanges(c *gc.C) {
	path := filepath.Join(c.MkDir(), "prefs.yaml")
	err := prefs.Write(path, prefs.Preferences{DisplayLabelOrder: contact.FirstNameFirst})
	c.Assert(err, jc.ErrorIsNil)

	w, err := prefs.NewWatcher(path, loggo.GetLogger("test"))
	c.Assert(err, jc.ErrorIsNil)
	defer workertest.CleanKill(c, w)

	// Rewriting the same order is not a change; a bad file is ignored.
	err = prefs.Write(path, prefs.Preferences{DisplayLabelOrder: contact.FirstNameFirst})
	c.Assert(err, jc.ErrorIsNil)
	err = os.WriteFile(path, []byte("display-label-order: surname\n"), 0644)
	c.Assert(err, jc.ErrorIsNil)
	err = prefs.Write(path, prefs.Preferences{DisplayLabelOrder: contact.LastNameFirst})
	c.Assert(err, jc.ErrorIsNil)

	select {
	case order := <-w.Changes():
		c.Check(order, gc.Equals, contact.LastNameFirst)
	case <-time.After(testing.LongWait):
		c.Fatalf("timed out waiting for change")
	}
	select {
	case order := <-w.Changes():
		c.Fatalf("unexpected change to %s", order)
	case <-time.After(testing.ShortWait):
	}
}
