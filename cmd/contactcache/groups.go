// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/namegroup"
)

type groupCount struct {
	Group string `yaml:"group" json:"group"`
	Count int    `yaml:"count" json:"count"`
}

type groupsCommand struct {
	storeCommand
	out cmd.Output
}

func newGroupsCommand() cmd.Command {
	return &groupsCommand{}
}

// Info implements cmd.Command.
func (c *groupsCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "groups",
		Purpose: "show the number of contacts in each name group",
		Doc: `
Shows how many of all contacts fall into each non-empty name group, in
display order.
`,
	}
}

// SetFlags implements cmd.Command.
func (c *groupsCommand) SetFlags(f *gnuflag.FlagSet) {
	c.storeCommand.SetFlags(f)
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatGroupsTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Run implements cmd.Command.
func (c *groupsCommand) Run(ctx *cmd.Context) (err error) {
	s, err := c.openSession(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	cc, release, err := s.populated(cache.FilterAll)
	if err != nil {
		return errors.Trace(err)
	}
	defer release()

	counts := cc.NameGroupCounts()
	result := []groupCount{}
	for _, group := range namegroup.Groups() {
		if n := counts[group]; n > 0 {
			result = append(result, groupCount{Group: group, Count: n})
		}
	}
	return c.out.Write(ctx, result)
}

func formatGroupsTabular(writer io.Writer, value interface{}) error {
	counts, ok := value.([]groupCount)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", counts, value)
	}
	table := uitable.New()
	table.RightAlign(1)
	table.AddRow("Group", "Contacts")
	for _, g := range counts {
		table.AddRow(g.Group, g.Count)
	}
	_, err := fmt.Fprintln(writer, table)
	return errors.Trace(err)
}
