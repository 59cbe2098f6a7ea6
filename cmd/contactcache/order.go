// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/internal/prefs"
)

type setOrderCommand struct {
	cmd.CommandBase
	prefsPath string
	order     contact.DisplayLabelOrder
}

func newSetOrderCommand() cmd.Command {
	return &setOrderCommand{}
}

// Info implements cmd.Command.
func (c *setOrderCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "set-order",
		Args:    "<first-name-first|last-name-first>",
		Purpose: "set the display label order",
		Doc: `
Writes the display label order to the preferences file. Running caches
reading the same file relabel and resort their lists.
`,
		Intersperse: true,
	}
}

// SetFlags implements cmd.Command.
func (c *setOrderCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.prefsPath, "prefs", "", "Path of the preferences file")
}

// Init implements cmd.Command.
func (c *setOrderCommand) Init(args []string) error {
	if c.prefsPath == "" {
		return errors.New("--prefs must be specified")
	}
	if len(args) == 0 {
		return errors.New("no display label order specified")
	}
	order, err := prefs.ParseDisplayLabelOrder(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	c.order = order
	return cmd.CheckEmpty(args[1:])
}

// Run implements cmd.Command.
func (c *setOrderCommand) Run(ctx *cmd.Context) error {
	path := ctx.AbsPath(c.prefsPath)
	p, err := prefs.Read(path)
	if err != nil {
		return errors.Trace(err)
	}
	p.DisplayLabelOrder = c.order
	return errors.Trace(prefs.Write(path, p))
}
