// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"strings"

	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

type addCommand struct {
	storeCommand
	contact contact.Contact
	phones  string
	emails  string
}

func newAddCommand() cmd.Command {
	return &addCommand{}
}

// Info implements cmd.Command.
func (c *addCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "add",
		Args:    "<first-name> [<last-name>]",
		Purpose: "add a contact",
		Doc: `
Adds a contact to the store and prints its id.

Examples:
    contactcache add Ada Lovelace --phone "+44 1234 5678" --favorite
`,
		Intersperse: true,
	}
}

// SetFlags implements cmd.Command.
func (c *addCommand) SetFlags(f *gnuflag.FlagSet) {
	c.storeCommand.SetFlags(f)
	f.BoolVar(&c.contact.Favorite, "favorite", false, "Mark the contact as a favorite")
	f.StringVar(&c.contact.Nickname, "nickname", "", "Nickname of the contact")
	f.StringVar(&c.contact.Organization, "organization", "", "Organization of the contact")
	f.StringVar(&c.phones, "phone", "", "Comma separated phone numbers")
	f.StringVar(&c.emails, "email", "", "Comma separated email addresses")
}

// Init implements cmd.Command.
func (c *addCommand) Init(args []string) error {
	switch len(args) {
	case 0:
		return errors.New("no name specified")
	case 1:
		c.contact.Name.First = args[0]
	default:
		c.contact.Name.First, c.contact.Name.Last = args[0], args[1]
		args = args[1:]
	}
	c.contact.PhoneNumbers = splitList(c.phones)
	c.contact.EmailAddresses = splitList(c.emails)
	return cmd.CheckEmpty(args[1:])
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return transform.Slice(strings.Split(s, ","), strings.TrimSpace)
}

// Run implements cmd.Command.
func (c *addCommand) Run(ctx *cmd.Context) (err error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := backend.Close(); err == nil {
			err = closeErr
		}
	}()

	req, err := backend.SaveContacts([]contact.Contact{c.contact})
	if err != nil {
		return errors.Trace(err)
	}
	results, err := c.wait(req)
	if err != nil {
		return errors.Annotate(err, "saving contact")
	}
	for _, result := range results {
		for _, ct := range result.Contacts {
			fmt.Fprintln(ctx.Stdout, ct.Id)
		}
	}
	return nil
}

type removeCommand struct {
	storeCommand
	ids []contact.Id
}

func newRemoveCommand() cmd.Command {
	return &removeCommand{}
}

// Info implements cmd.Command.
func (c *removeCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "remove",
		Args:        "<id> ...",
		Purpose:     "remove contacts",
		Intersperse: true,
	}
}

// Init implements cmd.Command.
func (c *removeCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no contact id specified")
	}
	for _, arg := range args {
		id, err := contact.ParseId(arg)
		if err != nil {
			return errors.Trace(err)
		}
		c.ids = append(c.ids, id)
	}
	return nil
}

// Run implements cmd.Command.
func (c *removeCommand) Run(ctx *cmd.Context) (err error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := backend.Close(); err == nil {
			err = closeErr
		}
	}()

	req, err := backend.RemoveContacts(c.ids)
	if err != nil {
		return errors.Trace(err)
	}
	results, err := c.wait(req)
	if err != nil {
		return errors.Annotate(err, "removing contacts")
	}
	removed := 0
	for _, result := range results {
		removed += len(result.Ids)
	}
	if removed < len(c.ids) {
		ctx.Infof("removed %d of %d contacts", removed, len(c.ids))
	}
	return nil
}
