// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/worker/v4"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// personDetails is the shown form of a person.
type personDetails struct {
	Id           string   `yaml:"id" json:"id"`
	DisplayLabel string   `yaml:"display-label" json:"display-label"`
	Group        string   `yaml:"group" json:"group"`
	FirstName    string   `yaml:"first-name,omitempty" json:"first-name,omitempty"`
	MiddleName   string   `yaml:"middle-name,omitempty" json:"middle-name,omitempty"`
	LastName     string   `yaml:"last-name,omitempty" json:"last-name,omitempty"`
	Nickname     string   `yaml:"nickname,omitempty" json:"nickname,omitempty"`
	Organization string   `yaml:"organization,omitempty" json:"organization,omitempty"`
	Favorite     bool     `yaml:"favorite" json:"favorite"`
	Presence     string   `yaml:"presence" json:"presence"`
	Phones       []string `yaml:"phones,omitempty" json:"phones,omitempty"`
	Emails       []string `yaml:"emails,omitempty" json:"emails,omitempty"`
	Accounts     []string `yaml:"accounts,omitempty" json:"accounts,omitempty"`
}

func details(p *cache.Person) personDetails {
	ct := p.Contact
	return personDetails{
		Id:           ct.Id.String(),
		DisplayLabel: p.DisplayLabel,
		Group:        p.NameGroup,
		FirstName:    ct.Name.First,
		MiddleName:   ct.Name.Middle,
		LastName:     ct.Name.Last,
		Nickname:     ct.Nickname,
		Organization: ct.Organization,
		Favorite:     ct.Favorite,
		Presence:     ct.Presence.String(),
		Phones:       ct.PhoneNumbers,
		Emails:       ct.EmailAddresses,
		Accounts:     ct.OnlineAccounts,
	}
}

type showCommand struct {
	storeCommand
	out cmd.Output
	id  contact.Id
}

func newShowCommand() cmd.Command {
	return &showCommand{}
}

// Info implements cmd.Command.
func (c *showCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "show",
		Args:    "<id>",
		Purpose: "show the details of a contact",
		Doc: `
Shows every detail of a contact, fetching it into the cache first.

Examples:
    contactcache show org.nemomobile.contacts.sqlite::sql-3
`,
		Intersperse: true,
	}
}

// SetFlags implements cmd.Command.
func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	c.storeCommand.SetFlags(f)
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

// Init implements cmd.Command.
func (c *showCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no contact id specified")
	}
	id, err := contact.ParseId(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	c.id = id
	return cmd.CheckEmpty(args[1:])
}

// Run implements cmd.Command.
func (c *showCommand) Run(ctx *cmd.Context) (err error) {
	s, err := c.openSession(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	cc, release, err := s.manager.Acquire()
	if err != nil {
		return errors.Trace(err)
	}
	defer release()

	// Watch first so the snapshot completing the person is not missed.
	w := cc.WatchPerson(c.id.Key())
	defer func() { _ = worker.Stop(w) }()

	p, err := cc.Person(c.id)
	if err != nil {
		return errors.Trace(err)
	}
	timeout := s.clock.After(c.timeout)
	for current := &p; !current.Complete; {
		select {
		case current = <-w.Changes():
			if current == nil {
				return errors.New("person watcher stopped")
			}
			p = *current
		case <-timeout:
			return errors.NotFoundf("contact %s", c.id)
		}
	}
	return c.out.Write(ctx, details(&p))
}
