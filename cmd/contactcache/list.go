// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
	"github.com/kananoja/nemo-qml-plugin-contacts/core/namegroup"
)

// populatedObserver is a list observer that only waits for the list to be
// populated.
type populatedObserver struct {
	once sync.Once
	done chan struct{}
}

func newPopulatedObserver() *populatedObserver {
	return &populatedObserver{done: make(chan struct{})}
}

func (o *populatedObserver) SourceAboutToRemoveItems(begin, end int) {}
func (o *populatedObserver) SourceItemsRemoved()                     {}
func (o *populatedObserver) SourceAboutToInsertItems(begin, end int) {}
func (o *populatedObserver) SourceItemsInserted(begin, end int)      {}
func (o *populatedObserver) SourceDataChanged(begin, end int)        {}
func (o *populatedObserver) UpdateDisplayLabelOrder()                {}

func (o *populatedObserver) MakePopulated() {
	o.once.Do(func() { close(o.done) })
}

// contactSummary is the listed form of a contact.
type contactSummary struct {
	Id       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Group    string   `yaml:"group" json:"group"`
	Favorite bool     `yaml:"favorite,omitempty" json:"favorite,omitempty"`
	Presence string   `yaml:"presence,omitempty" json:"presence,omitempty"`
	Phones   []string `yaml:"phones,omitempty" json:"phones,omitempty"`
}

func summarize(ct contact.Contact, order contact.DisplayLabelOrder) contactSummary {
	label := contact.DisplayLabel(ct, order)
	s := contactSummary{
		Id:       ct.Id.String(),
		Name:     label,
		Group:    namegroup.Classify(ct, label, order),
		Favorite: ct.Favorite,
		Phones:   ct.PhoneNumbers,
	}
	if ct.Presence != contact.PresenceUnknown {
		s.Presence = ct.Presence.String()
	}
	return s
}

var listFilters = map[string]cache.FilterType{
	"all":       cache.FilterAll,
	"favorites": cache.FilterFavorites,
	"online":    cache.FilterOnline,
}

type listCommand struct {
	storeCommand
	out    cmd.Output
	filter cache.FilterType
}

func newListCommand() cmd.Command {
	return &listCommand{}
}

const listDoc = `
Lists the contacts of one of the cached lists, in display order. The list
is one of "all", the default, "favorites" or "online".

Examples:
    contactcache list
    contactcache list favorites --format yaml
`

// Info implements cmd.Command.
func (c *listCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "list",
		Args:        "[all|favorites|online]",
		Purpose:     "list cached contacts",
		Doc:         listDoc,
		Intersperse: true,
	}
}

// SetFlags implements cmd.Command.
func (c *listCommand) SetFlags(f *gnuflag.FlagSet) {
	c.storeCommand.SetFlags(f)
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatContactsTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init implements cmd.Command.
func (c *listCommand) Init(args []string) error {
	c.filter = cache.FilterAll
	if len(args) == 0 {
		return nil
	}
	filter, ok := listFilters[args[0]]
	if !ok {
		return errors.NotValidf("list %q", args[0])
	}
	c.filter = filter
	return cmd.CheckEmpty(args[1:])
}

// Run implements cmd.Command.
func (c *listCommand) Run(ctx *cmd.Context) (err error) {
	s, err := c.openSession(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	cc, release, err := s.populated(c.filter)
	if err != nil {
		return errors.Trace(err)
	}
	defer release()

	order := cc.DisplayLabelOrder()
	summaries := []contactSummary{}
	for _, key := range cc.Contacts(c.filter) {
		ct, ok := cc.Contact(key)
		if !ok {
			continue
		}
		summaries = append(summaries, summarize(ct, order))
	}
	return c.out.Write(ctx, summaries)
}

func formatContactsTabular(writer io.Writer, value interface{}) error {
	summaries, ok := value.([]contactSummary)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", summaries, value)
	}
	table := uitable.New()
	table.MaxColWidth = 50
	table.Wrap = true
	table.AddRow("Name", "Group", "Favorite", "Phone", "Id")
	for _, s := range summaries {
		favorite := ""
		if s.Favorite {
			favorite = "*"
		}
		table.AddRow(s.Name, s.Group, favorite, strings.Join(s.Phones, ", "), s.Id)
	}
	_, err := fmt.Fprintln(writer, table)
	return errors.Trace(err)
}
