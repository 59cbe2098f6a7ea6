// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

// SuperCommandParams provides a way to have default parameter to the
// NewSuperCommand call.
type SuperCommandParams struct {
	Name    string
	Purpose string
	Doc     string
}

// SuperCommand is a Command that selects a subcommand and assumes its
// properties; any command line arguments that were not used in selecting
// the subcommand are passed down to it.
type SuperCommand struct {
	CommandBase
	Name    string
	Purpose string
	Doc     string

	subcmds map[string]Command
	action  Command
	help    bool

	debug         bool
	loggingConfig string
}

// NewSuperCommand creates and initializes a new SuperCommand.
func NewSuperCommand(p SuperCommandParams) *SuperCommand {
	return &SuperCommand{
		Name:    p.Name,
		Purpose: p.Purpose,
		Doc:     p.Doc,
		subcmds: make(map[string]Command),
	}
}

// Register makes a subcommand available for use on the command line. The
// command will be available via its own name.
func (c *SuperCommand) Register(subcmd Command) {
	name := subcmd.Info().Name
	if _, found := c.subcmds[name]; found || name == "help" {
		panic(fmt.Sprintf("command already registered: %q", name))
	}
	c.subcmds[name] = subcmd
}

// Info returns a description of the currently selected subcommand, or of the
// SuperCommand itself if no subcommand has been specified.
func (c *SuperCommand) Info() *Info {
	if c.action != nil {
		info := *c.action.Info()
		info.Name = c.Name + " " + info.Name
		return &info
	}
	var doc bytes.Buffer
	if d := strings.TrimSpace(c.Doc); d != "" {
		fmt.Fprintf(&doc, "%s\n\n", d)
	}
	doc.WriteString("commands:\n")
	names := make([]string, 0, len(c.subcmds))
	for name := range c.subcmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&doc, "    %-10s - %s\n", name, c.subcmds[name].Info().Purpose)
	}
	return &Info{
		Name:    c.Name,
		Args:    "<command> ...",
		Purpose: c.Purpose,
		Doc:     doc.String(),
	}
}

// SetFlags adds the options that apply to all commands, and those of the
// selected subcommand.
func (c *SuperCommand) SetFlags(f *gnuflag.FlagSet) {
	f.BoolVar(&c.debug, "debug", false, "Equivalent to --logging-config=<root>=DEBUG")
	f.StringVar(&c.loggingConfig, "logging-config", "", "Specify log levels for modules")
	if c.action != nil {
		c.action.SetFlags(f)
	}
}

// Init initializes the command for running.
func (c *SuperCommand) Init(args []string) error {
	if len(args) == 0 {
		c.help = true
		return nil
	}
	name, args := args[0], args[1:]
	if name == "help" {
		c.help = true
		if len(args) == 0 {
			return nil
		}
		name, args = args[0], args[1:]
	}
	action, found := c.subcmds[name]
	if !found {
		return errors.Errorf("unrecognized command: %s %s", c.Name, name)
	}
	c.action = action
	if c.help {
		return CheckEmpty(args)
	}

	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	action.SetFlags(f)
	if err := f.Parse(action.Info().Intersperse, args); err != nil {
		if errors.Is(err, gnuflag.ErrHelp) {
			c.help = true
			return nil
		}
		return err
	}
	return action.Init(f.Args())
}

// Run executes the subcommand that was selected in Init.
func (c *SuperCommand) Run(ctx *Context) error {
	if c.help {
		var help []byte
		if c.action != nil {
			help = Help(c.action)
			help = bytes.Replace(help, []byte("usage: "), []byte("usage: "+c.Name+" "), 1)
		} else {
			help = Help(c)
		}
		_, err := ctx.Stdout.Write(help)
		return errors.Trace(err)
	}
	if err := c.configureLogging(); err != nil {
		return errors.Trace(err)
	}
	logger.Infof("running %s %s", c.Name, c.action.Info().Name)
	return c.action.Run(ctx)
}

func (c *SuperCommand) configureLogging() error {
	var specs []string
	if c.debug {
		specs = append(specs, "<root>=DEBUG")
	}
	if c.loggingConfig != "" {
		specs = append(specs, c.loggingConfig)
	}
	if len(specs) == 0 {
		return nil
	}
	return errors.Annotate(loggo.ConfigureLoggers(strings.Join(specs, ";")), "configuring logging")
}
