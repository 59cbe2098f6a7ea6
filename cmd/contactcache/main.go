// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/juju/loggo/v2"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
)

var logger = loggo.GetLogger("contactcache.cmd.contactcache")

const contactcacheDoc = `
contactcache lists and edits the contacts held in a sqlite contact store,
reading them through the contact cache. Lists are ordered and labelled by
the display label order found in the preferences file.
`

// NewSuperCommand returns the contactcache command with every subcommand
// registered.
func NewSuperCommand() *cmd.SuperCommand {
	sc := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "contactcache",
		Purpose: "inspect and edit cached contacts",
		Doc:     contactcacheDoc,
	})
	sc.Register(newListCommand())
	sc.Register(newGroupsCommand())
	sc.Register(newShowCommand())
	sc.Register(newAddCommand())
	sc.Register(newRemoveCommand())
	sc.Register(newSetOrderCommand())
	return sc
}

// Main registers subcommands for the contactcache executable, and hands over
// control to the cmd package.
func Main(args []string) int {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return cmd.Main(NewSuperCommand(), ctx, args[1:])
}

func main() {
	os.Exit(Main(os.Args))
}
