// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/juju/gnuflag"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/kananoja/nemo-qml-plugin-contacts/cmd"
)

type CmdSuite struct{}

var _ = gc.Suite(&CmdSuite{})

func newContext(c *gc.C) *cmd.Context {
	return &cmd.Context{
		Dir:    c.MkDir(),
		Stdin:  &bytes.Buffer{},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
}

func stdout(ctx *cmd.Context) string {
	return ctx.Stdout.(*bytes.Buffer).String()
}

func stderr(ctx *cmd.Context) string {
	return ctx.Stderr.(*bytes.Buffer).String()
}

// testCommand is used by several different tests.
type testCommand struct {
	cmd.CommandBase
	name   string
	option string
}

func (c *testCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    c.name,
		Args:    "<something>",
		Purpose: c.name + " the thing",
		Doc:     c.name + "-doc",
	}
}

func (c *testCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.option, "option", "", "option-doc")
}

func (c *testCommand) Run(ctx *cmd.Context) error {
	switch c.option {
	case "error":
		return errors.New("BAM!")
	case "silent-error":
		return cmd.ErrSilent
	case "echo":
		_, err := io.Copy(ctx.Stdout, ctx.Stdin)
		return err
	default:
		fmt.Fprintln(ctx.Stdout, c.option)
	}
	return nil
}

func (s *CmdSuite) TestMainSuccess(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"--option", "success!"})
	c.Check(code, gc.Equals, 0)
	c.Check(stdout(ctx), gc.Equals, "success!\n")
	c.Check(stderr(ctx), gc.Equals, "")
}

func (s *CmdSuite) TestMainEcho(c *gc.C) {
	ctx := newContext(c)
	ctx.Stdin = bytes.NewBufferString("hello\n")
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"--option", "echo"})
	c.Check(code, gc.Equals, 0)
	c.Check(stdout(ctx), gc.Equals, "hello\n")
}

func (s *CmdSuite) TestMainRunError(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"--option", "error"})
	c.Check(code, gc.Equals, 1)
	c.Check(stderr(ctx), gc.Equals, "ERROR BAM!\n")
}

func (s *CmdSuite) TestMainRunSilentError(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"--option", "silent-error"})
	c.Check(code, gc.Equals, 1)
	c.Check(stderr(ctx), gc.Equals, "")
}

func (s *CmdSuite) TestMainInitError(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"unexpected"})
	c.Check(code, gc.Equals, 2)
	c.Check(stderr(ctx), gc.Equals, `ERROR unrecognized args: ["unexpected"]`+"\n")
}

func (s *CmdSuite) TestMainUnknownFlag(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{"--unknown"})
	c.Check(code, gc.Equals, 2)
	c.Check(stderr(ctx), jc.Contains, "flag provided but not defined")
}

func (s *CmdSuite) TestMainHelp(c *gc.C) {
	for _, arg := range []string{"-h", "--help"} {
		ctx := newContext(c)
		code := cmd.Main(&testCommand{name: "verb"}, ctx, []string{arg})
		c.Check(code, gc.Equals, 0)
		help := stdout(ctx)
		c.Check(help, jc.HasPrefix, "usage: verb [options] <something>\npurpose: verb the thing\n")
		c.Check(help, jc.Contains, "option-doc")
		c.Check(help, jc.HasSuffix, "\nverb-doc\n")
	}
}

func (s *CmdSuite) TestContextAbsPath(c *gc.C) {
	ctx := &cmd.Context{Dir: "/some/dir"}
	c.Check(ctx.AbsPath("file"), gc.Equals, filepath.Join("/some/dir", "file"))
	c.Check(ctx.AbsPath("/abs/file"), gc.Equals, "/abs/file")
}

type SuperCommandSuite struct{}

var _ = gc.Suite(&SuperCommandSuite{})

func newSuperCommand() *cmd.SuperCommand {
	sc := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "contacts",
		Purpose: "manage things",
		Doc:     "contacts-doc",
	})
	sc.Register(&testCommand{name: "flip"})
	sc.Register(&testCommand{name: "flap"})
	return sc
}

func (s *SuperCommandSuite) TestDispatch(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(newSuperCommand(), ctx, []string{"flap", "--option", "done"})
	c.Check(code, gc.Equals, 0)
	c.Check(stdout(ctx), gc.Equals, "done\n")
}

func (s *SuperCommandSuite) TestUnknownCommand(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(newSuperCommand(), ctx, []string{"flop"})
	c.Check(code, gc.Equals, 2)
	c.Check(stderr(ctx), gc.Equals, "ERROR unrecognized command: contacts flop\n")
}

func (s *SuperCommandSuite) TestHelpListsCommands(c *gc.C) {
	for _, args := range [][]string{nil, {"help"}} {
		ctx := newContext(c)
		code := cmd.Main(newSuperCommand(), ctx, args)
		c.Check(code, gc.Equals, 0)
		help := stdout(ctx)
		c.Check(help, jc.HasPrefix, "usage: contacts [options] <command> ...\npurpose: manage things\n")
		c.Check(help, jc.Contains, "contacts-doc\n\ncommands:\n")
		c.Check(help, jc.Contains, "    flap       - flap the thing\n    flip       - flip the thing\n")
	}
}

func (s *SuperCommandSuite) TestHelpForCommand(c *gc.C) {
	for _, args := range [][]string{{"help", "flip"}, {"flip", "--help"}} {
		ctx := newContext(c)
		code := cmd.Main(newSuperCommand(), ctx, args)
		c.Check(code, gc.Equals, 0)
		c.Check(stdout(ctx), jc.HasPrefix, "usage: contacts flip [options] <something>\n")
	}
}

func (s *SuperCommandSuite) TestRegisterTwicePanics(c *gc.C) {
	sc := newSuperCommand()
	c.Assert(func() { sc.Register(&testCommand{name: "flip"}) }, gc.PanicMatches, `command already registered: "flip"`)
}

type OutputSuite struct{}

var _ = gc.Suite(&OutputSuite{})

type outputCommand struct {
	cmd.CommandBase
	out   cmd.Output
	value interface{}
}

func (c *outputCommand) Info() *cmd.Info {
	return &cmd.Info{Name: "output"}
}

func (c *outputCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

func (c *outputCommand) Run(ctx *cmd.Context) error {
	return c.out.Write(ctx, c.value)
}

func (s *OutputSuite) TestFormats(c *gc.C) {
	value := map[string]int{"alice": 1}
	for _, t := range []struct {
		args   []string
		output string
	}{
		{nil, "alice: 1\n"},
		{[]string{"--format", "yaml"}, "alice: 1\n"},
		{[]string{"--format", "json"}, `{"alice":1}` + "\n"},
	} {
		ctx := newContext(c)
		code := cmd.Main(&outputCommand{value: value}, ctx, t.args)
		c.Check(code, gc.Equals, 0)
		c.Check(stdout(ctx), gc.Equals, t.output)
	}
}

func (s *OutputSuite) TestUnknownFormat(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&outputCommand{}, ctx, []string{"--format", "xml"})
	c.Check(code, gc.Equals, 2)
	c.Check(stderr(ctx), jc.Contains, `unknown format "xml"`)
}

func (s *OutputSuite) TestOutputFile(c *gc.C) {
	ctx := newContext(c)
	code := cmd.Main(&outputCommand{value: "hello"}, ctx, []string{"-o", "out.yaml"})
	c.Assert(code, gc.Equals, 0)
	c.Check(stdout(ctx), gc.Equals, "")
	data, err := os.ReadFile(filepath.Join(ctx.Dir, "out.yaml"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Equals, "hello\n")
}
