// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the experiment-bucket command tree. A node
// either dispatches to Subcommands or parses its Flags and calls Run.
type Command struct {
	// Name is the word typed to select this command, e.g. "convert".
	Name string

	// Summary is the one-line entry in the parent's command list.
	Summary string

	// Description is the longer text at the top of this command's
	// help. Summary is used when it is empty.
	Description string

	// Usage is the synopsis line, e.g. "experiment-bucket diff OLD NEW".
	// Built from the command path when empty.
	Usage string

	// Examples are listed at the end of the help text.
	Examples []Example

	// Flags builds a fresh flag set. It may be called more than once:
	// for parsing, for help, and for flag suggestions. Nil means the
	// command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are selected by the first positional argument.
	Subcommands []*Command

	// Run receives the positional arguments left after flag parsing.
	Run func(args []string) error

	// HelpOutput receives help text. Nil defers to the parent, then to
	// os.Stderr.
	HelpOutput io.Writer

	parent *Command
}

// Example is one commented command line in help output.
type Example struct {
	Description string
	Command     string
}

// Execute runs the command tree against args. Bad input comes back as
// a *UsageError so callers can map it to an exit code.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.helpOutput())
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return c.dispatch(args[0], args[1:])
		}
		if c.Run == nil {
			c.PrintHelp(c.helpOutput())
			if len(args) == 0 {
				return Usage("subcommand required")
			}
			return Usage("subcommand required (got flag %q)", args[0])
		}
	}

	positional, err := c.parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.PrintHelp(c.helpOutput())
			return nil
		}
		return err
	}

	if c.Run == nil {
		c.PrintHelp(c.helpOutput())
		return fmt.Errorf("%s has nothing to run", c.fullName())
	}
	return c.Run(positional)
}

func (c *Command) dispatch(name string, args []string) error {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(args)
		}
	}

	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return Usage("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return Usage("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// parseFlags returns the positional arguments. pflag's own error and
// usage printing is silenced; failures become usage errors with a
// flag suggestion when one is close enough.
func (c *Command) parseFlags(args []string) ([]string, error) {
	if c.Flags == nil {
		return args, nil
	}

	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)
	err := flagSet.Parse(args)
	if err == nil {
		return flagSet.Args(), nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil, err
	}

	message := err.Error()
	if strings.Contains(message, "unknown flag") {
		// Suggest from a new set; the failed one is partly parsed.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			return nil, Usage("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
				message, suggestion, c.fullName())
		}
	}
	return nil, Usage("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// PrintHelp writes the description, synopsis, commands, flags, and
// examples sections to w. Empty sections are left out.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	switch {
	case c.Description != "":
		fmt.Fprintf(w, "%s\n\n", c.Description)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	fmt.Fprintf(w, "Usage:\n  %s\n", c.synopsis(name))

	if len(c.Subcommands) > 0 {
		fmt.Fprint(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if defaults := c.flagDefaults(); defaults != "" {
		fmt.Fprintf(w, "\nFlags:\n%s", defaults)
	}

	if len(c.Examples) > 0 {
		fmt.Fprint(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description == "" {
				fmt.Fprintf(w, "  %s\n", example.Command)
				continue
			}
			fmt.Fprintf(w, "  # %s\n  %s\n\n", example.Description, example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

func (c *Command) synopsis(name string) string {
	switch {
	case c.Usage != "":
		return c.Usage
	case len(c.Subcommands) > 0:
		return name + " <command> [flags]"
	default:
		return name + " [flags]"
	}
}

func (c *Command) flagDefaults() string {
	if c.Flags == nil {
		return ""
	}
	var defaults strings.Builder
	flagSet := c.Flags()
	flagSet.SetOutput(&defaults)
	flagSet.PrintDefaults()
	return defaults.String()
}

// fullName is the command path from the root, e.g.
// "experiment-bucket diff".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) helpOutput() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.HelpOutput != nil {
			return command.HelpOutput
		}
	}
	return os.Stderr
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
