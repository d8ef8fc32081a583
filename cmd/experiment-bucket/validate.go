// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
)

func validateCommand(env *environment) *cli.Command {
	var (
		strict  bool
		flagSet *pflag.FlagSet
	)

	return &cli.Command{
		Name:    "validate",
		Summary: "Check definition files for structural issues",
		Description: `Check definition files for structural issues.

Every file is checked for a supported version, unique bucket names, and
unique bucket values. In strict mode (--strict or validation.strict in
the config) the definition must also have a name, at least one bucket,
and no empty bucket names. --strict=false relaxes a strict config for
one run. Issues are printed one per line. Files that cannot be read
are reported and the remaining files are still checked.`,
		Usage: binaryName + " validate [--strict] FILE...",
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.BoolVar(&strict, "strict", false, "apply strict checks (default: validation.strict from config)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Usage("validate requires at least one FILE")
			}
			if !flagSet.Changed("strict") {
				strict = env.config.Validation.Strict
			}
			return runValidate(env, args, strict)
		},
	}
}

func runValidate(env *environment, paths []string, strict bool) error {
	failed := false
	unreadable := 0
	for _, path := range paths {
		definition, err := env.loadDefinition(path)
		if err != nil {
			fmt.Fprintf(env.stderr, "%s: %v\n", path, err)
			unreadable++
			continue
		}

		issues := env.checkDefinition(path, definition, strict)
		if len(issues) == 0 {
			fmt.Fprintf(env.stdout, "%s: ok (%d buckets)\n", path, len(definition.Buckets))
			continue
		}

		failed = true
		for _, issue := range issues {
			fmt.Fprintf(env.stdout, "%s: %s\n", path, issue)
		}
	}

	if unreadable > 0 {
		return fmt.Errorf("%d of %d files could not be loaded", unreadable, len(paths))
	}
	if failed {
		return &cli.ExitError{Code: cli.ExitCodeMismatch}
	}
	return nil
}
