// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
	"github.com/bureau-foundation/experiment/lib/experimentdef"
)

func diffCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "diff",
		Summary: "Compare two definitions bucket by bucket",
		Description: `Compare two definitions bucket by bucket.

Buckets are paired by name. A pair is reported as modified when any of
value, description, or payload differs. Exits 1 when there are changes
and 0 when the definitions match.`,
		Usage: binaryName + " diff OLD NEW",
		Run: func(args []string) error {
			if len(args) != 2 {
				return cli.Usage("diff requires OLD and NEW, got %d arguments", len(args))
			}
			return runDiff(env, args[0], args[1])
		},
	}
}

func runDiff(env *environment, oldPath, newPath string) error {
	previous, err := env.loadDefinition(oldPath)
	if err != nil {
		return err
	}
	current, err := env.loadDefinition(newPath)
	if err != nil {
		return err
	}

	changes := experimentdef.Diff(previous, current)
	if len(changes) == 0 {
		env.logger.Debug("definitions match", "old", oldPath, "new", newPath)
		return nil
	}

	for _, change := range changes {
		switch change.Kind {
		case experimentdef.ChangeRemoved:
			fmt.Fprintf(env.stdout, "- %s\n", describeBucket(change.Old))
		case experimentdef.ChangeAdded:
			fmt.Fprintf(env.stdout, "+ %s\n", describeBucket(change.New))
		case experimentdef.ChangeModified:
			fmt.Fprintf(env.stdout, "~ %s\n", change.Name)
			if change.Old.Value() != change.New.Value() {
				fmt.Fprintf(env.stdout, "    value: %d -> %d\n", change.Old.Value(), change.New.Value())
			}
			if change.Old.Description() != change.New.Description() {
				fmt.Fprintf(env.stdout, "    description: %q -> %q\n", change.Old.Description(), change.New.Description())
			}
			oldPayload, newPayload := describePayload(change.Old), describePayload(change.New)
			if oldPayload != newPayload {
				fmt.Fprintf(env.stdout, "    payload: %s -> %s\n", oldPayload, newPayload)
			}
		}
	}
	return &cli.ExitError{Code: cli.ExitCodeMismatch}
}
