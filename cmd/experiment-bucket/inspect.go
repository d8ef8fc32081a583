// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
	"github.com/bureau-foundation/experiment/lib/codec"
	"github.com/bureau-foundation/experiment/lib/compression"
	"github.com/bureau-foundation/experiment/lib/experimentdef"
)

func inspectCommand(env *environment) *cli.Command {
	var diagnostic bool

	return &cli.Command{
		Name:    "inspect",
		Summary: "Print a definition as canonical JSON",
		Description: `Print a definition as indented canonical JSON.

Accepts source files and encoded frames. For a frame, the body format
and compression are logged. With --diag, a CBOR frame's body is printed
in CBOR diagnostic notation instead.`,
		Usage: binaryName + " inspect FILE [--diag]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&diagnostic, "diag", false, "print a CBOR body in diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Usage("inspect requires exactly one FILE, got %d arguments", len(args))
			}
			return runInspect(env, args[0], diagnostic)
		},
	}
}

func runInspect(env *environment, path string, diagnostic bool) error {
	resolved := env.config.DefinitionPath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("reading %s: %w", resolved, err)
	}

	var definition *experimentdef.Definition
	if experimentdef.IsFrame(data) {
		body, tag, err := compression.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", resolved, err)
		}

		var format experimentdef.Format
		definition, format, err = experimentdef.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", resolved, err)
		}
		env.logger.Info("encoded definition",
			"path", resolved,
			"format", string(format),
			"compression", tag.String(),
			"frame_bytes", len(data),
			"body_bytes", len(body),
		)

		if diagnostic {
			if format != experimentdef.FormatCBOR {
				return cli.Usage("--diag requires a CBOR body, %s has %s", path, format)
			}
			text, err := codec.Diagnose(body)
			if err != nil {
				return fmt.Errorf("%s: %w", resolved, err)
			}
			fmt.Fprintln(env.stdout, text)
			return nil
		}
	} else {
		if diagnostic {
			return cli.Usage("--diag requires an encoded CBOR definition, %s is a source file", path)
		}
		definition, err = experimentdef.ReadFile(resolved)
		if err != nil {
			return err
		}
	}

	output, err := json.MarshalIndent(definition, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	fmt.Fprintln(env.stdout, string(output))
	return nil
}
