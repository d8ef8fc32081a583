// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
	"github.com/bureau-foundation/experiment/lib/compression"
	"github.com/bureau-foundation/experiment/lib/experimentdef"
)

type convertOptions struct {
	format      string
	compression string
	output      string
}

func convertCommand(env *environment) *cli.Command {
	var options convertOptions

	return &cli.Command{
		Name:    "convert",
		Summary: "Encode a definition for distribution",
		Description: `Encode a definition for distribution.

The definition is validated first and refused if it has issues. The
body is written as JSON or CBOR and framed with the requested
compression. Without --output the frame goes to paths.output from the
config, named after the definition. Use --output - for stdout.`,
		Usage: binaryName + " convert FILE [--format json|cbor] [--compression none|lz4|zstd] [--output PATH]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			flagSet.StringVarP(&options.format, "format", "f", "", "body format: json or cbor (default: encoding.format from config)")
			flagSet.StringVarP(&options.compression, "compression", "c", "", "compression: none, lz4, or zstd (default: encoding.compression from config)")
			flagSet.StringVarP(&options.output, "output", "o", "", "output path, or - for stdout")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Usage("convert requires exactly one FILE, got %d arguments", len(args))
			}
			return runConvert(env, args[0], options)
		},
	}
}

func runConvert(env *environment, path string, options convertOptions) error {
	formatName := options.format
	if formatName == "" {
		formatName = env.config.Encoding.Format
	}
	format, err := experimentdef.ParseFormat(formatName)
	if err != nil {
		return cli.Usage("--format: %w", err)
	}

	compressionName := options.compression
	if compressionName == "" {
		compressionName = env.config.Encoding.Compression
	}
	tag, err := compression.ParseTag(compressionName)
	if err != nil {
		return cli.Usage("--compression: %w", err)
	}

	definition, err := env.loadDefinition(path)
	if err != nil {
		return err
	}

	if issues := env.checkDefinition(path, definition, env.config.Validation.Strict); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(env.stderr, "%s: %s\n", path, issue)
		}
		return fmt.Errorf("%s has %d validation issues", path, len(issues))
	}

	frame, err := experimentdef.Encode(definition, format, tag)
	if err != nil {
		return err
	}

	output := options.output
	if output == "-" {
		_, err := env.stdout.Write(frame)
		return err
	}
	if output == "" {
		if err := env.config.EnsurePaths(); err != nil {
			return err
		}
		output = filepath.Join(env.config.Paths.Output, outputName(path, definition, format, tag))
	}

	if err := os.WriteFile(output, frame, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fingerprint, err := definition.Fingerprint()
	if err != nil {
		return err
	}
	env.logger.Info("converted definition",
		"definition", definition.Name,
		"format", string(format),
		"compression", tag.String(),
		"bytes", len(frame),
		"output", output,
		"fingerprint", fingerprint.String(),
	)
	return nil
}

// outputName is "<name>.<format>" plus ".<compression>" when the frame
// is compressed. The name falls back to the source file's base name
// when the definition has none or its name is not a single path
// element.
func outputName(path string, definition *experimentdef.Definition, format experimentdef.Format, tag compression.Tag) string {
	name := definition.Name
	if !isPlainFileName(name) {
		name = experimentdef.NameFromPath(path)
	}
	name += "." + string(format)
	if tag != compression.None {
		name += "." + tag.String()
	}
	return name
}

func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
