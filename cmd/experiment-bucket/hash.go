// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
)

func hashCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "hash",
		Summary: "Print the definition fingerprint and per-bucket hashes",
		Description: `Print the definition fingerprint and per-bucket hashes.

The name hash depends on the bucket name only, so it matches the
name-only bucket equality used for deduplication. The full hash covers
name, value, description, and payload. All hashes are keyed BLAKE3.`,
		Usage: binaryName + " hash FILE",
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Usage("hash requires exactly one FILE, got %d arguments", len(args))
			}
			return runHash(env, args[0])
		},
	}
}

func runHash(env *environment, path string) error {
	definition, err := env.loadDefinition(path)
	if err != nil {
		return err
	}

	fingerprint, err := definition.Fingerprint()
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "definition %s %s\n", definition.Name, fingerprint)

	writer := tabwriter.NewWriter(env.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "BUCKET\tVALUE\tNAME HASH\tFULL HASH\n")
	for _, bucket := range definition.Buckets {
		full, err := bucket.FullHash()
		if err != nil {
			return fmt.Errorf("bucket %q: %w", bucket.Name(), err)
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n", bucket.Name(), bucket.Value(), bucket.NameHash(), full)
	}
	return writer.Flush()
}
