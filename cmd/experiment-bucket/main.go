// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/experiment/cmd/experiment-bucket/cli"
	"github.com/bureau-foundation/experiment/lib/config"
	"github.com/bureau-foundation/experiment/lib/version"
)

const binaryName = "experiment-bucket"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// environment is the state shared by every subcommand.
type environment struct {
	config *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "path to experiment.yaml (default: $EXPERIMENT_CONFIG, else built-in defaults)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			rootCommand(nil).PrintHelp(stderr)
			printGlobalFlags(stderr, flagSet)
			return cli.ExitCodeOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitCodeError
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Banner(binaryName))
		if verbose {
			fmt.Fprintln(stdout, version.Full())
		}
		return cli.ExitCodeOK
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitCodeError
	}

	level, err := cli.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitCodeError
	}
	if verbose {
		level = slog.LevelDebug
	}

	env := &environment{
		config: cfg,
		logger: cli.NewCommandLogger(stderr, level),
		stdout: stdout,
		stderr: stderr,
	}

	root := rootCommand(env)
	root.HelpOutput = stderr
	err = root.Execute(flagSet.Args())
	if err != nil && cli.ExitCode(err) == cli.ExitCodeError {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return cli.ExitCode(err)
}

// loadConfig loads the explicit --config path, then EXPERIMENT_CONFIG,
// and falls back to config.Default when neither is given.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv("EXPERIMENT_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func rootCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    binaryName,
		Summary: "Check, encode, and compare experiment bucket definitions",
		Description: `Check, encode, and compare experiment bucket definitions.

A definition is a named list of test buckets. Each bucket has a name,
an integer value, a description, and an optional payload. Definitions
are authored as JSONC or YAML and distributed as framed JSON or CBOR.`,
		Usage: binaryName + " [--config PATH] [--verbose] <command> [flags]",
		Subcommands: []*cli.Command{
			validateCommand(env),
			convertCommand(env),
			inspectCommand(env),
			hashCommand(env),
			diffCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Check definitions in strict mode",
				Command:     binaryName + " validate --strict definitions/*.jsonc",
			},
			{
				Description: "Encode a definition as zstd-compressed CBOR",
				Command:     binaryName + " convert checkout.jsonc --format cbor --compression zstd",
			},
			{
				Description: "Show what changed between two revisions",
				Command:     binaryName + " diff old/checkout.jsonc checkout.jsonc",
			},
		},
	}
}

func printGlobalFlags(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "\nGlobal flags:\n")
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
