// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// vpktool lists and compares the directory files of VPK archives.
//
// Listings print one line per entry with its CRC and size, suitable for
// keeping under version control. Diffs report entries only in the first
// archive (">"), only in the second ("<"), and present in both with a
// different CRC ("M"). Either side of a diff may be a snapshot written by
// "vpktool snapshot" instead of a directory file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// env is what every subcommand receives.
type env struct {
	stdout io.Writer
	stderr io.Writer
	config Config
	logger *slog.Logger
}

// command is one vpktool subcommand.
type command struct {
	summary string
	run     func(e *env, args []string) error
}

var commands = map[string]command{
	"list":     {summary: "print entries with CRC and size (several files are merged as a chain)", run: runList},
	"info":     {summary: "print header fields and totals", run: runInfo},
	"diff":     {summary: "compare two archives or snapshots", run: runDiff},
	"snapshot": {summary: "save a listing for later comparison", run: runSnapshot},
	"version":  {summary: "print the vpktool version", run: runVersion},
}

// usageError marks errors caused by bad invocation; they exit with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run executes vpktool with args and returns the exit status.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	var (
		configPath string
		logLevel   string
	)

	flagSet := pflag.NewFlagSet("vpktool", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (default: $"+configEnv+")")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout, flagSet)
		return 0
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return 2
	}

	cfg, err := loadConfig(configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", rest[0])
		printUsage(stderr, flagSet)
		return 2
	}

	e := &env{
		stdout: stdout,
		stderr: stderr,
		config: cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	if err := cmd.run(e, rest[1:]); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 2
		}
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n  vpktool [flags] <command> [command flags] args\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}

	fmt.Fprintf(w, "\nFlags:\n%s", strings.TrimRight(flagSet.FlagUsages(), "\n")+"\n")
}

func runVersion(e *env, args []string) error {
	if len(args) != 0 {
		return usagef("version takes no arguments")
	}
	fmt.Fprintf(e.stdout, "vpktool %s\n", version)
	return nil
}
