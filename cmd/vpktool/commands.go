// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/suprsokr/go-vpk"
)

// newFlagSet returns a flag set for a subcommand that reports errors to
// the command's stderr.
func newFlagSet(e *env, name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("vpktool "+name, pflag.ContinueOnError)
	flagSet.SetOutput(e.stderr)
	return flagSet
}

// parseFlags parses args into flagSet. Bad flags are usage errors.
func parseFlags(flagSet *pflag.FlagSet, args []string) error {
	err := flagSet.Parse(args)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &usageError{msg: err.Error()}
}

// parseOptions returns the parse options selected by config and flags.
func parseOptions(e *env, legacyPaths bool) []vpk.Option {
	opts := []vpk.Option{vpk.WithLogger(e.logger)}
	if legacyPaths || e.config.LegacyPaths {
		opts = append(opts, vpk.WithLegacyPaths())
	}
	return opts
}

// loadLister opens path as a snapshot if it carries the snapshot magic,
// otherwise as a directory file.
func loadLister(e *env, path string, opts []vpk.Option) (vpk.Lister, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	if vpk.IsSnapshot(data) {
		s, err := vpk.ParseSnapshot(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		e.logger.Info("loaded snapshot", "path", path, "entries", s.Len(), "version", s.Version().String())
		return s, nil
	}

	a, err := vpk.Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	e.logger.Info("loaded archive", "path", path, "entries", a.Len(), "version", a.Version().String())
	return a, nil
}

// isSnapshotFile reports whether the file at path starts with the snapshot
// magic.
func isSnapshotFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return vpk.IsSnapshot(magic[:n]), nil
}

func runList(e *env, args []string) error {
	var names, legacyPaths bool

	flagSet := newFlagSet(e, "list")
	flagSet.BoolVar(&names, "names", false, "print paths only")
	flagSet.BoolVar(&legacyPaths, "legacy-paths", false, "apply the 256-byte name limit")
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if flagSet.NArg() == 0 {
		return usagef("list needs at least one file")
	}
	opts := parseOptions(e, legacyPaths)

	var listing vpk.Lister
	if flagSet.NArg() == 1 {
		l, err := loadLister(e, flagSet.Arg(0), opts)
		if err != nil {
			return err
		}
		listing = l
	} else {
		for _, path := range flagSet.Args() {
			snapshot, err := isSnapshotFile(path)
			if err != nil {
				return err
			}
			if snapshot {
				return usagef("%s is a snapshot; several files are listed as a chain of directory files only", path)
			}
		}
		chain, err := vpk.OpenChain(context.Background(), flagSet.Args(), opts...)
		if err != nil {
			return err
		}
		e.logger.Info("opened chain", "archives", flagSet.NArg(), "entries", chain.Len())
		listing = chain
	}

	if names {
		return vpk.WriteNames(e.stdout, listing)
	}
	return vpk.WriteListing(e.stdout, listing)
}

func runInfo(e *env, args []string) error {
	var legacyPaths bool

	flagSet := newFlagSet(e, "info")
	flagSet.BoolVar(&legacyPaths, "legacy-paths", false, "apply the 256-byte name limit")
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return usagef("info needs exactly one file")
	}

	a, err := vpk.Open(flagSet.Arg(0), parseOptions(e, legacyPaths)...)
	if err != nil {
		return err
	}
	return writeInfo(e.stdout, a)
}

// writeInfo prints a key: value summary of an archive.
func writeInfo(w io.Writer, a *vpk.Archive) error {
	var b strings.Builder

	fmt.Fprintf(&b, "version:     %s\n", a.Version())
	if h, ok := a.Header(); ok {
		fmt.Fprintf(&b, "signature:   0x%08x\n", h.Signature)
		fmt.Fprintf(&b, "header size: %d\n", h.Size())
		fmt.Fprintf(&b, "tree length: %d\n", h.TreeLength)
		if a.Version() == vpk.Version2 {
			fmt.Fprintf(&b, "reserved:    %08x %08x %08x %08x\n", h.Reserved[0], h.Reserved[1], h.Reserved[2], h.Reserved[3])
		}
	}
	fmt.Fprintf(&b, "tree digest: %s\n", a.TreeDigest())
	fmt.Fprintf(&b, "entries:     %d\n", a.Len())
	fmt.Fprintf(&b, "total size:  %d\n", a.TotalSize())

	perExt := make(map[string]int)
	preloaded := 0
	for entry := range a.All() {
		perExt[entry.Extension]++
		if entry.HasPreload() {
			preloaded++
		}
	}
	fmt.Fprintf(&b, "preloaded:   %d\n", preloaded)
	for _, ext := range slices.Sorted(maps.Keys(perExt)) {
		fmt.Fprintf(&b, "  .%s: %d\n", ext, perExt[ext])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func runDiff(e *env, args []string) error {
	var (
		color       string
		summary     bool
		legacyPaths bool
	)

	flagSet := newFlagSet(e, "diff")
	flagSet.StringVar(&color, "color", e.config.Color, "color output: auto, always, never")
	flagSet.BoolVar(&summary, "summary", false, "print change counts after the diff")
	flagSet.BoolVar(&legacyPaths, "legacy-paths", false, "apply the 256-byte name limit")
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if flagSet.NArg() != 2 {
		return usagef("diff needs exactly two files")
	}
	switch color {
	case "auto", "always", "never":
	default:
		return usagef("--color must be auto, always or never")
	}

	opts := parseOptions(e, legacyPaths)
	a, err := loadLister(e, flagSet.Arg(0), opts)
	if err != nil {
		return err
	}
	b, err := loadLister(e, flagSet.Arg(1), opts)
	if err != nil {
		return err
	}

	changes := vpk.Diff(a, b)
	styles := newDiffStyles(e.stdout, color)
	for _, c := range changes {
		if _, err := fmt.Fprintln(e.stdout, styles.render(c)); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	if summary {
		s := vpk.Summarize(changes)
		fmt.Fprintf(e.stdout, "%d only in %s, %d only in %s, %d modified\n",
			s.OnlyInA, flagSet.Arg(0), s.OnlyInB, flagSet.Arg(1), s.Modified)
	}
	return nil
}

func runSnapshot(e *env, args []string) error {
	var (
		output      string
		legacyPaths bool
	)

	flagSet := newFlagSet(e, "snapshot")
	flagSet.StringVarP(&output, "output", "o", "", "snapshot file to write (default: FILE with .vpks extension)")
	flagSet.BoolVar(&legacyPaths, "legacy-paths", false, "apply the 256-byte name limit")
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return usagef("snapshot needs exactly one file")
	}

	input := flagSet.Arg(0)
	if output == "" {
		output = strings.TrimSuffix(input, ".vpk") + ".vpks"
	}

	a, err := vpk.Open(input, parseOptions(e, legacyPaths)...)
	if err != nil {
		return err
	}

	data, err := vpk.NewSnapshot(a).MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	e.logger.Info("wrote snapshot", "path", output, "entries", a.Len(), "bytes", len(data))
	return nil
}
