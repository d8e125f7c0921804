// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Chain is a prioritized list of archives, as mounted by a game that loads
// several directory files. Later archives override earlier ones for paths
// they share.
type Chain struct {
	archives []*Archive
	fileMap  map[string]int // path -> index of the archive providing it
	entries  []Entry        // union in path order
}

// OpenChain opens the directory files at paths concurrently. The last path
// has the highest priority. If any archive fails to open, the first error
// is returned and no chain is built.
func OpenChain(ctx context.Context, paths []string, opts ...Option) (*Chain, error) {
	archives := make([]*Archive, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := Open(path, opts...)
			if err != nil {
				return fmt.Errorf("open archive %s: %w", path, err)
			}
			archives[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewChain(archives...), nil
}

// NewChain builds a chain from already parsed archives, lowest priority first.
func NewChain(archives ...*Archive) *Chain {
	c := &Chain{
		archives: slices.Clone(archives),
		fileMap:  make(map[string]int),
	}
	c.rebuildFileMap()
	return c
}

// rebuildFileMap resolves each path to its highest-priority archive and
// collects the winning entries.
func (c *Chain) rebuildFileMap() {
	// Process archives in reverse order (highest priority first)
	for i := len(c.archives) - 1; i >= 0; i-- {
		for _, e := range c.archives[i].entries {
			if _, exists := c.fileMap[e.Path]; !exists {
				c.fileMap[e.Path] = i
			}
		}
	}

	c.entries = make([]Entry, 0, len(c.fileMap))
	for i, a := range c.archives {
		for _, e := range a.entries {
			if c.fileMap[e.Path] == i {
				c.entries = append(c.entries, e)
			}
		}
	}
	sortEntries(c.entries)
}

// Archives returns the archives in the chain, lowest priority first.
func (c *Chain) Archives() []*Archive {
	return slices.Clone(c.archives)
}

// Len returns the number of distinct paths in the chain.
func (c *Chain) Len() int {
	return len(c.entries)
}

// Entries returns the union of all archives in path order, each path
// taken from the highest-priority archive that lists it.
func (c *Chain) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Lookup returns the entry for path and the archive providing it.
func (c *Chain) Lookup(path string) (Entry, *Archive, error) {
	path = cleanLookupPath(path)
	idx, found := c.fileMap[path]
	if !found {
		return Entry{}, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	a := c.archives[idx]
	e, err := a.Lookup(path)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, a, nil
}

// HasFile returns true if any archive in the chain contains the file.
func (c *Chain) HasFile(path string) bool {
	_, found := c.fileMap[cleanLookupPath(path)]
	return found
}
