// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Archive is a parsed VPK directory file. It is immutable once returned
// and safe for concurrent use.
type Archive struct {
	path    string
	version Version
	header  *Header
	tree    []byte
	entries []Entry
	digest  digest.Digest

	// pathLimit is the limit entry paths were built with; 0 means none.
	pathLimit int
}

// Open reads and parses the directory file at path.
func Open(path string, opts ...Option) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	a, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	a.path = path
	return a, nil
}

// Read parses a directory file from r. The reader is rewound to offset 0
// and read to the end before parsing begins.
func Read(r io.ReadSeeker, opts ...Option) (*Archive, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	return Parse(data, opts...)
}

// Parse classifies the header of data, then parses and sorts the tree.
// The archive keeps its own copy of the tree bytes; data is not retained.
func Parse(data []byte, opts ...Option) (*Archive, error) {
	o := newOptions(opts)

	l, err := classify(data)
	if err != nil {
		return nil, err
	}

	tree := bytes.Clone(data[l.treeOffset : l.treeOffset+l.treeLength])
	entries, err := parseTree(tree, o)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		version:   l.version,
		header:    l.header,
		tree:      tree,
		entries:   entries,
		digest:    digest.FromBytes(tree),
		pathLimit: o.pathLimit,
	}

	o.logger.Debug("parsed directory",
		"version", a.version.String(),
		"tree_bytes", len(tree),
		"entries", len(entries),
		"path_limit", o.pathLimit,
		"digest", a.digest.String())

	return a, nil
}

// Path returns the file the archive was opened from, or "" if it was
// parsed from memory.
func (a *Archive) Path() string {
	return a.path
}

// Version returns the header layout of the directory file.
func (a *Archive) Version() Version {
	return a.version
}

// Header returns the structured header. The second result is false for
// legacy archives, which have none.
func (a *Archive) Header() (Header, bool) {
	if a.header == nil {
		return Header{}, false
	}
	return *a.header, true
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entries returns a copy of the entries in path order.
func (a *Archive) Entries() []Entry {
	return slices.Clone(a.entries)
}

// All iterates over the entries in path order without copying the list.
func (a *Archive) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// TreeBytes returns a copy of the raw tree buffer.
func (a *Archive) TreeBytes() []byte {
	return bytes.Clone(a.tree)
}

// TreeDigest returns the sha256 digest of the tree buffer. Two archives
// with the same digest and path limit list the same entries.
func (a *Archive) TreeDigest() digest.Digest {
	return a.digest
}

// PathLimit returns the limit set with WithPathLimit, or 0 if entry paths
// were built without one.
func (a *Archive) PathLimit() int {
	return a.pathLimit
}

// TotalSize returns the sum of all entry sizes.
func (a *Archive) TotalSize() uint64 {
	var total uint64
	for _, e := range a.entries {
		total += e.Size()
	}
	return total
}

// Lookup returns the entry stored under path. Backslashes are accepted as
// separators and a leading slash is ignored.
func (a *Archive) Lookup(path string) (Entry, error) {
	path = cleanLookupPath(path)
	i, found := searchEntries(a.entries, path)
	if !found {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return a.entries[i], nil
}

// HasFile returns true if the archive contains the specified file.
func (a *Archive) HasFile(path string) bool {
	_, err := a.Lookup(path)
	return err == nil
}

// cleanLookupPath converts a user supplied path to the form stored in entries.
func cleanLookupPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimLeft(path, "/")
}
