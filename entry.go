// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import "slices"

// Entry is one file record from the directory tree.
type Entry struct {
	// Path is "<dir>/<name>.<ext>", or "<name>.<ext>" for root entries.
	Path string

	// The tokens Path was built from. Dir is already normalized.
	Extension string
	Dir       string
	Name      string

	DirectoryEntry

	// RecordOffset is where the DirectoryEntry starts inside the tree buffer.
	RecordOffset int
}

// Size returns the full size of the file: preload bytes plus the payload
// stored in the archive part.
func (e Entry) Size() uint64 {
	return uint64(e.PreloadBytes) + uint64(e.EntryLength)
}

// HasPreload reports whether part of the file is stored inline in the
// directory file.
func (e Entry) HasPreload() bool {
	return e.PreloadBytes > 0
}

// sortEntries orders entries by path. Equal paths keep their tree order.
func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return ComparePaths(a.Path, b.Path)
	})
}

// searchEntries finds the first entry whose path equals path. The search
// orders by ComparePaths, so entries sharing the first PathLimit bytes form
// one run that is scanned for an exact match.
func searchEntries(entries []Entry, path string) (int, bool) {
	i, found := slices.BinarySearchFunc(entries, path, func(e Entry, target string) int {
		return ComparePaths(e.Path, target)
	})
	if !found {
		return i, false
	}
	for ; i < len(entries) && ComparePaths(entries[i].Path, path) == 0; i++ {
		if entries[i].Path == path {
			return i, true
		}
	}
	return i, false
}
