// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when the input holds fewer bytes than the
	// header, the extended header, or the declared tree length requires.
	ErrTruncatedInput = errors.New("vpk: truncated input")

	// ErrUnsupportedVersion is returned when the signature matches but the
	// version is not one this package understands.
	ErrUnsupportedVersion = errors.New("vpk: unsupported version")

	// ErrMalformedTree is returned when the directory tree cannot be walked
	// without reading past its end.
	ErrMalformedTree = errors.New("vpk: malformed tree")

	// ErrCorruptSnapshot is returned when a snapshot file fails its checksum
	// or cannot be decoded.
	ErrCorruptSnapshot = errors.New("vpk: corrupt snapshot")

	// ErrNotFound is returned when a path is not present in an archive.
	ErrNotFound = errors.New("vpk: entry not found")
)

// TreeError describes where in the tree buffer a walk failed.
// It matches ErrMalformedTree with errors.Is.
type TreeError struct {
	Offset int    // byte offset into the tree buffer
	Reason string // what the walker was trying to read
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", ErrMalformedTree, e.Reason, e.Offset)
}

// Unwrap returns ErrMalformedTree.
func (e *TreeError) Unwrap() error {
	return ErrMalformedTree
}
