// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
)

// The tree is three nested lists of null-terminated strings:
//
//	extension\0
//	  path\0
//	    name\0 <20-byte DirectoryEntry> <preload bytes>
//	    ...
//	  \0
//	  ...
//	\0
//	...
//	\0
//
// An empty string closes the list it appears in.

// treeReader walks a tree buffer. When emit is nil the walk only counts.
type treeReader struct {
	buf       []byte
	pos       int
	pathLimit int
	count     int
	emit      func(Entry)
	logger    *slog.Logger
}

// atEnd reports whether the cursor has consumed the whole buffer.
func (r *treeReader) atEnd() bool {
	return r.pos >= len(r.buf)
}

// closeList consumes a list terminator if one is next.
func (r *treeReader) closeList() bool {
	if r.buf[r.pos] != 0 {
		return false
	}
	r.pos++
	return true
}

// readString reads a null-terminated string and moves past the terminator.
func (r *treeReader) readString(what string) (string, error) {
	end := bytes.IndexByte(r.buf[r.pos:], 0)
	if end < 0 {
		return "", &TreeError{Offset: r.pos, Reason: "unterminated " + what}
	}
	s := string(r.buf[r.pos : r.pos+end])
	r.pos += end + 1
	return s, nil
}

// walk parses extension groups until the top-level terminator or the end
// of the buffer.
func (r *treeReader) walk() error {
	for !r.atEnd() {
		if r.closeList() {
			return nil
		}
		ext, err := r.readString("extension")
		if err != nil {
			return err
		}
		if err := r.parseExtensionGroup(ext); err != nil {
			return err
		}
	}
	return nil
}

// parseExtensionGroup parses the path groups listed under one extension.
func (r *treeReader) parseExtensionGroup(ext string) error {
	for !r.atEnd() {
		if r.closeList() {
			return nil
		}
		raw, err := r.readString("path")
		if err != nil {
			return err
		}
		if err := r.parsePathGroup(ext, normalizePath(raw, r.pathLimit)); err != nil {
			return err
		}
	}
	return nil
}

// parsePathGroup parses the file records listed under one path.
func (r *treeReader) parsePathGroup(ext, dir string) error {
	for !r.atEnd() {
		if r.closeList() {
			return nil
		}
		if err := r.parseFileRecord(ext, dir); err != nil {
			return err
		}
	}
	return nil
}

// parseFileRecord reads a file name, its metadata record and skips the
// preload bytes that follow.
func (r *treeReader) parseFileRecord(ext, dir string) error {
	name, err := r.readString("file name")
	if err != nil {
		return err
	}

	if len(r.buf)-r.pos < directoryEntrySize {
		return &TreeError{Offset: r.pos, Reason: fmt.Sprintf("short metadata record for %q", name)}
	}
	recordOffset := r.pos
	var meta DirectoryEntry
	if _, err := binary.Decode(r.buf[r.pos:], binary.LittleEndian, &meta); err != nil {
		return &TreeError{Offset: r.pos, Reason: err.Error()}
	}
	r.pos += directoryEntrySize

	if len(r.buf)-r.pos < int(meta.PreloadBytes) {
		return &TreeError{Offset: r.pos, Reason: fmt.Sprintf("preload data for %q runs past end", name)}
	}
	r.pos += int(meta.PreloadBytes)

	r.count++
	if r.emit == nil {
		return nil
	}

	entry := Entry{
		Path:           joinPath(dir, name, ext, r.pathLimit),
		Extension:      ext,
		Dir:            dir,
		Name:           name,
		DirectoryEntry: meta,
		RecordOffset:   recordOffset,
	}
	r.logger.Debug("tree entry",
		"path", entry.Path,
		"crc", meta.CRC,
		"size", entry.Size(),
		"archive_index", meta.ArchiveIndex)
	r.emit(entry)
	return nil
}

// CountEntries walks tree without building entries and returns how many
// file records it holds.
func CountEntries(tree []byte) (int, error) {
	r := &treeReader{buf: tree}
	if err := r.walk(); err != nil {
		return 0, err
	}
	return r.count, nil
}

// ParseTree parses a bare tree buffer (the bytes following the header) and
// returns its entries sorted by path.
func ParseTree(tree []byte, opts ...Option) ([]Entry, error) {
	return parseTree(tree, newOptions(opts))
}

// parseTree counts the entries, allocates exactly that many, then walks
// the buffer again to fill them in.
func parseTree(tree []byte, o options) ([]Entry, error) {
	count, err := CountEntries(tree)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, count)
	r := &treeReader{
		buf:       tree,
		pathLimit: o.pathLimit,
		logger:    o.logger,
		emit: func(e Entry) {
			entries = append(entries, e)
		},
	}
	if err := r.walk(); err != nil {
		return nil, err
	}
	if len(entries) != count {
		return nil, fmt.Errorf("%w: counted %d entries, parsed %d", ErrMalformedTree, count, len(entries))
	}

	sortEntries(entries)
	return entries, nil
}
