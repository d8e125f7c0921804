// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package testutil builds VPK directory data for tests.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const signature = 0x55AA1234

// TestFile describes one file record to encode into a tree.
type TestFile struct {
	Ext          string
	Dir          string // raw path token; "" is written as the " " root marker
	Name         string
	CRC          uint32
	Preload      []byte
	ArchiveIndex uint16
	Offset       uint32
	Length       uint32
}

// Record encodes the 20-byte metadata record for f.
func Record(f TestFile) []byte {
	rec := make([]byte, 20)
	binary.LittleEndian.PutUint32(rec[0:4], f.CRC)
	binary.LittleEndian.PutUint16(rec[4:6], uint16(len(f.Preload)))
	binary.LittleEndian.PutUint16(rec[6:8], f.ArchiveIndex)
	binary.LittleEndian.PutUint32(rec[8:12], f.Offset)
	binary.LittleEndian.PutUint32(rec[12:16], f.Length)
	binary.LittleEndian.PutUint16(rec[16:18], 0xFFFF)
	return rec
}

// BuildTree encodes files as a directory tree. Files are grouped by
// extension, then by directory, in the order each group is first seen.
func BuildTree(files []TestFile) []byte {
	var exts []string
	dirs := make(map[string][]string)
	members := make(map[[2]string][]TestFile)

	for _, f := range files {
		dir := f.Dir
		if dir == "" {
			dir = " "
		}
		if _, ok := dirs[f.Ext]; !ok {
			exts = append(exts, f.Ext)
		}
		key := [2]string{f.Ext, dir}
		if _, ok := members[key]; !ok {
			dirs[f.Ext] = append(dirs[f.Ext], dir)
		}
		members[key] = append(members[key], f)
	}

	var tree []byte
	for _, ext := range exts {
		tree = appendString(tree, ext)
		for _, dir := range dirs[ext] {
			tree = appendString(tree, dir)
			for _, f := range members[[2]string{ext, dir}] {
				tree = appendString(tree, f.Name)
				tree = append(tree, Record(f)...)
				tree = append(tree, f.Preload...)
			}
			tree = append(tree, 0)
		}
		tree = append(tree, 0)
	}
	return append(tree, 0)
}

// BuildV1 prefixes tree with a V1 header.
func BuildV1(tree []byte) []byte {
	out := make([]byte, 12, 12+len(tree))
	binary.LittleEndian.PutUint32(out[0:4], signature)
	binary.LittleEndian.PutUint32(out[4:8], 1)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(tree)))
	return append(out, tree...)
}

// BuildV2 prefixes tree with a V2 header carrying the given reserved words.
func BuildV2(tree []byte, reserved [4]uint32) []byte {
	out := make([]byte, 28, 28+len(tree))
	binary.LittleEndian.PutUint32(out[0:4], signature)
	binary.LittleEndian.PutUint32(out[4:8], 2)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(tree)))
	for i, v := range reserved {
		binary.LittleEndian.PutUint32(out[12+4*i:], v)
	}
	return append(out, tree...)
}

// WriteFile writes data to a file named name inside a fresh temp directory
// and returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

func appendString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}
