// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"fmt"
	"testing"

	"github.com/suprsokr/go-vpk/internal/testutil"
)

// benchFiles builds a tree shaped like a game content directory.
func benchFiles(n int) []testutil.TestFile {
	exts := []string{"vmt", "vtf", "mdl", "vvd", "wav"}
	files := make([]testutil.TestFile, 0, n)
	for i := range n {
		files = append(files, testutil.TestFile{
			Ext:     exts[i%len(exts)],
			Dir:     fmt.Sprintf("materials/set%02d/group%d", i%40, i%7),
			Name:    fmt.Sprintf("file_%05d", i),
			CRC:     uint32(i) * 2654435761,
			Length:  uint32(i * 16),
			Preload: make([]byte, i%3),
		})
	}
	return files
}

// BenchmarkParse benchmarks classification, both tree passes and sorting
func BenchmarkParse(b *testing.B) {
	data := testutil.BuildV2(testutil.BuildTree(benchFiles(20000)), [4]uint32{})
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCountEntries benchmarks the counting pass alone
func BenchmarkCountEntries(b *testing.B) {
	tree := testutil.BuildTree(benchFiles(20000))
	b.SetBytes(int64(len(tree)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CountEntries(tree); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDiff benchmarks the merge over two archives differing in a
// tenth of their entries
func BenchmarkDiff(b *testing.B) {
	files := benchFiles(20000)
	a, err := Parse(testutil.BuildV1(testutil.BuildTree(files)))
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < len(files); i += 10 {
		files[i].CRC++
	}
	other, err := Parse(testutil.BuildV1(testutil.BuildTree(files)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(a, other)
	}
}

// BenchmarkLookup benchmarks binary search lookups by path
func BenchmarkLookup(b *testing.B) {
	a, err := Parse(testutil.BuildV1(testutil.BuildTree(benchFiles(20000))))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.HasFile("materials/set03/group3/file_00003.vvd")
		a.HasFile("materials/missing.vmt")
	}
}
