// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/go-vpk/internal/testutil"
)

func writeArchive(t *testing.T, name string, files []testutil.TestFile) string {
	t.Helper()
	return testutil.WriteFile(t, name, testutil.BuildV2(testutil.BuildTree(files), [4]uint32{}))
}

func TestOpenChain(t *testing.T) {
	t.Parallel()

	base := writeArchive(t, "base_dir.vpk", []testutil.TestFile{
		{Ext: "txt", Dir: "maps", Name: "level1", CRC: 1},
		{Ext: "txt", Dir: "maps", Name: "level2", CRC: 2},
		{Ext: "cfg", Name: "config", CRC: 3},
	})
	patch := writeArchive(t, "patch_dir.vpk", []testutil.TestFile{
		{Ext: "txt", Dir: "maps", Name: "level2", CRC: 20, ArchiveIndex: 9},
		{Ext: "txt", Dir: "maps", Name: "level3", CRC: 30},
	})

	chain, err := OpenChain(context.Background(), []string{base, patch})
	require.NoError(t, err)

	assert.Len(t, chain.Archives(), 2)
	assert.Equal(t, 4, chain.Len())

	var got []string
	for _, e := range chain.Entries() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{
		"config.cfg CRC:0000000003 size:0",
		"maps/level1.txt CRC:0000000001 size:0",
		"maps/level2.txt CRC:0000000014 size:0",
		"maps/level3.txt CRC:000000001e size:0",
	}, got)

	e, a, err := chain.Lookup("maps\\level2.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(20), e.CRC)
	assert.Equal(t, uint16(9), e.ArchiveIndex)
	assert.Equal(t, patch, a.Path())

	e, a, err = chain.Lookup("maps/level1.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), e.CRC)
	assert.Equal(t, base, a.Path())

	assert.True(t, chain.HasFile("config.cfg"))
	assert.False(t, chain.HasFile("maps/level4.txt"))

	_, _, err = chain.Lookup("maps/level4.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenChainError(t *testing.T) {
	t.Parallel()

	good := writeArchive(t, "good_dir.vpk", []testutil.TestFile{{Ext: "txt", Name: "a"}})
	missing := filepath.Join(t.TempDir(), "missing_dir.vpk")

	_, err := OpenChain(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

func TestOpenChainCanceled(t *testing.T) {
	t.Parallel()

	good := writeArchive(t, "good_dir.vpk", []testutil.TestFile{{Ext: "txt", Name: "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := OpenChain(ctx, []string{good})
	require.ErrorIs(t, err, context.Canceled)
}

func TestChainDiff(t *testing.T) {
	t.Parallel()

	base := parseFiles(t, []testutil.TestFile{
		{Ext: "txt", Name: "a", CRC: 1},
		{Ext: "txt", Name: "b", CRC: 2},
	})
	patch := parseFiles(t, []testutil.TestFile{
		{Ext: "txt", Name: "b", CRC: 22},
	})

	chain := NewChain(base, patch)
	assert.Equal(t, []string{"M b.txt"}, describe(Diff(base, chain)))
}

func TestEmptyChain(t *testing.T) {
	t.Parallel()

	chain, err := OpenChain(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, chain.Len())
	assert.Empty(t, chain.Entries())
}
