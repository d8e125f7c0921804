// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/go-vpk/internal/testutil"
)

func header(sig, version, treeLength uint32) []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], sig)
	binary.LittleEndian.PutUint32(b[4:8], version)
	binary.LittleEndian.PutUint32(b[8:12], treeLength)
	return b
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tree := []byte{0, 0, 0, 0, 0}

	tests := []struct {
		name        string
		data        []byte
		wantVersion Version
		wantOffset  int
		wantLength  int
		wantHeader  bool
	}{
		{
			name:        "v1",
			data:        append(header(Signature, 1, 5), tree...),
			wantVersion: Version1,
			wantOffset:  headerSizeV1,
			wantLength:  5,
			wantHeader:  true,
		},
		{
			name:        "v1 with trailing data",
			data:        append(append(header(Signature, 1, 5), tree...), 0xAA, 0xBB),
			wantVersion: Version1,
			wantOffset:  headerSizeV1,
			wantLength:  5,
			wantHeader:  true,
		},
		{
			name:        "v2",
			data:        testutil.BuildV2(tree, [4]uint32{1, 2, 3, 4}),
			wantVersion: Version2,
			wantOffset:  headerSizeV2,
			wantLength:  5,
			wantHeader:  true,
		},
		{
			name:        "wrong signature is legacy",
			data:        append(header(0xDEADBEEF, 1, 5), tree...),
			wantVersion: VersionLegacy,
			wantOffset:  0,
			wantLength:  17,
		},
		{
			name:        "unknown version is legacy",
			data:        append(header(Signature, 3, 5), tree...),
			wantVersion: VersionLegacy,
			wantOffset:  0,
			wantLength:  17,
		},
		{
			name:        "version zero is legacy",
			data:        header(Signature, 0, 0),
			wantVersion: VersionLegacy,
			wantOffset:  0,
			wantLength:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := classify(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, l.version)
			assert.Equal(t, tt.wantOffset, l.treeOffset)
			assert.Equal(t, tt.wantLength, l.treeLength)
			assert.Equal(t, tt.wantHeader, l.header != nil)
		})
	}
}

func TestClassifyV2Reserved(t *testing.T) {
	t.Parallel()

	data := testutil.BuildV2([]byte{0}, [4]uint32{0, 0x1234, 0xCAFEBABE, 7})
	l, err := classify(data)
	require.NoError(t, err)
	require.NotNil(t, l.header)

	assert.Equal(t, uint32(Signature), l.header.Signature)
	assert.Equal(t, uint32(2), l.header.Version)
	assert.Equal(t, uint32(1), l.header.TreeLength)
	assert.Equal(t, [4]uint32{0, 0x1234, 0xCAFEBABE, 7}, l.header.Reserved)
	assert.Equal(t, headerSizeV2, l.header.Size())
}

func TestClassifyTruncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short of base header", data: make([]byte, 11)},
		{name: "v2 short of extended header", data: append(header(Signature, 2, 0), make([]byte, 10)...)},
		{name: "v1 tree length past end", data: append(header(Signature, 1, 100), 0, 0, 0)},
		{name: "v2 tree length past end", data: append(header(Signature, 2, 1), make([]byte, 16)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := classify(tt.data)
			require.ErrorIs(t, err, ErrTruncatedInput)
		})
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "legacy", VersionLegacy.String())
	assert.Equal(t, "v1", Version1.String())
	assert.Equal(t, "v2", Version2.String())
	assert.Equal(t, "Version(9)", Version(9).String())
}

func TestHeaderSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 12, (&Header{Version: 1}).Size())
	assert.Equal(t, 28, (&Header{Version: 2}).Size())
}
