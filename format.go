// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"encoding/binary"
	"fmt"
)

// VPK format constants
const (
	// Signature is the magic value at offset 0 of V1 and V2 directory files.
	Signature = 0x55AA1234

	// Header sizes
	headerSizeV1 = 12 // signature, version, tree length
	headerSizeV2 = 28 // V1 fields plus four reserved words

	// Size of the packed metadata record following every file name
	directoryEntrySize = 20

	// Value normally found in DirectoryEntry.Terminator
	entryTerminator = 0xFFFF

	// PathLimit is the name buffer size of the classic tooling. Sorting and
	// diffing compare at most this many bytes of a path.
	PathLimit = 256
)

// Version identifies the header layout of a directory file.
type Version int

const (
	// VersionLegacy is a headerless directory file; the tree starts at offset 0.
	VersionLegacy Version = 0

	// Version1 has a 12-byte header.
	Version1 Version = 1

	// Version2 has a 28-byte header with four reserved words.
	Version2 Version = 2
)

// String returns a short name for the version.
func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return "legacy"
	case Version1:
		return "v1"
	case Version2:
		return "v2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// Header is the structured header of a V1 or V2 directory file.
type Header struct {
	Signature  uint32
	Version    uint32
	TreeLength uint32

	// Reserved holds the four V2 words whose meaning is not documented.
	// They are kept verbatim and are always zero for V1.
	Reserved [4]uint32
}

// Size returns the number of bytes the header occupies on disk.
func (h *Header) Size() int {
	if h.Version == uint32(Version2) {
		return headerSizeV2
	}
	return headerSizeV1
}

// baseHeader is the 12-byte prefix shared by every numbered version
type baseHeader struct {
	Signature  uint32
	Version    uint32
	TreeLength uint32
}

// extendedHeader is the V2 header (28 bytes)
type extendedHeader struct {
	Signature  uint32
	Version    uint32
	TreeLength uint32
	Reserved   [4]uint32
}

// DirectoryEntry is the fixed metadata record stored after each file name
// in the tree. It is 20 bytes, little endian, without padding.
type DirectoryEntry struct {
	CRC          uint32 // checksum of the payload, not verified here
	PreloadBytes uint16 // bytes stored inline right after this record
	ArchiveIndex uint16 // which archive part holds the payload
	EntryOffset  uint32 // payload offset inside that part
	EntryLength  uint32 // payload length inside that part
	Terminator   uint16 // normally 0xFFFF, consumed but not checked
}

// layout is the result of classifying a directory file.
type layout struct {
	version    Version
	header     *Header
	treeOffset int
	treeLength int
}

// classify inspects the start of data and locates the tree.
func classify(data []byte) (layout, error) {
	if len(data) < headerSizeV1 {
		return layout{}, fmt.Errorf("%w: need %d header bytes, have %d", ErrTruncatedInput, headerSizeV1, len(data))
	}

	var base baseHeader
	if _, err := binary.Decode(data, binary.LittleEndian, &base); err != nil {
		return layout{}, fmt.Errorf("read header: %w", err)
	}

	// Anything without the signature or with an unknown version is a legacy
	// file, and the whole input is the tree.
	if base.Signature != Signature || (base.Version != 1 && base.Version != 2) {
		return layout{
			version:    VersionLegacy,
			treeOffset: 0,
			treeLength: len(data),
		}, nil
	}

	var (
		header     *Header
		headerSize int
	)
	switch Version(base.Version) {
	case Version1:
		header = &Header{
			Signature:  base.Signature,
			Version:    base.Version,
			TreeLength: base.TreeLength,
		}
		headerSize = headerSizeV1
	case Version2:
		if len(data) < headerSizeV2 {
			return layout{}, fmt.Errorf("%w: need %d header bytes, have %d", ErrTruncatedInput, headerSizeV2, len(data))
		}
		var ext extendedHeader
		if _, err := binary.Decode(data, binary.LittleEndian, &ext); err != nil {
			return layout{}, fmt.Errorf("read extended header: %w", err)
		}
		header = &Header{
			Signature:  ext.Signature,
			Version:    ext.Version,
			TreeLength: ext.TreeLength,
			Reserved:   ext.Reserved,
		}
		headerSize = headerSizeV2
	default:
		// Unreachable while the legacy fallback above filters versions first.
		return layout{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, base.Version)
	}

	available := uint64(len(data) - headerSize)
	if uint64(header.TreeLength) > available {
		return layout{}, fmt.Errorf("%w: header declares %d tree bytes, %d available", ErrTruncatedInput, header.TreeLength, available)
	}

	return layout{
		version:    Version(base.Version),
		header:     header,
		treeOffset: headerSize,
		treeLength: int(header.TreeLength),
	}, nil
}
