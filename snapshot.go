// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"
)

// Snapshot file layout:
//
//	"VPKS" | format byte | zstd(CBOR document) | BLAKE3-256 of everything before it
const (
	snapshotMagic    = "VPKS"
	snapshotFormat   = 1
	snapshotSumSize  = 32
	snapshotMinBytes = len(snapshotMagic) + 1 + snapshotSumSize

	// snapshotMaxDecoded bounds the decompressed CBOR document.
	snapshotMaxDecoded = 1 << 30

	// snapshotMaxEntries is the largest entry count the CBOR decoder accepts.
	snapshotMaxEntries = 2147483647
)

var (
	snapshotEncMode cbor.EncMode
	snapshotDecMode cbor.DecMode
	zstdEncoder     *zstd.Encoder
	zstdDecoder     *zstd.Decoder
)

func init() {
	var err error

	// Core deterministic encoding: the same listing always produces the
	// same snapshot bytes.
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("vpk: CBOR encoder initialization failed: " + err.Error())
	}
	snapshotDecMode, err = cbor.DecOptions{
		MaxArrayElements: snapshotMaxEntries,
	}.DecMode()
	if err != nil {
		panic("vpk: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("vpk: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(snapshotMaxDecoded))
	if err != nil {
		panic("vpk: zstd decoder initialization failed: " + err.Error())
	}
}

// Snapshot is a saved listing of an archive. It carries every entry with
// its metadata but not the tree bytes, so it can be kept next to a build
// and diffed against later versions of the archive.
type Snapshot struct {
	version Version
	header  *Header
	digest  digest.Digest
	entries []Entry

	pathLimit int
}

// snapshotDocument is the CBOR form of a Snapshot.
type snapshotDocument struct {
	Version    int              `cbor:"version"`
	Header     *snapshotHeader  `cbor:"header,omitempty"`
	TreeDigest string           `cbor:"tree_digest"`
	PathLimit  int              `cbor:"path_limit,omitempty"`
	Entries    []snapshotRecord `cbor:"entries"`
}

type snapshotHeader struct {
	Signature  uint32    `cbor:"signature"`
	Version    uint32    `cbor:"version"`
	TreeLength uint32    `cbor:"tree_length"`
	Reserved   [4]uint32 `cbor:"reserved"`
}

type snapshotRecord struct {
	Extension    string `cbor:"ext"`
	Dir          string `cbor:"dir"`
	Name         string `cbor:"name"`
	Path         string `cbor:"path"`
	CRC          uint32 `cbor:"crc"`
	PreloadBytes uint16 `cbor:"preload"`
	ArchiveIndex uint16 `cbor:"archive_index"`
	EntryOffset  uint32 `cbor:"offset"`
	EntryLength  uint32 `cbor:"length"`
	Terminator   uint16 `cbor:"terminator"`
	RecordOffset int    `cbor:"record_offset"`
}

// NewSnapshot captures the listing of a.
func NewSnapshot(a *Archive) *Snapshot {
	s := &Snapshot{
		version:   a.version,
		digest:    a.digest,
		entries:   a.Entries(),
		pathLimit: a.pathLimit,
	}
	if h, ok := a.Header(); ok {
		s.header = &h
	}
	return s
}

// Version returns the header layout of the archive the snapshot was taken from.
func (s *Snapshot) Version() Version {
	return s.version
}

// Header returns the archive header, if the archive had one.
func (s *Snapshot) Header() (Header, bool) {
	if s.header == nil {
		return Header{}, false
	}
	return *s.header, true
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in path order.
func (s *Snapshot) Entries() []Entry {
	return slices.Clone(s.entries)
}

// TreeDigest returns the digest of the tree the snapshot was taken from.
func (s *Snapshot) TreeDigest() digest.Digest {
	return s.digest
}

// PathLimit returns the path limit the archive was parsed with, or 0.
func (s *Snapshot) PathLimit() int {
	return s.pathLimit
}

// MarshalBinary encodes the snapshot in the snapshot file format.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	doc := snapshotDocument{
		Version:    int(s.version),
		TreeDigest: s.digest.String(),
		PathLimit:  s.pathLimit,
		Entries:    make([]snapshotRecord, len(s.entries)),
	}
	if s.header != nil {
		doc.Header = &snapshotHeader{
			Signature:  s.header.Signature,
			Version:    s.header.Version,
			TreeLength: s.header.TreeLength,
			Reserved:   s.header.Reserved,
		}
	}
	for i, e := range s.entries {
		doc.Entries[i] = snapshotRecord{
			Extension:    e.Extension,
			Dir:          e.Dir,
			Name:         e.Name,
			Path:         e.Path,
			CRC:          e.CRC,
			PreloadBytes: e.PreloadBytes,
			ArchiveIndex: e.ArchiveIndex,
			EntryOffset:  e.EntryOffset,
			EntryLength:  e.EntryLength,
			Terminator:   e.Terminator,
			RecordOffset: e.RecordOffset,
		}
	}

	payload, err := snapshotEncMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	out := make([]byte, 0, len(snapshotMagic)+1+len(payload)/2+snapshotSumSize)
	out = append(out, snapshotMagic...)
	out = append(out, snapshotFormat)
	out = zstdEncoder.EncodeAll(payload, out)
	sum := blake3.Sum256(out)
	return append(out, sum[:]...), nil
}

// WriteTo writes the encoded snapshot to w.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("write snapshot: %w", err)
	}
	return int64(n), nil
}

// IsSnapshot reports whether data starts like a snapshot file.
func IsSnapshot(data []byte) bool {
	return bytes.HasPrefix(data, []byte(snapshotMagic))
}

// ParseSnapshot decodes a snapshot produced by MarshalBinary.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < snapshotMinBytes || !IsSnapshot(data) {
		return nil, fmt.Errorf("%w: not a snapshot", ErrCorruptSnapshot)
	}
	if format := data[len(snapshotMagic)]; format != snapshotFormat {
		return nil, fmt.Errorf("%w: unknown format %d", ErrCorruptSnapshot, format)
	}

	body, trailer := data[:len(data)-snapshotSumSize], data[len(data)-snapshotSumSize:]
	if sum := blake3.Sum256(body); !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	payload, err := zstdDecoder.DecodeAll(body[len(snapshotMagic)+1:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrCorruptSnapshot, err)
	}

	var doc snapshotDocument
	if err := snapshotDecMode.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCorruptSnapshot, err)
	}

	if doc.PathLimit < 0 {
		return nil, fmt.Errorf("%w: negative path limit %d", ErrCorruptSnapshot, doc.PathLimit)
	}
	s := &Snapshot{
		version:   Version(doc.Version),
		entries:   make([]Entry, len(doc.Entries)),
		pathLimit: doc.PathLimit,
	}
	if doc.TreeDigest != "" {
		d, err := digest.Parse(doc.TreeDigest)
		if err != nil {
			return nil, fmt.Errorf("%w: tree digest: %v", ErrCorruptSnapshot, err)
		}
		s.digest = d
	}
	if doc.Header != nil {
		s.header = &Header{
			Signature:  doc.Header.Signature,
			Version:    doc.Header.Version,
			TreeLength: doc.Header.TreeLength,
			Reserved:   doc.Header.Reserved,
		}
	}
	for i, r := range doc.Entries {
		s.entries[i] = Entry{
			Path:      r.Path,
			Extension: r.Extension,
			Dir:       r.Dir,
			Name:      r.Name,
			DirectoryEntry: DirectoryEntry{
				CRC:          r.CRC,
				PreloadBytes: r.PreloadBytes,
				ArchiveIndex: r.ArchiveIndex,
				EntryOffset:  r.EntryOffset,
				EntryLength:  r.EntryLength,
				Terminator:   r.Terminator,
			},
			RecordOffset: r.RecordOffset,
		}
	}
	sortEntries(s.entries)

	return s, nil
}

// ReadSnapshot reads and decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// OpenSnapshot reads the snapshot file at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	s, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
