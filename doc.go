// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package vpk reads the directory files of Valve VPK package archives.

A VPK "_dir" file starts with an optional header followed by a tree that
lists every packed file grouped by extension, then by directory. Each file
carries a CRC, the archive part holding its payload, an offset and a length.
This package parses that tree into a sorted list of entries and compares
listings to find added, removed and modified files. It does not read payload
data or write archives.

# Format Versions

Three header layouts are recognized:

  - V1: 12-byte header (signature 0x55AA1234, version, tree length)
  - V2: 28-byte header, the V1 fields plus four reserved words
  - Legacy: no header; the whole file is the tree

Anything that does not carry the signature with version 1 or 2 is treated as
legacy.

# Basic Usage

Listing an archive:

	archive, err := vpk.Open("pak01_dir.vpk")
	if err != nil {
		log.Fatal(err)
	}

	for e := range archive.All() {
		fmt.Println(e)
	}

Comparing two builds:

	for _, c := range vpk.Diff(oldArchive, newArchive) {
		fmt.Println(c) // "> removed/path", "< added/path" or "M changed/path"
	}

Saving a listing for later comparison:

	f, _ := os.Create("pak01.vpks")
	defer f.Close()
	_, err = vpk.NewSnapshot(archive).WriteTo(f)

# Path Conventions

Entry paths use forward slashes and have the form "dir/name.ext". Directory
tokens are trimmed of surrounding spaces; the token " " marks the root
directory, whose entries have no directory prefix. Use [WithLegacyPaths] to
reproduce the 256-byte name limit of the classic tooling.
*/
package vpk
