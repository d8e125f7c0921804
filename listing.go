// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"bufio"
	"fmt"
	"io"
)

// String formats the entry as a versioning line:
// "<path> CRC:<crc> size:<bytes>".
func (e Entry) String() string {
	return fmt.Sprintf("%s CRC:%010x size:%d", e.Path, e.CRC, e.Size())
}

// WriteListing writes one versioning line per entry, in path order.
func WriteListing(w io.Writer, l Lister) error {
	bw := bufio.NewWriter(w)
	for _, e := range l.Entries() {
		if _, err := fmt.Fprintln(bw, e.String()); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// WriteNames writes one entry path per line, in path order.
func WriteNames(w io.Writer, l Lister) error {
	bw := bufio.NewWriter(w)
	for _, e := range l.Entries() {
		if _, err := fmt.Fprintln(bw, e.Path); err != nil {
			return fmt.Errorf("write names: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write names: %w", err)
	}
	return nil
}

// WriteDiff writes one "<marker> <path>" line per change.
func WriteDiff(w io.Writer, changes []Change) error {
	bw := bufio.NewWriter(w)
	for _, c := range changes {
		if _, err := fmt.Fprintln(bw, c.String()); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}
	return nil
}
