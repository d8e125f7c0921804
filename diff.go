// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import (
	"fmt"
	"iter"
	"slices"

	"github.com/opencontainers/go-digest"
)

// Lister is anything that can supply entries sorted by path:
// an *Archive, a *Snapshot or a *Chain.
type Lister interface {
	Entries() []Entry
}

// treeDigester is implemented by listers that know the digest of the tree
// they were built from and the path limit applied to it.
type treeDigester interface {
	TreeDigest() digest.Digest
	PathLimit() int
}

// ChangeKind classifies a difference between two listings.
type ChangeKind int

const (
	// OnlyInA marks a path present in the first listing only.
	OnlyInA ChangeKind = iota + 1

	// OnlyInB marks a path present in the second listing only.
	OnlyInB

	// Modified marks a path present in both listings with different CRCs.
	Modified
)

// String returns a readable name for the kind.
func (k ChangeKind) String() string {
	switch k {
	case OnlyInA:
		return "only-in-a"
	case OnlyInB:
		return "only-in-b"
	case Modified:
		return "modified"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Marker returns the one-character prefix used in text diffs.
func (k ChangeKind) Marker() string {
	switch k {
	case OnlyInA:
		return ">"
	case OnlyInB:
		return "<"
	case Modified:
		return "M"
	default:
		return "?"
	}
}

// Change is one difference between two listings.
type Change struct {
	Kind ChangeKind
	Path string
	A    *Entry // nil for OnlyInB
	B    *Entry // nil for OnlyInA
}

// String formats the change as "<marker> <path>".
func (c Change) String() string {
	return c.Kind.Marker() + " " + c.Path
}

// Changes yields the differences between a and b in merge order. Both
// listings must be sorted by path, which every Lister in this package
// guarantees. Entries equal in path and CRC produce nothing.
//
// Entries left over on either side once the other is exhausted are
// reported as well.
func Changes(a, b Lister) iter.Seq[Change] {
	return func(yield func(Change) bool) {
		if sameTree(a, b) {
			return
		}

		left, right := a.Entries(), b.Entries()
		i, j := 0, 0
		for i < len(left) && j < len(right) {
			l, r := &left[i], &right[j]
			switch cmp := ComparePaths(l.Path, r.Path); {
			case cmp == 0:
				i++
				j++
				if l.CRC != r.CRC {
					if !yield(Change{Kind: Modified, Path: l.Path, A: l, B: r}) {
						return
					}
				}
			case cmp < 0:
				i++
				if !yield(Change{Kind: OnlyInA, Path: l.Path, A: l}) {
					return
				}
			default:
				j++
				if !yield(Change{Kind: OnlyInB, Path: r.Path, B: r}) {
					return
				}
			}
		}

		for ; i < len(left); i++ {
			if !yield(Change{Kind: OnlyInA, Path: left[i].Path, A: &left[i]}) {
				return
			}
		}
		for ; j < len(right); j++ {
			if !yield(Change{Kind: OnlyInB, Path: right[j].Path, B: &right[j]}) {
				return
			}
		}
	}
}

// Diff returns every change between a and b.
func Diff(a, b Lister) []Change {
	return slices.Collect(Changes(a, b))
}

// sameTree reports whether both listers were built from identical trees
// with the same path limit.
func sameTree(a, b Lister) bool {
	da, ok := a.(treeDigester)
	if !ok {
		return false
	}
	db, ok := b.(treeDigester)
	if !ok {
		return false
	}
	return da.TreeDigest() != "" &&
		da.TreeDigest() == db.TreeDigest() &&
		da.PathLimit() == db.PathLimit()
}

// Summary counts changes by kind.
type Summary struct {
	OnlyInA  int
	OnlyInB  int
	Modified int
}

// Total returns the number of changes.
func (s Summary) Total() int {
	return s.OnlyInA + s.OnlyInB + s.Modified
}

// Summarize counts the changes in a diff.
func Summarize(changes []Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Kind {
		case OnlyInA:
			s.OnlyInA++
		case OnlyInB:
			s.OnlyInB++
		case Modified:
			s.Modified++
		}
	}
	return s
}
