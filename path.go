// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import "strings"

// normalizePath turns a raw path token into the directory prefix used for
// every file listed under it. Spaces are trimmed from both ends and a
// trailing slash is added to anything left over, so " maps " becomes "maps/".
//
// A token made only of spaces (VPK writers use " " for the root directory)
// or an empty token normalizes to "" and entries under it get no prefix.
//
// With limit > 0 the token is first cut to limit-1 bytes, and the slash is
// only appended while the result is shorter than limit-1.
func normalizePath(raw string, limit int) string {
	if limit > 0 && len(raw) > limit-1 {
		raw = raw[:limit-1]
	}

	dir := strings.Trim(raw, " ")
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}
	if limit > 0 && len(dir) >= limit-1 {
		return dir
	}
	return dir + "/"
}

// joinPath builds "<dir><name>.<ext>", honoring the same limit as normalizePath.
func joinPath(dir, name, ext string, limit int) string {
	full := dir + name + "." + ext
	if limit > 0 && len(full) > limit-1 {
		full = full[:limit-1]
	}
	return full
}

// ComparePaths orders two entry paths byte-wise, looking at no more than
// PathLimit bytes of either. Paths sharing their first PathLimit bytes
// compare equal.
func ComparePaths(a, b string) int {
	if len(a) > PathLimit {
		a = a[:PathLimit]
	}
	if len(b) > PathLimit {
		b = b[:PathLimit]
	}
	return strings.Compare(a, b)
}
