// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vpk

import "log/slog"

// Option configures how an archive is parsed.
type Option func(*options)

type options struct {
	pathLimit int
	logger    *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pathLimit < 0 {
		o.pathLimit = 0
	}
	return o
}

// WithPathLimit makes path construction behave like a fixed buffer of n
// bytes: raw path tokens and full entry paths are cut to n-1 bytes, and the
// trailing slash is only added while there is room for it.
//
// A limit of zero or less disables truncation, which is the default.
func WithPathLimit(n int) Option {
	return func(o *options) {
		o.pathLimit = n
	}
}

// WithLegacyPaths is WithPathLimit(PathLimit). Use it when listings must match
// output produced by the classic 256-byte name buffer exactly.
func WithLegacyPaths() Option {
	return WithPathLimit(PathLimit)
}

// WithLogger sets the logger that receives per-entry debug records and
// open/parse summaries. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
