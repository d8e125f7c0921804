// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/suprsokr/go-vpk"
)

// diffStyles colors diff lines by change kind.
type diffStyles struct {
	onlyInA  lipgloss.Style
	onlyInB  lipgloss.Style
	modified lipgloss.Style
}

// newDiffStyles builds styles for w. In "auto" mode color is used only
// when w is a terminal.
func newDiffStyles(w io.Writer, mode string) diffStyles {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(colorProfile(w, mode))

	return diffStyles{
		onlyInA:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
		onlyInB:  renderer.NewStyle().Foreground(lipgloss.Color("2")),
		modified: renderer.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func colorProfile(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case "always":
		return termenv.ANSI
	case "never":
		return termenv.Ascii
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.ANSI
	}
	return termenv.Ascii
}

// render formats c as "<marker> <path>" in the color for its kind.
func (s diffStyles) render(c vpk.Change) string {
	switch c.Kind {
	case vpk.OnlyInA:
		return s.onlyInA.Render(c.String())
	case vpk.OnlyInB:
		return s.onlyInB.Render(c.String())
	case vpk.Modified:
		return s.modified.Render(c.String())
	default:
		return c.String()
	}
}
