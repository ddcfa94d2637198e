package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// Palette shared with the rest of the tooling.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// styles holds the renderers for terminal output. The zero value renders
// plain text.
type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

// stylesFor returns coloured styles when w is a terminal.
func stylesFor(w io.Writer) styles {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		plain := lipgloss.NewStyle()
		return styles{header: plain, muted: plain, success: plain, warning: plain, failure: plain}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		muted:   lipgloss.NewStyle().Foreground(colourMuted),
		success: lipgloss.NewStyle().Foreground(colourSuccess),
		warning: lipgloss.NewStyle().Foreground(colourWarning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}

// status renders an outcome status padded to width, so that colour codes
// do not upset column alignment.
func (s styles) status(st domain.OutcomeStatus, width int) string {
	text := fmt.Sprintf("%-*s", width, st.String())
	switch st {
	case domain.OutcomeSuccess:
		return s.success.Render(text)
	case domain.OutcomeSkipped:
		return s.warning.Render(text)
	default:
		return s.failure.Render(text)
	}
}
