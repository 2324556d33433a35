package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss/v2"
)

// Alerter shows a blocking, user-visible message
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to Alerter
type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) {
	f(msg)
}

var alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))

// TerminalAlerter prints alerts to a terminal stream
type TerminalAlerter struct {
	out io.Writer
}

func NewTerminalAlerter(w io.Writer) *TerminalAlerter {
	return &TerminalAlerter{out: colorprofile.NewWriter(w, os.Environ())}
}

func (a *TerminalAlerter) Alert(msg string) {
	fmt.Fprintln(a.out, alertStyle.Render("! "+msg))
}
