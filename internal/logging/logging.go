// Package logging builds the console logger shared by the unpacker and
// the command line.
package logging

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "allcode"

// Level selects how much is logged.
type Level int

const (
	// Normal logs each step of an unpack.
	Normal Level = iota
	// Verbose adds block previews.
	Verbose
	// Quiet logs only warnings and errors.
	Quiet
)

// New returns a logger writing to w.
func New(w io.Writer, level Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  level.logLevel(),
	})
	l.SetStyles(styles())
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func (l Level) logLevel() log.Level {
	switch l {
	case Verbose:
		return log.DebugLevel
	case Quiet:
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("196"))
	s.Keys["path"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	return s
}
