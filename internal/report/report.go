// internal/report/report.go
//
// Top-level error report.
//
// Context
// -------
// A Report is what cmd/web prints when the process gives up.  It wraps any
// error, keeps it unchanged, and renders the top message plus the chain of
// distinct underlying causes:
//
//	Error: load /srv/config/production.yaml: open …: no such file or directory
//
//	Caused by:
//	   0: open …: no such file or directory
//	   1: no such file or directory
//
// Reports are for humans.  They expose no Unwrap, so nothing downstream can
// match on them; code that needs to branch uses apperr.Classify on the
// original error.
//
// Notes
// -----
//   • The theme is process-global and installed exactly once by Install.
//     Rendering before Install uses the plain theme.
//   • Oxford commas, two spaces after periods.

package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yanizio/inventario/internal/apperr"
)

// Report is the human-readable wrapper around a fatal error.
type Report struct {
	err error
}

// New wraps err.  A nil err yields a nil *Report.
func New(err error) *Report {
	if err == nil {
		return nil
	}
	return &Report{err: err}
}

// Error returns the wrapped error's message unchanged.
func (r *Report) Error() string { return r.err.Error() }

// Render writes the full report, causes included, using the installed
// theme.
func (r *Report) Render(w io.Writer) error {
	th := currentTheme()

	var b strings.Builder
	b.WriteString(th.header("Error:"))
	b.WriteString(" ")
	b.WriteString(th.message(r.err.Error()))
	b.WriteString("\n")

	if chain := causes(r.err); len(chain) > 0 {
		b.WriteString("\n")
		b.WriteString(th.header("Caused by:"))
		b.WriteString("\n")
		for i, c := range chain {
			fmt.Fprintf(&b, "  %s %s\n", th.index(fmt.Sprintf("%2d:", i)), th.message(c))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// causes walks the unwrap chain depth-first, joined errors included, and
// returns each distinct message below the top one.  Transparent wrappers
// repeat their cause's message and are folded away.
func causes(top error) []string {
	seen := map[string]bool{top.Error(): true}
	var out []string

	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if msg := err.Error(); !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}

	walk(errors.Unwrap(top))
	if j, ok := top.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			walk(e)
		}
	}
	return out
}

//
// Theme
//

type theme struct {
	header  func(string) string
	index   func(string) string
	message func(string) string
}

func plainTheme() theme {
	id := func(s string) string { return s }
	return theme{header: id, index: id, message: id}
}

func colourTheme() theme {
	header := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	index := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	return theme{
		header:  func(s string) string { return header.Render(s) },
		index:   func(s string) string { return index.Render(s) },
		message: func(s string) string { return s },
	}
}

var (
	mu        sync.Mutex
	installed bool
	active    = plainTheme()
)

func currentTheme() theme {
	mu.Lock()
	defer mu.Unlock()
	return active
}

// Install selects the colour theme when w is an interactive terminal and
// the plain theme otherwise.  It may be called once per process.
func Install(w io.Writer) error {
	mu.Lock()
	defer mu.Unlock()

	if installed {
		return apperr.LogInit(errors.New("error report theme already installed"))
	}
	installed = true

	if isTerminal(w) {
		active = colourTheme()
	} else {
		active = plainTheme()
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var osExit = os.Exit

// Exit renders err to stderr and terminates the process with status 1.
func Exit(err error) {
	r := New(err)
	if r == nil {
		r = New(errors.New("unknown error"))
	}
	_ = r.Render(os.Stderr)
	osExit(1)
}
