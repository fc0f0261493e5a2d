package progress

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner wraps a terminal spinner that pauses while messages are printed.
// It does nothing when the writer is not a terminal.
type Spinner struct {
	spinner *spinner.Spinner
	out     io.Writer
	started time.Time
}

// NewSpinner creates a new spinner writing to out
func NewSpinner(out io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &Spinner{
		spinner: s,
		out:     out,
	}
}

// Start shows the spinner with a message, or updates the message when it is
// already running
func (s *Spinner) Start(message string) {
	s.spinner.Suffix = " " + message
	if !s.spinner.Active() {
		s.started = time.Now()
		s.spinner.Start()
	}
}

// Stop hides the spinner and returns how long it was running
func (s *Spinner) Stop() time.Duration {
	if !s.spinner.Active() {
		return 0
	}
	s.spinner.Stop()
	return time.Since(s.started).Round(time.Millisecond)
}

// Active reports whether the spinner is running
func (s *Spinner) Active() bool {
	return s.spinner.Active()
}

// Info prints an info message
func (s *Spinner) Info(message string) {
	s.pause(func() {
		color.New(color.FgCyan).Fprintln(s.out, message)
	})
}

// Error prints an error message
func (s *Spinner) Error(message string) {
	s.pause(func() {
		color.New(color.FgRed).Fprintln(s.out, message)
	})
}

// pause stops the spinner around print and restarts it if it was active
func (s *Spinner) pause(print func()) {
	wasActive := s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}

	print()

	if wasActive {
		s.spinner.Start()
	}
}
