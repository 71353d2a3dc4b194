// Package progress provides terminal progress reporting for multi-file
// operations. Output is suppressed when stderr is not a terminal or when
// the item count is too small to be worth reporting.
package progress

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// minItems is the number of items below which no progress is shown.
const minItems = 5

// Progress reports incremental progress on stderr.
type Progress struct {
	label   string
	total   int
	current int
	enabled bool
	started time.Time
}

// New creates a progress reporter for total items with the given label.
// Reporting is disabled for small totals or non-terminal stderr.
func New(label string, total int) *Progress {
	return &Progress{
		label:   label,
		total:   total,
		enabled: total >= minItems && term.IsTerminal(int(os.Stderr.Fd())),
		started: time.Now(),
	}
}

// Increment advances the counter by one and redraws the line.
func (p *Progress) Increment() {
	p.current++
	p.print()
}

func (p *Progress) print() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s: %d/%d", p.label, p.current, p.total)
}

// Done finishes the progress line with the elapsed time.
func (p *Progress) Done() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s: %d/%d (%s)\n",
		p.label, p.current, p.total, time.Since(p.started).Round(time.Millisecond))
}

// Spinner shows activity for operations with unknown duration.
type Spinner struct {
	label   string
	enabled bool
	stop    chan struct{}
	done    chan struct{}
}

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// NewSpinner creates and starts a spinner with the given label.
func NewSpinner(label string) *Spinner {
	s := &Spinner{
		label:   label,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if s.enabled {
		go s.run()
	} else {
		close(s.done)
	}
	return s
}

func (s *Spinner) run() {
	defer close(s.done)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	i := 0
	for {
		select {
		case <-s.stop:
			fmt.Fprintf(os.Stderr, "\r%*s\r", len(s.label)+2, "")
			return
		case <-tick.C:
			fmt.Fprintf(os.Stderr, "\r%c %s", spinnerFrames[i%len(spinnerFrames)], s.label)
			i++
		}
	}
}

// Stop stops the spinner and clears its line.
func (s *Spinner) Stop() {
	if s.enabled {
		close(s.stop)
	}
	<-s.done
}
