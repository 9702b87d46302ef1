package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress reports analysis progress to stderr with an elapsed-time prefix.
type Progress struct {
	start   time.Time
	verbose bool
	out     io.Writer
}

// NewProgress creates a progress reporter whose clock starts now.
func NewProgress(verbose bool) *Progress {
	return &Progress{start: time.Now(), verbose: verbose, out: os.Stderr}
}

// SetOutput redirects where Progress writes its log lines, for tests that
// want to inspect them instead of letting them reach stderr.
func (p *Progress) SetOutput(w io.Writer) {
	p.out = w
}

// Log prints a message prefixed with elapsed minutes:seconds.
func (p *Progress) Log(format string, args ...any) {
	elapsed := time.Since(p.start)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.out, "[%02d:%02d] %s\n", mins, secs, msg)
}

// Verbose prints only when verbose mode is enabled.
func (p *Progress) Verbose(format string, args ...any) {
	if p.verbose {
		p.Log(format, args...)
	}
}

// Warn prints a warning, always, regardless of verbosity.
func (p *Progress) Warn(format string, args ...any) {
	p.Log("warning: "+format, args...)
}

// Done logs a closing summary line with humanized counts, e.g.
// "parsed 12,480 basic blocks across 3,110 functions in 1.2s".
func (p *Progress) Done(blocks, functions int) {
	p.Log("parsed %s basic blocks across %s functions in %s",
		humanize.Comma(int64(blocks)),
		humanize.Comma(int64(functions)),
		time.Since(p.start).Round(time.Millisecond))
}
