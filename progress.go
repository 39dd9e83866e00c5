package main

import (
	"fmt"
	"io"
	"time"
)

// Progress reports run progress as "[mm:ss] message" lines.
type Progress struct {
	out     io.Writer
	start   time.Time
	verbose bool
}

// NewProgress creates a progress reporter writing to out (stderr in the CLI).
func NewProgress(out io.Writer, verbose bool) *Progress {
	return &Progress{out: out, start: time.Now(), verbose: verbose}
}

// Log prints a message prefixed with the time since the reporter was created.
func (p *Progress) Log(format string, args ...any) {
	elapsed := p.Elapsed()
	fmt.Fprintf(p.out, "[%02d:%02d] %s\n", int(elapsed.Minutes()), int(elapsed.Seconds())%60, fmt.Sprintf(format, args...))
}

// Verbose prints only when verbose mode is enabled.
func (p *Progress) Verbose(format string, args ...any) {
	if p.verbose {
		p.Log(format, args...)
	}
}

// Elapsed is the time since the reporter was created.
func (p *Progress) Elapsed() time.Duration { return time.Since(p.start) }

// Rate returns n per second of elapsed time, or 0 before any time has passed.
func (p *Progress) Rate(n int) float64 {
	secs := p.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(n) / secs
}
