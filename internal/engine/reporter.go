package engine

import (
	"fmt"
	"io"
)

// Reporter receives a notification per processed row. The interactive setup
// context renders them as progress lines; headless runs rely on the logger
// and use NopReporter.
type Reporter interface {
	Step(phase string, current, total int, name string)
}

// NopReporter discards progress notifications.
type NopReporter struct{}

func (NopReporter) Step(string, int, int, string) {}

// ConsoleReporter writes one progress line per processed row, with the
// current/total position within the phase.
type ConsoleReporter struct {
	W io.Writer
}

func (c ConsoleReporter) Step(phase string, current, total int, name string) {
	fmt.Fprintf(c.W, "  [%d/%d] %s: %s\n", current, total, phase, name)
}
