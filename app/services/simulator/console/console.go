// Package console prints the block events of the simulated network in
// color so a running network can be followed from a terminal.
package console

import (
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Prefixes of the events the reporter prints.
const (
	prefixMined    = "viewer: mined"
	prefixAccepted = "viewer: accepted"
	prefixRejected = "viewer: rejected"
)

// Reporter writes mined, accepted and rejected block events.
type Reporter struct {
	mu       sync.Mutex
	out      io.Writer
	mined    *color.Color
	accepted *color.Color
	rejected *color.Color
	banner   *color.Color
}

// New constructs a reporter writing to the specified writer. Color codes
// are left out when colored is false.
func New(out io.Writer, colored bool) *Reporter {
	r := Reporter{
		out:      out,
		mined:    color.New(color.FgGreen, color.Bold),
		accepted: color.New(color.FgCyan),
		rejected: color.New(color.FgRed),
		banner:   color.New(color.FgYellow),
	}

	for _, c := range []*color.Color{r.mined, r.accepted, r.rejected, r.banner} {
		if colored {
			c.EnableColor()
			continue
		}
		c.DisableColor()
	}

	return &r
}

// Banner prints a line describing the network being started.
func (r *Reporter) Banner(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.banner.Fprintf(r.out, format+"\n", args...)
}

// Report prints the event if it is a block event. It reports whether the
// event was printed.
func (r *Reporter) Report(event string) bool {
	var c *color.Color
	switch {
	case strings.HasPrefix(event, prefixMined):
		c = r.mined
	case strings.HasPrefix(event, prefixAccepted):
		c = r.accepted
	case strings.HasPrefix(event, prefixRejected):
		c = r.rejected
	default:
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.Fprintln(r.out, strings.TrimPrefix(event, "viewer: "))

	return true
}
