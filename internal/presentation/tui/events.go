package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// EventPrinter writes one line per model event.
type EventPrinter struct {
	w       io.Writer
	profile termenv.Profile
}

// NewEventPrinter creates a printer for w. Colors are used only when w is a terminal.
func NewEventPrinter(w io.Writer) *EventPrinter {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		profile = termenv.ColorProfile()
	}
	return &EventPrinter{w: w, profile: profile}
}

// NewEventPrinterWithProfile creates a printer with an explicit color profile.
func NewEventPrinterWithProfile(w io.Writer, profile termenv.Profile) *EventPrinter {
	return &EventPrinter{w: w, profile: profile}
}

// Print writes ev.
func (p *EventPrinter) Print(ev domain.ModelEvent) error {
	_, err := fmt.Fprintln(p.w, FormatEvent(ev, p.profile))
	return err
}

// FormatEvent renders "15:04:05.000 beforePublish {payload}". "before" events
// are yellow, "after" events green.
func FormatEvent(ev domain.ModelEvent, profile termenv.Profile) string {
	color := "#94a3b8"
	switch {
	case strings.HasPrefix(ev.Name, "before"):
		color = "#facc15"
	case strings.HasPrefix(ev.Name, "after"):
		color = "#4ade80"
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	name := profile.String(ev.Name).Foreground(profile.Color(color)).Bold()
	line := fmt.Sprintf("%s %s", ts.Format("15:04:05.000"), name)

	if ev.Payload != nil {
		if data, err := json.Marshal(ev.Payload); err == nil {
			line += " " + string(data)
		}
	}
	return line
}
