package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the eventable ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Indigo to rose, one step per line
	lines := []struct {
		text  string
		color string
	}{
		{"                       _        _     _      ", "#818cf8"},
		{"   _____   _____ _ __ | |_ __ _| |__ | | ___ ", "#a78bfa"},
		{"  / _ \\ \\ / / _ \\ '_ \\| __/ _` | '_ \\| |/ _ \\", "#c084fc"},
		{" |  __/\\ V /  __/ | | | || (_| | |_) | |  __/", "#e879f9"},
		{"  \\___| \\_/ \\___|_| |_|\\__\\__,_|_.__/|_|\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
