package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// ActionsMarkdown renders handler names as a markdown table with the events
// each one emits. Descriptions are keyed by handler name.
func ActionsMarkdown(handlers []string, descriptions map[string]string) string {
	if len(handlers) == 0 {
		return "_No actions registered._\n"
	}

	var sb strings.Builder
	sb.WriteString("# Actions\n\n")
	sb.WriteString("| Action | Handler | Events | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, handler := range handlers {
		action, ok := domain.ActionFromHandler(handler)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("| `%s` | `%s` | `%s`, `%s` | %s |\n",
			action, handler, domain.BeforeEvent(action), domain.AfterEvent(action),
			strings.ReplaceAll(descriptions[handler], "|", "\\|")))
	}
	return sb.String()
}
