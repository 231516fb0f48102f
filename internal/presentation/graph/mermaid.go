package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/eventable/pkg/domain"
)

// Overlay contains runtime data to visualize on the diagram.
type Overlay struct {
	// FiredEvents are event names observed at runtime (e.g. from Redis history).
	FiredEvents []string
}

// GenerateMermaid produces a Mermaid flowchart of the dispatch path of every
// handler name in handlers:
//
//	call --> beforeX --> actionX --> afterX
//
// Unknown actions fall through to the fallback node, then to unsupported.
// Handler names that do not follow the action<Name> convention are skipped.
func GenerateMermaid(handlers []string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    call((\"call\"))\n")
	sb.WriteString("    fallback{{\"fallback\"}}\n")
	sb.WriteString("    unsupported[/\"unsupported\"/]\n")

	for _, handler := range handlers {
		action, ok := domain.ActionFromHandler(handler)
		if !ok {
			continue
		}
		before := domain.BeforeEvent(action)
		after := domain.AfterEvent(action)

		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", sanitizeMermaidID(before), before))
		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", sanitizeMermaidID(handler), handler))
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", sanitizeMermaidID(after), after))
		sb.WriteString(fmt.Sprintf("    call -- \"%s\" --> %s\n", strings.ReplaceAll(action, "\"", "'"), sanitizeMermaidID(before)))
		sb.WriteString(fmt.Sprintf("    %s --> %s --> %s\n", sanitizeMermaidID(before), sanitizeMermaidID(handler), sanitizeMermaidID(after)))
	}

	sb.WriteString("    call -. \"no handler\" .-> fallback\n")
	sb.WriteString("    fallback -. \"not handled\" .-> unsupported\n")

	if overlay != nil && len(overlay.FiredEvents) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef fired fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, ev := range overlay.FiredEvents {
			safeID := sanitizeMermaidID(ev)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s fired;\n", safeID))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
