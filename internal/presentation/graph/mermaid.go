package graph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// Overlay highlights objects on top of the graph.
type Overlay struct {
	// Selected constraints get the "selected" style.
	Selected []domain.ConstraintID
}

// GenerateMermaid renders a scenario as a Mermaid flowchart, left to right.
// Time nodes are subgraphs holding their events, each constraint is an edge
// from the event of its start state to the event of its end state:
// - Start event: ((Circle))
// - Other events: (Rounded)
// - Disabled constraints: dotted edge
// Executing constraints and the overlay selection get their own classes.
func GenerateMermaid(sc *domain.Scenario, overlay *Overlay) (string, error) {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, tn := range sc.TimeNodes.All() {
		fmt.Fprintf(&sb, "    subgraph %s[\"t=%s\"]\n", timeNodeID(tn.ID()), formatDate(tn.Date()))
		for _, id := range tn.Events() {
			opener, closer := "(", ")"
			if id == sc.StartEvent() {
				opener, closer = "((", "))"
			}
			fmt.Fprintf(&sb, "        %s%s\"event %d\"%s\n", eventID(id), opener, id, closer)
		}
		sb.WriteString("    end\n")
	}

	var executing []int
	for i, c := range sc.Constraints.All() {
		from, err := sc.EventOfState(c.StartState())
		if err != nil {
			return "", fmt.Errorf("constraint %d: %w", c.ID(), err)
		}
		to, err := sc.EventOfState(c.EndState())
		if err != nil {
			return "", fmt.Errorf("constraint %d: %w", c.ID(), err)
		}

		label := fmt.Sprintf("c%d %s", c.ID(), formatDate(c.Durations.Default()))
		if n := c.Processes.Len(); n > 0 {
			label += fmt.Sprintf(" <br/> %d process(es)", n)
		}
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if c.ExecutionState() == domain.ExecutionDisabled {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", eventID(from.ID()), arrow, eventID(to.ID()))
		if c.ExecutionState() == domain.ExecutionExecuting {
			executing = append(executing, i)
		}
	}

	var selected []int
	if overlay != nil {
		order := sc.Constraints.IDs()
		for _, id := range overlay.Selected {
			for i, cid := range order {
				if cid == id {
					selected = append(selected, i)
				}
			}
		}
	}

	if len(executing) > 0 || len(selected) > 0 {
		sb.WriteString("\n    %% Styles\n")
		// Mermaid styles edges by declaration index, not by name.
		writeLinkStyle(&sb, executing, "stroke:#2e7d32,stroke-width:3px")
		writeLinkStyle(&sb, selected, "stroke:#fbc02d,stroke-width:4px")
	}

	return sb.String(), nil
}

func writeLinkStyle(sb *strings.Builder, indexes []int, style string) {
	if len(indexes) == 0 {
		return
	}
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = strconv.Itoa(idx)
	}
	fmt.Fprintf(sb, "    linkStyle %s %s;\n", strings.Join(parts, ","), style)
}

func timeNodeID(id domain.TimeNodeID) string { return fmt.Sprintf("tn%d", id) }
func eventID(id domain.EventID) string { return fmt.Sprintf("ev%d", id) }

func formatDate(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
