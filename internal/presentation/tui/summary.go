package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadence/pkg/domain"
)

// Summary describes the root scenario of doc as markdown: one table per kind
// of graph element, then the processes and racks of each constraint.
func Summary(doc *domain.Document, done, undone int) string {
	var b strings.Builder
	s := doc.Scenario()

	fmt.Fprintf(&b, "# %s\n\n", doc.ID)
	fmt.Fprintf(&b, "Duration **%s**, %d command(s) done, %d undone.\n\n", doc.Base().Durations.Default(), done, undone)

	b.WriteString("## Time nodes\n\n| id | date | events |\n|---|---|---|\n")
	for _, tn := range s.TimeNodes.All() {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", tn.ID(), tn.Date(), joinIDs(tn.Events()))
	}

	b.WriteString("\n## Events\n\n| id | time node | date | y | states |\n|---|---|---|---|---|\n")
	for _, ev := range s.Events.All() {
		fmt.Fprintf(&b, "| %d | %d | %s | %.2f | %s |\n", ev.ID(), ev.TimeNode(), ev.Date(), ev.HeightPercentage(), joinIDs(ev.States()))
	}

	b.WriteString("\n## Constraints\n\n| id | from | to | start | duration | y |\n|---|---|---|---|---|---|\n")
	for _, c := range s.Constraints.All() {
		fmt.Fprintf(&b, "| %d | %d | %d | %s | %s | %.2f |\n",
			c.ID(), c.StartState(), c.EndState(), c.StartDate(), c.Durations.Default(), c.HeightPercentage())
	}

	for _, c := range s.Constraints.All() {
		if c.Processes.Len() == 0 && c.Racks.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### Constraint %d\n\n", c.ID())
		for _, p := range c.Processes.All() {
			fmt.Fprintf(&b, "- process %d: `%s`, %s\n", p.ID(), p.Kind(), p.Duration())
		}
		for _, r := range c.Racks.All() {
			shown := ""
			if id, ok := c.FullView().ShownRack(); ok && id == r.ID() {
				shown = " (shown)"
			}
			fmt.Fprintf(&b, "- rack %d%s: %d slot(s)\n", r.ID(), shown, r.Slots.Len())
		}
	}
	return b.String()
}

func joinIDs[T ~int32](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
