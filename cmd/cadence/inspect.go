package main

import (
	"fmt"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <doc-id>",
		Short: "Replay a stored history and describe the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, closeStore, err := a.editor()
			if err != nil {
				return err
			}
			defer closeStore()

			// Inspecting must not create the document.
			if _, err := ed.Manager().Store().Load(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
				ids, _ := cmd.Flags().GetInt32Slice("select")
				selected := make([]domain.ConstraintID, len(ids))
				for i, id := range ids {
					selected[i] = domain.ConstraintID(id)
				}
				diagram, err := ed.Diagram(cmd.Context(), args[0], selected...)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), diagram)
				return nil
			}
			return printSummary(cmd, ed, args[0])
		},
	}
	cmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
	cmd.Flags().Bool("mermaid", false, "Print the scenario as a Mermaid flowchart")
	cmd.Flags().Int32Slice("select", nil, "Constraint ids to highlight in the flowchart")
	return cmd
}

func printSummary(cmd *cobra.Command, ed *cadence.Editor, docID string) error {
	md, err := ed.Summary(cmd.Context(), docID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Fprint(out, md)
		return nil
	}
	render, err := tui.NewRenderer(0)
	if err != nil {
		return err
	}
	rendered, err := render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

