package main

import (
	"fmt"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/script"
	"github.com/spf13/cobra"
)

func newPlayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <script.yaml>",
		Short: "Play a script of commands and gestures against a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			docID, _ := cmd.Flags().GetString("doc")
			if docID == "" {
				docID = sc.Document
			}
			if docID == "" {
				return fmt.Errorf("no document: set --doc or 'document' in %s", args[0])
			}

			var extra []cadence.Option
			if sc.Duration > 0 {
				extra = append(extra, cadence.WithDocumentDuration(sc.Duration))
			}
			ed, closeStore, err := a.editor(extra...)
			if err != nil {
				return err
			}
			defer closeStore()

			runner := script.NewRunner(ed.Manager(),
				script.WithObserver(ed.Metrics().ObserveGesture),
				script.WithLogger(a.logger),
			)
			if err := runner.Run(cmd.Context(), docID, sc); err != nil {
				return err
			}
			return printSummary(cmd, ed, docID)
		},
	}
	cmd.Flags().String("doc", "", "Document id (defaults to the script's document)")
	cmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
	return cmd
}
