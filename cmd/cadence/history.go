package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored document histories",
		Long:  `List, show, and remove the command histories kept by the configured backend.`,
	}

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List documents with a stored history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(a.cfg)
			if err != nil {
				return err
			}
			defer b.close()

			ids, err := b.store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing histories: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No histories found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <doc-id>",
		Short: "Print the stored history of a document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(a.cfg)
			if err != nil {
				return err
			}
			defer b.close()

			h, err := b.store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading history '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(h, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <doc-id>...",
		Short: "Remove one or more histories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(a.cfg)
			if err != nil {
				return err
			}
			defer b.close()

			var errs []error
			for _, id := range args {
				if err := b.store.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed history '%s'\n", id)
			}
			return errors.Join(errs...)
		},
	}

	historyCmd.AddCommand(lsCmd, showCmd, rmCmd)
	return historyCmd
}
