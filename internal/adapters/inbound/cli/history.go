package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/outbound/tui"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored audits",
		Long:  "List stored audits, most recent first. The store keeps the 50 most recent audits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			docs, err := store.List()
			if err != nil {
				return fmt.Errorf("listing audits: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(docs))
			return nil
		},
	}

	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryDeleteCmd(opts))
	cmd.AddCommand(newHistoryClearCmd(opts))

	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Get(args[0])
			if err != nil {
				return fmt.Errorf("loading audit %s: %w", args[0], err)
			}

			if jsonOutput {
				return renderJSON(cmd, doc)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderAudit(doc))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the audit document as JSON")

	return cmd
}

func newHistoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return fmt.Errorf("deleting audit %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored audits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}
