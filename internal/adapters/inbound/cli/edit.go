package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/inbound/editor"
	"github.com/liftlens/liftlens/internal/application"
)

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a stored audit interactively",
		Long:  "Open a stored audit in the interactive editor. Changes are recomputed live and only persisted when you save.",
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

			edits := application.NewEditService(store)
			sess, err := edits.Open(args[0])
			if err != nil {
				return err
			}

			model := editor.New(sess, edits)
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("running editor: %w", err)
			}

			m, ok := final.(editor.Model)
			if !ok {
				return nil
			}
			if saved := m.Saved(); saved != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (overall %d/100)\n", saved.ID, saved.OverallScore)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes saved")
			}
			return nil
		},
	}
}
