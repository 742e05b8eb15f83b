package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/outbound/report"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored audit as a Markdown report",
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

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			if err := report.NewMarkdownWriter(out).Write(doc); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}
