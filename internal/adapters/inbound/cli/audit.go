package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/outbound/generator"
	"github.com/liftlens/liftlens/internal/adapters/outbound/history"
	"github.com/liftlens/liftlens/internal/adapters/outbound/snapshot"
	"github.com/liftlens/liftlens/internal/adapters/outbound/tui"
	"github.com/liftlens/liftlens/internal/application"
	"github.com/liftlens/liftlens/internal/domain"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit a webpage's conversion potential",
		Long:  "Capture the page at the given URL, score it against the LIFT model and store the result in history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			svc, store, err := buildAuditService(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := svc.Analyze(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("audit failed: %w", err)
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

// buildAuditService wires the capture, generation and persistence adapters
// into the audit pipeline. The caller owns the returned store.
func buildAuditService(opts *rootOptions, cfg domain.Config) (*application.AuditService, *history.Store, error) {
	store, err := openHistory(opts, cfg)
	if err != nil {
		return nil, nil, err
	}

	gen := generator.New(generator.Config{
		CompletionsURL: completionsURL(cfg.OpenAI.BaseURL),
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
	})

	return application.NewAuditService(snapshot.New(), gen, store), store, nil
}

func completionsURL(base string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/chat/completions"
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
