package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/outbound/config"
	"github.com/liftlens/liftlens/internal/adapters/outbound/history"
	"github.com/liftlens/liftlens/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	dataDir string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "liftlens",
		Short: "CRO audits for landing pages",
		Long:  "LiftLens captures a webpage, scores it against the six LIFT conversion categories and stores the audit so you can review, edit and export it.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for the audit database (defaults to the XDG data dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAuditCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newEditCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the YAML config with env overrides applied.
func loadConfig() (domain.Config, error) {
	cfg, err := config.New().Load()
	if err != nil {
		return domain.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openHistory opens the audit store, preferring the --data-dir flag over
// the configured directory.
func openHistory(opts *rootOptions, cfg domain.Config) (*history.Store, error) {
	dir := opts.dataDir
	if dir == "" {
		dir = cfg.History.Dir
	}
	if dir == "" {
		dir = history.DefaultDir()
	}
	store, err := history.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}
	return store, nil
}
