package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/liftlens/liftlens/internal/adapters/inbound/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the LiftLens MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start LiftLens MCP server (stdio)",
		Long:  "Start the LiftLens MCP server using stdio transport. This lets AI assistants run audits, browse history and export reports.",
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

			s := mcpadapter.NewLiftLensMCPServer(svc, store)
			return server.ServeStdio(s)
		},
	}
}
