package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/liftlens/liftlens/internal/application"
	"github.com/liftlens/liftlens/internal/domain"
)

// NewLiftLensMCPServer creates an MCP server with all liftlens tools and
// resources registered. The audit service and history store are shared with
// the CLI so MCP clients see the same history.
func NewLiftLensMCPServer(audits *application.AuditService, history domain.HistoryStore) *server.MCPServer {
	s := server.NewMCPServer(
		"liftlens",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, audits, history)
	registerResources(s, history)

	return s
}
