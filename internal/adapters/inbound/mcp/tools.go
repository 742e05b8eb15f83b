package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/liftlens/liftlens/internal/adapters/outbound/report"
	"github.com/liftlens/liftlens/internal/application"
	"github.com/liftlens/liftlens/internal/domain"
)

// registerTools registers all liftlens MCP tools on the given server.
func registerTools(s *server.MCPServer, audits *application.AuditService, history domain.HistoryStore) {
	// 1. liftlens_audit
	s.AddTool(
		mcplib.NewTool("liftlens_audit",
			mcplib.WithDescription("Run a full CRO audit of a webpage and return the audit document as JSON"),
			mcplib.WithString("url",
				mcplib.Required(),
				mcplib.Description("URL of the page to audit"),
			),
		),
		handleAudit(audits),
	)

	// 2. liftlens_history
	s.AddTool(
		mcplib.NewTool("liftlens_history",
			mcplib.WithDescription("List stored audits, most recent first, with id, URL and overall score"),
		),
		handleHistory(history),
	)

	// 3. liftlens_get_audit
	s.AddTool(
		mcplib.NewTool("liftlens_get_audit",
			mcplib.WithDescription("Return one stored audit document as JSON"),
			mcplib.WithString("id",
				mcplib.Required(),
				mcplib.Description("Audit id as shown by liftlens_history"),
			),
		),
		handleGetAudit(history),
	)

	// 4. liftlens_export
	s.AddTool(
		mcplib.NewTool("liftlens_export",
			mcplib.WithDescription("Render one stored audit as a Markdown report"),
			mcplib.WithString("id",
				mcplib.Required(),
				mcplib.Description("Audit id as shown by liftlens_history"),
			),
		),
		handleExport(history),
	)

	// 5. liftlens_delete_audit
	s.AddTool(
		mcplib.NewTool("liftlens_delete_audit",
			mcplib.WithDescription("Delete one stored audit"),
			mcplib.WithString("id",
				mcplib.Required(),
				mcplib.Description("Audit id as shown by liftlens_history"),
			),
		),
		handleDeleteAudit(history),
	)
}

func handleAudit(audits *application.AuditService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		doc, err := audits.Analyze(ctx, url)
		if err != nil {
			return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
		}
		return jsonResult(doc)
	}
}

func handleHistory(history domain.HistoryStore) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		docs, err := history.List()
		if err != nil {
			return errorResult(fmt.Sprintf("listing history failed: %v", err)), nil
		}

		type entry struct {
			ID           string `json:"id"`
			URL          string `json:"url"`
			AnalyzedAt   string `json:"analyzedAt"`
			OverallScore int    `json:"overallScore"`
			IsEdited     bool   `json:"isEdited"`
		}
		entries := make([]entry, 0, len(docs))
		for _, doc := range docs {
			entries = append(entries, entry{
				ID:           doc.ID,
				URL:          doc.URL,
				AnalyzedAt:   doc.AnalyzedAt,
				OverallScore: doc.OverallScore,
				IsEdited:     doc.IsEdited,
			})
		}
		return jsonResult(entries)
	}
}

func handleGetAudit(history domain.HistoryStore) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		doc, err := history.Get(id)
		if err != nil {
			return errorResult(fmt.Sprintf("loading audit failed: %v", err)), nil
		}
		return jsonResult(doc)
	}
}

func handleExport(history domain.HistoryStore) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		doc, err := history.Get(id)
		if err != nil {
			return errorResult(fmt.Sprintf("loading audit failed: %v", err)), nil
		}

		var sb strings.Builder
		if err := report.NewMarkdownWriter(&sb).Write(doc); err != nil {
			return errorResult(fmt.Sprintf("rendering report failed: %v", err)), nil
		}
		return textResult(sb.String()), nil
	}
}

func handleDeleteAudit(history domain.HistoryStore) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		if err := history.Delete(id); err != nil {
			return errorResult(fmt.Sprintf("deleting audit failed: %v", err)), nil
		}
		return textResult("deleted " + id), nil
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
