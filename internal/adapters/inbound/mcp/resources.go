package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/liftlens/liftlens/internal/domain"
)

// registerResources registers all liftlens MCP resources on the given server.
func registerResources(s *server.MCPServer, history domain.HistoryStore) {
	// 1. liftlens://rubric - the fixed LIFT assertion catalog
	s.AddResource(
		mcplib.NewResource(
			"liftlens://rubric",
			"LIFT Rubric",
			mcplib.WithResourceDescription("The fixed LIFT category and assertion catalog audits are judged against"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRubricResource(),
	)

	// 2. liftlens://audits/{id} - one stored audit (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"liftlens://audits/{id}",
			"Stored Audit",
			mcplib.WithTemplateDescription("A stored audit document by id"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleAuditResource(history),
	)
}

func handleRubricResource() server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		type assertion struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Question string `json:"question"`
			Severity string `json:"severity"`
		}
		type category struct {
			Key         string      `json:"key"`
			Name        string      `json:"name"`
			ShortName   string      `json:"shortName"`
			Description string      `json:"description"`
			IsInhibitor bool        `json:"isInhibitor"`
			Assertions  []assertion `json:"assertions"`
		}

		catalog := make([]category, 0, len(domain.CategoryKeys))
		for _, key := range domain.CategoryKeys {
			rc := domain.Rubric(key)
			cat := category{
				Key:         string(key),
				Name:        rc.Name,
				ShortName:   rc.ShortName,
				Description: rc.Description,
				IsInhibitor: rc.IsInhibitor,
			}
			for _, a := range rc.Assertions {
				cat.Assertions = append(cat.Assertions, assertion{
					ID:       a.ID,
					Name:     a.Name,
					Question: a.Question,
					Severity: string(a.Severity),
				})
			}
			catalog = append(catalog, cat)
		}

		data, err := json.MarshalIndent(catalog, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling rubric: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "liftlens://rubric",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleAuditResource(history domain.HistoryStore) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		id := request.Params.URI[len("liftlens://audits/"):]
		doc, err := history.Get(id)
		if err != nil {
			return nil, fmt.Errorf("loading audit %s: %w", id, err)
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling audit: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
