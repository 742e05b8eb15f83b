package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlens/liftlens/internal/adapters/outbound/report"
	"github.com/liftlens/liftlens/internal/domain"
)

func auditedDoc(t *testing.T) *domain.Document {
	t.Helper()
	raw := map[string]any{
		"url": "https://example.com",
		"liftCategories": map[string]any{
			"clarity": map[string]any{
				"assertions": []any{
					map[string]any{"id": "CL_CTA", "name": "CTA Clarity", "status": "fail", "severity": "critical", "evidence": "CTA says Submit", "recommendation": "Use an action verb like Start free trial"},
					map[string]any{"id": "CL_HEADLINE", "name": "Headline Clarity", "status": "pass", "severity": "high", "evidence": "Headline states the outcome"},
				},
			},
		},
		"quickWins": []any{
			map[string]any{"title": "Rename CTA", "current": "Submit", "suggested": "Start free trial", "effort": "easy", "impact": "high"},
		},
		"tests": []any{
			map[string]any{
				"id": 1.0, "title": "CTA copy test", "priority": "high",
				"hypothesis": "If we rename the CTA, then signups will rise because the next step is explicit",
				"pxlFactors": map[string]any{"aboveFold": true, "noticeableIn5Sec": true, "evidenceBacked": true},
			},
		},
	}
	doc := domain.Repair(raw, domain.RepairContext{
		RequestedURL: "https://example.com",
		Now:          func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	doc = domain.Recompute(doc)
	return &doc
}

func render(t *testing.T, doc *domain.Document) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, report.NewMarkdownWriter(&sb).Write(doc))
	return sb.String()
}

func TestMarkdownWriter_Write(t *testing.T) {
	out := render(t, auditedDoc(t))

	assert.Contains(t, out, "# CRO Audit Report")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "## LIFT Scorecard")

	for _, key := range domain.CategoryKeys {
		assert.Contains(t, out, domain.Rubric(key).Name)
	}

	assert.Contains(t, out, "## Critical Issues")
	assert.Contains(t, out, "CTA says Submit")
	assert.Contains(t, out, "Use an action verb")

	assert.Contains(t, out, "## Quick Wins")
	assert.Contains(t, out, "Start free trial")

	assert.Contains(t, out, "## Prioritized A/B Tests")
	assert.Contains(t, out, "CTA copy test (PXL 50)")
	assert.Contains(t, out, "Above Fold")
	assert.Contains(t, out, "Noticeable In 5 Sec")
	assert.Contains(t, out, "Control")
}

func TestMarkdownWriter_EditedStatus(t *testing.T) {
	doc := auditedDoc(t)
	doc.IsEdited = true
	doc.EditedAt = "2025-06-02T09:00:00Z"

	out := render(t, doc)
	assert.Contains(t, out, "Edited 2025-06-02T09:00:00Z")
}

func TestMarkdownWriter_EmptySections(t *testing.T) {
	doc := domain.Repair(map[string]any{}, domain.RepairContext{RequestedURL: "https://example.com"})
	doc = domain.Recompute(doc)

	out := render(t, &doc)
	assert.Contains(t, out, "No critical conversion blockers detected")
	assert.Contains(t, out, "No quick wins identified.")
	assert.Contains(t, out, "No tests recommended.")
	assert.Contains(t, out, "No assertions evaluated.")
}
