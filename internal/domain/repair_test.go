package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlens/liftlens/internal/domain"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testCtx() domain.RepairContext {
	return domain.RepairContext{RequestedURL: "https://example.com", Now: fixedClock}
}

func TestParseAudit_RejectsNonObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"garbage", "the model apologizes and refuses"},
		{"array", `[1, 2, 3]`},
		{"scalar", `42`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseAudit([]byte(tt.input))
			require.Error(t, err)
			var ae *domain.AnalysisError
			assert.ErrorAs(t, err, &ae)
		})
	}
}

func TestParseAudit_StripsCodeFences(t *testing.T) {
	raw, err := domain.ParseAudit([]byte("```json\n{\"overallScore\": 72}\n```"))
	require.NoError(t, err)
	assert.Equal(t, float64(72), raw["overallScore"])
}

func TestRepair_EmptyObject(t *testing.T) {
	doc := domain.Repair(map[string]any{}, testCtx())

	assert.Equal(t, "https://example.com", doc.URL)
	assert.Equal(t, fixedClock().Format(time.RFC3339), doc.AnalyzedAt)
	assert.Equal(t, 50, doc.OverallScore)
	assert.Len(t, doc.LiftCategories, 6)
	for _, key := range domain.CategoryKeys {
		cat, ok := doc.LiftCategories[key]
		require.True(t, ok, "category %s must be present", key)
		assert.Equal(t, 50, cat.Score)
		assert.Empty(t, cat.Assertions)
	}
	assert.Empty(t, doc.CriticalIssues)
	assert.Empty(t, doc.QuickWins)
	assert.Empty(t, doc.Tests)
}

func TestRepair_URLFallbacks(t *testing.T) {
	doc := domain.Repair(map[string]any{"url": "https://page.test"}, testCtx())
	assert.Equal(t, "https://page.test", doc.URL)

	doc = domain.Repair(map[string]any{"url": 12}, testCtx())
	assert.Equal(t, "https://example.com", doc.URL)

	doc = domain.Repair(map[string]any{}, domain.RepairContext{Now: fixedClock})
	assert.Equal(t, "Unknown", doc.URL)
}

func TestRepair_OverallScoreCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"valid", 73.0, 73},
		{"rounded", 66.6, 67},
		{"clamped high", 250.0, 100},
		{"clamped low", -3.0, 0},
		{"string is not a number", "85", 50},
		{"missing", nil, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{}
			if tt.raw != nil {
				raw["overallScore"] = tt.raw
			}
			doc := domain.Repair(raw, testCtx())
			assert.Equal(t, tt.want, doc.OverallScore)
		})
	}
}

func TestRepair_CategoryMergesRegistryDefaults(t *testing.T) {
	raw := map[string]any{
		"liftCategories": map[string]any{
			"clarity": map[string]any{
				"score": 80.0,
				// name, shortName, description omitted
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	cl := doc.LiftCategories[domain.KeyClarity]
	assert.Equal(t, "Clarity", cl.Name)
	assert.Equal(t, "CL", cl.ShortName)
	assert.Equal(t, 80, cl.Score)
	assert.NotEmpty(t, cl.Description)
}

func TestRepair_InhibitorCannotBeUnset(t *testing.T) {
	raw := map[string]any{
		"liftCategories": map[string]any{
			"anxiety":     map[string]any{"isInhibitor": false},
			"distraction": map[string]any{},
			"clarity":     map[string]any{"isInhibitor": false},
		},
	}
	doc := domain.Repair(raw, testCtx())

	assert.True(t, doc.LiftCategories[domain.KeyAnxiety].IsInhibitor)
	assert.True(t, doc.LiftCategories[domain.KeyDistraction].IsInhibitor)
	assert.False(t, doc.LiftCategories[domain.KeyClarity].IsInhibitor)
}

func TestRepair_AssertionDefaults(t *testing.T) {
	raw := map[string]any{
		"liftCategories": map[string]any{
			"urgency": map[string]any{
				"assertions": []any{
					map[string]any{}, // everything missing
					map[string]any{
						"id":       "UR_SCARCITY",
						"status":   "definitely-maybe",
						"severity": "catastrophic",
						"evidence": "",
					},
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	assertions := doc.LiftCategories[domain.KeyUrgency].Assertions
	require.Len(t, assertions, 2)

	assert.Equal(t, "UNKNOWN", assertions[0].ID)
	assert.Equal(t, "Unknown", assertions[0].Name)
	assert.Equal(t, domain.StatusWarning, assertions[0].Status)
	assert.Equal(t, domain.SeverityMedium, assertions[0].Severity)
	assert.Equal(t, "No evidence provided", assertions[0].Evidence)

	assert.Equal(t, "UR_SCARCITY", assertions[1].ID)
	assert.Equal(t, domain.StatusWarning, assertions[1].Status, "invented status coerced to warning")
	assert.Equal(t, domain.SeverityMedium, assertions[1].Severity, "invented severity coerced to medium")
	assert.Equal(t, "No evidence provided", assertions[1].Evidence)
}

func TestRepair_PassAssertionLosesRecommendation(t *testing.T) {
	raw := map[string]any{
		"liftCategories": map[string]any{
			"clarity": map[string]any{
				"assertions": []any{
					map[string]any{"id": "CL_CTA", "status": "pass", "recommendation": "should be dropped"},
					map[string]any{"id": "CL_FLOW", "status": "fail", "recommendation": "should be kept"},
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	assertions := doc.LiftCategories[domain.KeyClarity].Assertions
	require.Len(t, assertions, 2)
	assert.Empty(t, assertions[0].Recommendation)
	assert.Equal(t, "should be kept", assertions[1].Recommendation)
}

func TestRepair_CriticalIssuesDerivedWhenMissing(t *testing.T) {
	raw := map[string]any{
		"liftCategories": map[string]any{
			"valueProposition": map[string]any{
				"name": "Value Proposition",
				"assertions": []any{
					map[string]any{"id": "VP_CLEAR", "status": "fail", "severity": "critical", "evidence": "Headline is vague"},
					map[string]any{"id": "VP_UNIQUE", "status": "fail", "severity": "low"},
					map[string]any{"id": "VP_BENEFIT", "status": "pass", "severity": "critical"},
				},
			},
			"anxiety": map[string]any{
				"assertions": []any{
					map[string]any{"id": "AX_SOCIAL", "status": "fail", "severity": "high", "evidence": "No testimonials anywhere"},
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	require.Len(t, doc.CriticalIssues, 2)
	assert.Equal(t, "VP_CLEAR", doc.CriticalIssues[0].ID)
	assert.Equal(t, "Value Proposition", doc.CriticalIssues[0].Category)
	assert.Equal(t, "Headline is vague", doc.CriticalIssues[0].Title)
	assert.Equal(t, domain.SeverityCritical, doc.CriticalIssues[0].Impact)
	assert.Equal(t, "AX_SOCIAL", doc.CriticalIssues[1].ID)
}

func TestRepair_CriticalIssuesCappedAtFive(t *testing.T) {
	assertions := make([]any, 8)
	for i := range assertions {
		assertions[i] = map[string]any{"id": "DI_FOCUS", "status": "fail", "severity": "critical"}
	}
	raw := map[string]any{
		"liftCategories": map[string]any{
			"distraction": map[string]any{"assertions": assertions},
		},
	}
	doc := domain.Repair(raw, testCtx())
	assert.Len(t, doc.CriticalIssues, 5)
}

func TestRepair_CriticalIssueTitleTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "evidence66"
	}
	raw := map[string]any{
		"liftCategories": map[string]any{
			"clarity": map[string]any{
				"assertions": []any{
					map[string]any{"id": "CL_CTA", "status": "fail", "severity": "high", "evidence": long},
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())
	require.Len(t, doc.CriticalIssues, 1)
	assert.Len(t, []rune(doc.CriticalIssues[0].Title), 100)
}

func TestRepair_CriticalIssuesPassThroughWhenSupplied(t *testing.T) {
	raw := map[string]any{
		"criticalIssues": []any{
			map[string]any{"id": "VP_CLEAR", "category": "Value Proposition", "title": "as supplied", "impact": "critical"},
		},
		"liftCategories": map[string]any{
			"anxiety": map[string]any{
				"assertions": []any{
					map[string]any{"id": "AX_SOCIAL", "status": "fail", "severity": "high"},
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	require.Len(t, doc.CriticalIssues, 1)
	assert.Equal(t, "as supplied", doc.CriticalIssues[0].Title, "supplied list is trusted, not re-derived")
}

func TestRepair_QuickWinDefaults(t *testing.T) {
	raw := map[string]any{
		"quickWins": []any{
			map[string]any{},
			map[string]any{"title": "Shorter form", "effort": "impossible", "impact": "huge"},
		},
	}
	doc := domain.Repair(raw, testCtx())

	require.Len(t, doc.QuickWins, 2)
	assert.Equal(t, domain.QuickWin{
		Title:     "Quick win",
		Current:   "Current state",
		Suggested: "Suggested change",
		Effort:    domain.EffortEasy,
		Impact:    domain.ImpactMedium,
	}, doc.QuickWins[0])
	assert.Equal(t, "Shorter form", doc.QuickWins[1].Title)
	assert.Equal(t, domain.EffortEasy, doc.QuickWins[1].Effort)
	assert.Equal(t, domain.ImpactMedium, doc.QuickWins[1].Impact)
}

func TestRepair_TestDefaultsAndPxl(t *testing.T) {
	raw := map[string]any{
		"tests": []any{
			map[string]any{
				// no id, no pxlScore: position id, computed score
				"pxlFactors": map[string]any{"aboveFold": true, "easyToImplement": true},
			},
			map[string]any{
				"id":       7.0,
				"pxlScore": 90.0, // supplied score passes through
				"pxlFactors": map[string]any{
					"aboveFold": true,
				},
			},
		},
	}
	doc := domain.Repair(raw, testCtx())

	require.Len(t, doc.Tests, 2)
	// Sorted descending by pxlScore: the supplied 90 ranks first.
	assert.Equal(t, 7, doc.Tests[0].ID)
	assert.Equal(t, 90, doc.Tests[0].PxlScore)
	assert.Equal(t, 1, doc.Tests[1].ID, "missing id defaults to 1-based position")
	assert.Equal(t, 35, doc.Tests[1].PxlScore, "15 aboveFold + 20 easyToImplement")
	assert.Equal(t, domain.SeverityMedium, doc.Tests[1].Priority)
	assert.Equal(t, "A/B Test", doc.Tests[1].Title)
}

func TestRepair_TestVariantsReplacedWhenTooShort(t *testing.T) {
	raw := map[string]any{
		"tests": []any{
			map[string]any{"variants": []any{map[string]any{"name": "Only one"}}},
			map[string]any{"variants": "nope"},
			map[string]any{"variants": []any{
				map[string]any{"name": "Original", "description": "Current hero"},
				map[string]any{"name": "Variant A", "description": "New hero"},
			}},
		},
	}
	doc := domain.Repair(raw, testCtx())

	require.Len(t, doc.Tests, 3)
	for _, tc := range doc.Tests {
		require.GreaterOrEqual(t, len(tc.Variants), 2)
		assert.Equal(t, "Control", tc.Variants[0].Name)
	}
}

func TestRepair_TestsSortedDescendingStable(t *testing.T) {
	raw := map[string]any{
		"tests": []any{
			map[string]any{"id": 1.0, "pxlScore": 50.0},
			map[string]any{"id": 2.0, "pxlScore": 80.0},
			map[string]any{"id": 3.0, "pxlScore": 50.0},
		},
	}
	doc := domain.Repair(raw, testCtx())

	ids := []int{doc.Tests[0].ID, doc.Tests[1].ID, doc.Tests[2].ID}
	assert.Equal(t, []int{2, 1, 3}, ids, "descending by score, ties keep input order")
}

func TestRepair_Idempotent(t *testing.T) {
	raw := map[string]any{
		"url":          "https://page.test",
		"overallScore": "not a number",
		"liftCategories": map[string]any{
			"clarity": map[string]any{
				"assertions": []any{
					map[string]any{"id": "CL_CTA", "status": "fail", "severity": "critical", "evidence": "CTA says Submit"},
					map[string]any{"status": "pass", "recommendation": "drop me"},
				},
			},
		},
		"quickWins": []any{map[string]any{"title": "Rename CTA"}},
		"tests": []any{
			map[string]any{"pxlFactors": map[string]any{"aboveFold": true, "evidenceBacked": true}},
			map[string]any{"pxlScore": 100.0},
		},
	}
	once := domain.Repair(raw, testCtx())
	twice := domain.Repair(roundTrip(t, once), testCtx())
	assert.Equal(t, once, twice)
}

func TestRepair_NoOpOnCanonicalDocument(t *testing.T) {
	doc := canonicalDocument(t)
	repaired := domain.Repair(roundTrip(t, doc), testCtx())
	assert.Equal(t, doc, repaired)
}

// roundTrip re-encodes a document the way it would arrive from storage or a
// generator pass, producing the untyped shape Repair consumes.
func roundTrip(t *testing.T, doc domain.Document) map[string]any {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	raw, err := domain.ParseAudit(data)
	require.NoError(t, err)
	return raw
}

// canonicalDocument builds a fully valid document by repairing a realistic
// generator payload.
func canonicalDocument(t *testing.T) domain.Document {
	t.Helper()
	raw := map[string]any{
		"url":          "https://example.com",
		"analyzedAt":   "2025-06-01T12:00:00Z",
		"overallScore": 61.0,
		"liftCategories": map[string]any{
			"valueProposition": map[string]any{
				"score": 50.0,
				"assertions": []any{
					map[string]any{"id": "VP_CLEAR", "name": "Clear Value", "status": "pass", "severity": "critical", "evidence": "Headline states the offer"},
					map[string]any{"id": "VP_UNIQUE", "name": "Differentiation", "status": "fail", "severity": "high", "evidence": "No competitor comparison", "recommendation": "Add a comparison block"},
				},
			},
		},
		"quickWins": []any{
			map[string]any{"title": "Rewrite CTA", "current": "Submit", "suggested": "Start free trial", "effort": "easy", "impact": "high"},
		},
		"tests": []any{
			map[string]any{
				"id": 1.0, "priority": "high", "title": "Hero headline test",
				"hypothesis":  "If we lead with the outcome, signups will rise because value is clearer",
				"assertionId": "VP_CLEAR", "category": "Value Proposition",
				"variants": []any{
					map[string]any{"name": "Control", "description": "Current headline"},
					map[string]any{"name": "Variant A", "description": "Outcome-led headline"},
				},
				"expectedImpact": "high", "implementationEffort": "easy",
				"pxlFactors": map[string]any{
					"aboveFold": true, "noticeableIn5Sec": true, "runOnHighTraffic": true,
					"affectsAllUsers": true, "easyToImplement": true, "evidenceBacked": true,
				},
			},
		},
	}
	return domain.Repair(raw, testCtx())
}
