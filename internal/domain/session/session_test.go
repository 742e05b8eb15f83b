package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlens/liftlens/internal/domain"
	"github.com/liftlens/liftlens/internal/domain/session"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func baselineDoc(t *testing.T) domain.Document {
	t.Helper()
	raw := map[string]any{
		"url": "https://example.com",
		"liftCategories": map[string]any{
			"valueProposition": map[string]any{
				"assertions": []any{
					map[string]any{"id": "VP_CLEAR", "name": "Clear Value", "status": "pass", "severity": "critical", "evidence": "Offer stated in headline"},
					map[string]any{"id": "VP_UNIQUE", "name": "Differentiation", "status": "fail", "severity": "high", "evidence": "No differentiation", "recommendation": "Add comparison"},
				},
			},
			"clarity": map[string]any{
				"assertions": []any{
					map[string]any{"id": "CL_CTA", "name": "CTA Clarity", "status": "fail", "severity": "critical", "evidence": "CTA says Submit"},
				},
			},
		},
		"quickWins": []any{
			map[string]any{"title": "Rename CTA", "current": "Submit", "suggested": "Start trial", "effort": "easy", "impact": "high"},
		},
		"tests": []any{
			map[string]any{
				"id": 1.0, "title": "CTA copy test", "priority": "high",
				"pxlFactors": map[string]any{
					"aboveFold": true, "noticeableIn5Sec": true, "runOnHighTraffic": true,
					"affectsAllUsers": true, "easyToImplement": true, "evidenceBacked": true,
				},
			},
			map[string]any{
				"id": 2.0, "title": "Trust badge test",
				"pxlFactors": map[string]any{"aboveFold": true},
			},
		},
	}
	doc := domain.Repair(raw, domain.RepairContext{RequestedURL: "https://example.com", Now: fixedClock})
	return domain.Recompute(doc)
}

func editingSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{session.WithClock(fixedClock)}, opts...)
	s := session.New(baselineDoc(t), opts...)
	s.Begin()
	return s
}

func strPtr(s string) *string                   { return &s }
func statusPtr(s domain.Status) *domain.Status  { return &s }
func sevPtr(s domain.Severity) *domain.Severity { return &s }

func TestSession_MutationsRejectedWhileViewing(t *testing.T) {
	s := session.New(baselineDoc(t), session.WithClock(fixedClock))

	assert.False(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Status: statusPtr(domain.StatusPass)}))
	assert.False(t, s.DeleteAssertion(domain.KeyClarity, "CL_CTA"))
	assert.Empty(t, s.AddAssertion(domain.KeyClarity, session.AssertionFields{Name: "X"}))
	assert.False(t, s.ToggleTestFactor(1, domain.FactorAboveFold))
	assert.Equal(t, session.Viewing, s.State())
}

func TestSession_CancelDiscardsWorkingCopy(t *testing.T) {
	s := editingSession(t)
	before := s.Document()

	require.True(t, s.SetAssertionField(domain.KeyValueProposition, "VP_CLEAR", session.AssertionPatch{Status: statusPtr(domain.StatusFail)}))
	assert.NotEqual(t, before, s.Document())

	s.Cancel()
	assert.Equal(t, session.Viewing, s.State())
	assert.Equal(t, before, s.Document())
}

func TestSession_SaveStampsAndPromotes(t *testing.T) {
	s := editingSession(t)
	require.True(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Status: statusPtr(domain.StatusPass)}))

	saved := s.Save()

	assert.Equal(t, session.Viewing, s.State())
	assert.True(t, saved.IsEdited)
	assert.Equal(t, "2025-06-01T12:00:00Z", saved.EditedAt)
	assert.Equal(t, saved, s.Document(), "saved copy becomes the new baseline")
}

func TestSession_StatusEditRecomputesWhenDerived(t *testing.T) {
	s := editingSession(t)

	require.True(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Status: statusPtr(domain.StatusPass)}))

	doc := s.Document()
	assert.Equal(t, 100, doc.LiftCategories[domain.KeyClarity].Score)
	cl := doc.LiftCategories[domain.KeyClarity].Assertions[0]
	assert.True(t, cl.Edited)
	assert.Empty(t, cl.Recommendation, "pass clears recommendation")
	for _, issue := range doc.CriticalIssues {
		assert.NotEqual(t, "CL_CTA", issue.ID, "issue disappears once the assertion passes")
	}
}

func TestSession_NoRecomputeWhenOverridden(t *testing.T) {
	s := editingSession(t, session.WithScoreMode(session.ScoreOverridden))
	before := s.Document().LiftCategories[domain.KeyClarity].Score

	require.True(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Status: statusPtr(domain.StatusPass)}))

	assert.Equal(t, before, s.Document().LiftCategories[domain.KeyClarity].Score)
}

func TestSession_DirectScoreOverridesGatedByMode(t *testing.T) {
	derived := editingSession(t)
	assert.False(t, derived.SetCategoryScore(domain.KeyClarity, 90))
	assert.False(t, derived.SetOverallScore(90))

	overridden := editingSession(t, session.WithScoreMode(session.ScoreOverridden))
	assert.True(t, overridden.SetCategoryScore(domain.KeyClarity, 90))
	assert.True(t, overridden.SetOverallScore(77))
	assert.Equal(t, 90, overridden.Document().LiftCategories[domain.KeyClarity].Score)
	assert.Equal(t, 77, overridden.Document().OverallScore)

	assert.False(t, overridden.SetOverallScore(101))
}

func TestSession_DeleteAssertionReconcilesIssuesOnRecompute(t *testing.T) {
	s := editingSession(t)

	// CL_CTA (fail, critical) anchors a critical issue in the baseline.
	found := false
	for _, issue := range s.Document().CriticalIssues {
		if issue.ID == "CL_CTA" {
			found = true
		}
	}
	require.True(t, found)

	require.True(t, s.DeleteAssertion(domain.KeyClarity, "CL_CTA"))

	for _, issue := range s.Document().CriticalIssues {
		assert.NotEqual(t, "CL_CTA", issue.ID)
	}
	assert.Equal(t, 0, s.Document().LiftCategories[domain.KeyClarity].Score, "category emptied of assertions scores 0")
}

func TestSession_AddAssertion(t *testing.T) {
	s := editingSession(t)

	id := s.AddAssertion(domain.KeyUrgency, session.AssertionFields{
		Name:     "Countdown realism",
		Question: "Is the countdown tied to a real deadline?",
		Status:   domain.StatusFail,
		Severity: domain.SeverityHigh,
		Evidence: "Countdown resets on reload",
	})
	require.NotEmpty(t, id)
	assert.Contains(t, id, "CUSTOM_")

	cat := s.Document().LiftCategories[domain.KeyUrgency]
	require.Len(t, cat.Assertions, 1)
	added := cat.Assertions[0]
	assert.Equal(t, domain.OriginCustom, added.Origin)
	assert.Equal(t, id, added.ID)

	assert.Empty(t, s.AddAssertion(domain.KeyUrgency, session.AssertionFields{}), "name is required")
}

func TestSession_AddAssertionDefaultsInvalidEnums(t *testing.T) {
	s := editingSession(t)
	id := s.AddAssertion(domain.KeyUrgency, session.AssertionFields{
		Name:           "Passing note",
		Status:         domain.StatusPass,
		Severity:       "apocalyptic",
		Recommendation: "must vanish",
	})
	require.NotEmpty(t, id)
	a := s.Document().LiftCategories[domain.KeyUrgency].Assertions[0]
	assert.Equal(t, domain.SeverityMedium, a.Severity)
	assert.Empty(t, a.Recommendation)
	assert.Equal(t, "No evidence provided", a.Evidence)
}

func TestSession_QuickWinOperations(t *testing.T) {
	s := editingSession(t)

	require.True(t, s.AddQuickWin(domain.QuickWin{Title: "Trim the form", Effort: "weird", Impact: "huge"}))
	wins := s.Document().QuickWins
	require.Len(t, wins, 2)
	assert.Equal(t, domain.EffortEasy, wins[1].Effort)
	assert.Equal(t, domain.ImpactMedium, wins[1].Impact)

	require.True(t, s.UpdateQuickWin(0, domain.QuickWin{
		Title: "Rename CTA", Current: "Submit", Suggested: "Start free trial",
		Effort: domain.EffortEasy, Impact: domain.ImpactHigh,
	}))
	assert.Equal(t, "Start free trial", s.Document().QuickWins[0].Suggested)

	require.True(t, s.DeleteQuickWin(1))
	assert.Len(t, s.Document().QuickWins, 1)
	assert.False(t, s.DeleteQuickWin(5))
}

func TestSession_ToggleTestFactorAlwaysRecomputesPxl(t *testing.T) {
	s := editingSession(t, session.WithScoreMode(session.ScoreOverridden))

	doc := s.Document()
	require.Equal(t, 1, doc.Tests[0].ID)
	require.Equal(t, 100, doc.Tests[0].PxlScore)

	require.True(t, s.ToggleTestFactor(1, domain.FactorEvidenceBacked))

	doc = s.Document()
	assert.Equal(t, 80, doc.Tests[0].PxlScore, "PXL recomputes even in overridden mode")
	assert.Equal(t, 1, doc.Tests[0].ID, "list position unchanged until next repair")
	assert.True(t, doc.Tests[0].Edited)
}

func TestSession_AddTest(t *testing.T) {
	s := editingSession(t)

	id := s.AddTest(session.TestFields{
		Title:      "Social proof strip",
		Hypothesis: "If we add logos, trust will rise because credibility is visible",
		Category:   "Anxiety",
		PxlFactors: domain.PxlFactors{AboveFold: true, EvidenceBacked: true},
	})
	require.Equal(t, 3, id, "one past the highest existing id")

	tests := s.Document().Tests
	require.Len(t, tests, 3)
	added := tests[2]
	assert.Equal(t, 35, added.PxlScore)
	assert.Equal(t, domain.OriginCustom, added.Origin)
	assert.Equal(t, "Control", added.Variants[0].Name)
	assert.Equal(t, domain.SeverityMedium, added.Priority)

	assert.Zero(t, s.AddTest(session.TestFields{}), "title is required")
}

func TestSession_UpdateAndDeleteTest(t *testing.T) {
	s := editingSession(t)

	require.True(t, s.UpdateTest(2, session.TestPatch{
		Title:    strPtr("Trust badges near CTA"),
		Priority: sevPtr(domain.SeverityCritical),
	}))
	var updated domain.Test
	for _, tc := range s.Document().Tests {
		if tc.ID == 2 {
			updated = tc
		}
	}
	assert.Equal(t, "Trust badges near CTA", updated.Title)
	assert.Equal(t, domain.SeverityCritical, updated.Priority)
	assert.True(t, updated.Edited)

	require.True(t, s.DeleteTest(2))
	assert.Len(t, s.Document().Tests, 1)
	assert.False(t, s.DeleteTest(99))
}

func TestSession_VariantOperations(t *testing.T) {
	s := editingSession(t)

	require.True(t, s.AddVariant(1))
	var tc domain.Test
	for _, cand := range s.Document().Tests {
		if cand.ID == 1 {
			tc = cand
		}
	}
	require.Len(t, tc.Variants, 3)
	assert.Equal(t, "Variant B", tc.Variants[2].Name)

	require.True(t, s.UpdateVariant(1, 0, domain.Variant{Name: "Renamed", Description: "Current CTA"}))
	for _, cand := range s.Document().Tests {
		if cand.ID == 1 {
			tc = cand
		}
	}
	assert.Equal(t, "Control", tc.Variants[0].Name, "control keeps its name")
	assert.Equal(t, "Current CTA", tc.Variants[0].Description)

	require.True(t, s.DeleteVariant(1, 2))
	assert.False(t, s.DeleteVariant(1, 1), "two variants is the floor")
	assert.False(t, s.DeleteVariant(1, 0), "control cannot be deleted")
}

func TestSession_VariantNamesStayLettersPastZ(t *testing.T) {
	s := editingSession(t)

	for i := 0; i < 28; i++ {
		require.True(t, s.AddVariant(1))
	}
	var tc domain.Test
	for _, cand := range s.Document().Tests {
		if cand.ID == 1 {
			tc = cand
		}
	}
	require.Len(t, tc.Variants, 30)
	assert.Equal(t, "Variant Z", tc.Variants[26].Name)
	assert.Equal(t, "Variant AA", tc.Variants[27].Name)
	assert.Equal(t, "Variant AB", tc.Variants[28].Name)
}

func TestSession_InvalidPatchValuesRejected(t *testing.T) {
	s := editingSession(t)
	assert.False(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Status: statusPtr("maybe")}))
	assert.False(t, s.SetAssertionField(domain.KeyClarity, "CL_CTA", session.AssertionPatch{Severity: sevPtr("apocalyptic")}))
	assert.False(t, s.SetAssertionField(domain.KeyClarity, "NOPE", session.AssertionPatch{Status: statusPtr(domain.StatusPass)}))
	assert.False(t, s.UpdateTest(1, session.TestPatch{Priority: sevPtr("apocalyptic")}))
}
