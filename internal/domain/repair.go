package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	defaultScore          = 50
	placeholderEvidence   = "No evidence provided"
	maxCriticalIssues     = 5
	criticalIssueTitleLen = 100
	unknownURL            = "Unknown"
)

// RepairContext carries the request context the repairer falls back to when
// the generator omitted a field.
type RepairContext struct {
	RequestedURL string
	// Now supplies the analyzedAt fallback; nil means time.Now.
	Now func() time.Time
}

func (c RepairContext) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ParseAudit decodes generator output into an untyped value suitable for
// Repair. Markdown code fences around the JSON are tolerated. The only
// failure mode is output that is not a JSON object at all, reported as an
// AnalysisError so the caller can retry the generation once.
func ParseAudit(data []byte) (map[string]any, error) {
	cleaned := strings.TrimSpace(string(data))
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, &AnalysisError{Reason: "invalid response", Err: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &AnalysisError{Reason: "invalid response: not a JSON object"}
	}
	return obj, nil
}

// Repair turns an arbitrary object claiming to be an audit document into a
// canonical Document. Structural defects are never an error: missing fields
// are filled from the rubric registry, out-of-range values are coerced, and
// the cross-field invariants (pass assertions carry no recommendation, six
// categories always present, tests sorted by PXL score) are enforced.
// Repair is idempotent and is the identity on already-canonical input.
func Repair(raw map[string]any, ctx RepairContext) Document {
	doc := Document{}

	doc.ID, _ = asString(raw["id"])
	doc.IsEdited = truthy(raw["isEdited"])
	doc.EditedAt, _ = asString(raw["editedAt"])
	doc.SavedAt, _ = asString(raw["savedAt"])

	if url, ok := asString(raw["url"]); ok && url != "" {
		doc.URL = url
	} else if ctx.RequestedURL != "" {
		doc.URL = ctx.RequestedURL
	} else {
		doc.URL = unknownURL
	}

	if at, ok := asString(raw["analyzedAt"]); ok && at != "" {
		doc.AnalyzedAt = at
	} else {
		doc.AnalyzedAt = ctx.now().Format(time.RFC3339)
	}

	if n, ok := asNumber(raw["overallScore"]); ok {
		doc.OverallScore = clampScore(n)
	} else {
		doc.OverallScore = defaultScore
	}

	rawCats, _ := raw["liftCategories"].(map[string]any)
	doc.LiftCategories = make(map[CategoryKey]Category, len(CategoryKeys))
	for _, key := range CategoryKeys {
		rawCat, ok := rawCats[string(key)].(map[string]any)
		if !ok {
			doc.LiftCategories[key] = NewCategoryFromRubric(key)
			continue
		}
		doc.LiftCategories[key] = repairCategory(key, rawCat)
	}

	if rawIssues, ok := raw["criticalIssues"].([]any); ok {
		// Already-shaped by a prior repair pass or a human edit: trusted.
		doc.CriticalIssues = decodeCriticalIssues(rawIssues)
	} else {
		doc.CriticalIssues = DeriveCriticalIssues(doc.LiftCategories)
	}

	doc.QuickWins = repairQuickWins(raw["quickWins"])
	doc.Tests = repairTests(raw["tests"])

	// Canonical ordering: descending PXL score, ties keep input order.
	sort.SliceStable(doc.Tests, func(i, j int) bool {
		return doc.Tests[i].PxlScore > doc.Tests[j].PxlScore
	})

	return doc
}

func repairCategory(key CategoryKey, raw map[string]any) Category {
	rc := Rubric(key)
	cat := Category{}

	if name, ok := asString(raw["name"]); ok && name != "" {
		cat.Name = name
	} else {
		cat.Name = rc.Name
	}
	if short, ok := asString(raw["shortName"]); ok && short != "" {
		cat.ShortName = short
	} else {
		cat.ShortName = rc.ShortName
	}
	if desc, ok := asString(raw["description"]); ok && desc != "" {
		cat.Description = desc
	} else {
		cat.Description = rc.Description
	}

	// The registry decides inhibitor status; the generator cannot unset it.
	cat.IsInhibitor = rc.IsInhibitor || truthy(raw["isInhibitor"])

	if n, ok := asNumber(raw["score"]); ok {
		cat.Score = clampScore(n)
	} else {
		cat.Score = defaultScore
	}

	rawAssertions, _ := raw["assertions"].([]any)
	cat.Assertions = make([]Assertion, 0, len(rawAssertions))
	for _, ra := range rawAssertions {
		obj, _ := ra.(map[string]any)
		cat.Assertions = append(cat.Assertions, repairAssertion(obj))
	}

	return cat
}

func repairAssertion(raw map[string]any) Assertion {
	a := Assertion{}

	if id, ok := asString(raw["id"]); ok && id != "" {
		a.ID = id
	} else {
		a.ID = "UNKNOWN"
	}
	if name, ok := asString(raw["name"]); ok && name != "" {
		a.Name = name
	} else {
		a.Name = "Unknown"
	}
	a.Question, _ = asString(raw["question"])

	if s, _ := asString(raw["status"]); ValidStatus(Status(s)) {
		a.Status = Status(s)
	} else {
		a.Status = StatusWarning
	}
	if s, _ := asString(raw["severity"]); ValidSeverity(Severity(s)) {
		a.Severity = Severity(s)
	} else {
		a.Severity = SeverityMedium
	}

	if ev, ok := asString(raw["evidence"]); ok && ev != "" {
		a.Evidence = ev
	} else {
		a.Evidence = placeholderEvidence
	}

	// Pass findings never carry a recommendation, whatever was supplied.
	if a.Status != StatusPass {
		a.Recommendation, _ = asString(raw["recommendation"])
	}

	a.Origin, _ = asString(raw["_origin"])
	a.Edited = truthy(raw["_edited"])

	return a
}

func decodeCriticalIssues(raw []any) []CriticalIssue {
	issues := make([]CriticalIssue, 0, len(raw))
	for _, ri := range raw {
		obj, _ := ri.(map[string]any)
		issue := CriticalIssue{}
		issue.ID, _ = asString(obj["id"])
		issue.Category, _ = asString(obj["category"])
		issue.Title, _ = asString(obj["title"])
		impact, _ := asString(obj["impact"])
		issue.Impact = Severity(impact)
		issues = append(issues, issue)
	}
	return issues
}

// DeriveCriticalIssues scans the categories in fixed order and collects every
// failed assertion of critical or high severity, at most maxCriticalIssues.
// The issue title is the evidence truncated to 100 characters, falling back
// to the assertion name.
func DeriveCriticalIssues(categories map[CategoryKey]Category) []CriticalIssue {
	issues := []CriticalIssue{}
	for _, key := range CategoryKeys {
		cat := categories[key]
		for _, a := range cat.Assertions {
			if a.Status != StatusFail {
				continue
			}
			if a.Severity != SeverityCritical && a.Severity != SeverityHigh {
				continue
			}
			issues = append(issues, CriticalIssue{
				ID:       a.ID,
				Category: cat.Name,
				Title:    issueTitle(a),
				Impact:   a.Severity,
			})
		}
	}
	if len(issues) > maxCriticalIssues {
		issues = issues[:maxCriticalIssues]
	}
	return issues
}

func issueTitle(a Assertion) string {
	if a.Evidence == "" {
		return a.Name
	}
	runes := []rune(a.Evidence)
	if len(runes) > criticalIssueTitleLen {
		return string(runes[:criticalIssueTitleLen])
	}
	return a.Evidence
}

func repairQuickWins(raw any) []QuickWin {
	rawWins, _ := raw.([]any)
	wins := make([]QuickWin, 0, len(rawWins))
	for _, rw := range rawWins {
		obj, _ := rw.(map[string]any)
		win := QuickWin{}
		if t, ok := asString(obj["title"]); ok && t != "" {
			win.Title = t
		} else {
			win.Title = "Quick win"
		}
		if c, ok := asString(obj["current"]); ok && c != "" {
			win.Current = c
		} else {
			win.Current = "Current state"
		}
		if s, ok := asString(obj["suggested"]); ok && s != "" {
			win.Suggested = s
		} else {
			win.Suggested = "Suggested change"
		}
		if e, _ := asString(obj["effort"]); ValidEffort(Effort(e)) {
			win.Effort = Effort(e)
		} else {
			win.Effort = EffortEasy
		}
		if i, _ := asString(obj["impact"]); ValidImpact(Impact(i)) {
			win.Impact = Impact(i)
		} else {
			win.Impact = ImpactMedium
		}
		wins = append(wins, win)
	}
	return wins
}

func repairTests(raw any) []Test {
	rawTests, _ := raw.([]any)
	tests := make([]Test, 0, len(rawTests))
	for i, rt := range rawTests {
		obj, _ := rt.(map[string]any)
		tests = append(tests, repairTest(obj, i+1))
	}
	return tests
}

func repairTest(raw map[string]any, position int) Test {
	t := Test{}

	if n, ok := asNumber(raw["id"]); ok {
		t.ID = int(n)
	} else {
		t.ID = position
	}

	if p, _ := asString(raw["priority"]); ValidSeverity(Severity(p)) {
		t.Priority = Severity(p)
	} else {
		t.Priority = SeverityMedium
	}

	t.Title, _ = asString(raw["title"])
	if t.Title == "" {
		t.Title = "A/B Test"
	}
	t.Hypothesis, _ = asString(raw["hypothesis"])
	t.AssertionID, _ = asString(raw["assertionId"])
	t.Category, _ = asString(raw["category"])

	factors, _ := raw["pxlFactors"].(map[string]any)
	t.PxlFactors = PxlFactors{
		AboveFold:        truthy(factors["aboveFold"]),
		NoticeableIn5Sec: truthy(factors["noticeableIn5Sec"]),
		RunOnHighTraffic: truthy(factors["runOnHighTraffic"]),
		AffectsAllUsers:  truthy(factors["affectsAllUsers"]),
		EasyToImplement:  truthy(factors["easyToImplement"]),
		EvidenceBacked:   truthy(factors["evidenceBacked"]),
	}

	// A supplied numeric score passes through so human overrides survive a
	// re-repair; only a missing score is recomputed from the factors.
	if n, ok := asNumber(raw["pxlScore"]); ok {
		t.PxlScore = clampScore(n)
	} else {
		t.PxlScore = PxlScore(t.PxlFactors)
	}

	if rawVariants, ok := raw["variants"].([]any); ok && len(rawVariants) >= 2 {
		t.Variants = make([]Variant, 0, len(rawVariants))
		for _, rv := range rawVariants {
			obj, _ := rv.(map[string]any)
			v := Variant{}
			v.Name, _ = asString(obj["name"])
			v.Description, _ = asString(obj["description"])
			t.Variants = append(t.Variants, v)
		}
		t.Variants[0].Name = ControlVariantName
	} else {
		t.Variants = DefaultVariants()
	}

	if i, _ := asString(raw["expectedImpact"]); ValidImpact(Impact(i)) {
		t.ExpectedImpact = Impact(i)
	} else {
		t.ExpectedImpact = ImpactMedium
	}
	if e, _ := asString(raw["implementationEffort"]); ValidEffort(Effort(e)) {
		t.ImplementationEffort = Effort(e)
	} else {
		t.ImplementationEffort = EffortMedium
	}

	t.Origin, _ = asString(raw["_origin"])
	t.Edited = truthy(raw["_edited"])

	return t
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// truthy mirrors the loose boolean coercion of the generator's JSON world:
// absent, null, false, zero and the empty string are false, anything else
// is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

func clampScore(n float64) int {
	rounded := int(math.Round(n))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
