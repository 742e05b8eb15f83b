package domain

// Document is the canonical audit document produced by repairing generator
// output. It is a pure value: every substructure is exclusively owned by its
// parent, and edits always go through a cloned working copy.
type Document struct {
	ID             string                   `json:"id,omitempty"`
	URL            string                   `json:"url"`
	AnalyzedAt     string                   `json:"analyzedAt"`
	OverallScore   int                      `json:"overallScore"`
	LiftCategories map[CategoryKey]Category `json:"liftCategories"`
	CriticalIssues []CriticalIssue          `json:"criticalIssues"`
	QuickWins      []QuickWin               `json:"quickWins"`
	Tests          []Test                   `json:"tests"`
	IsEdited       bool                     `json:"isEdited,omitempty"`
	EditedAt       string                   `json:"editedAt,omitempty"`
	SavedAt        string                   `json:"savedAt,omitempty"`
}

// CategoryKey identifies one of the six fixed LIFT categories.
type CategoryKey string

const (
	KeyValueProposition CategoryKey = "valueProposition"
	KeyClarity          CategoryKey = "clarity"
	KeyRelevance        CategoryKey = "relevance"
	KeyAnxiety          CategoryKey = "anxiety"
	KeyDistraction      CategoryKey = "distraction"
	KeyUrgency          CategoryKey = "urgency"
)

// CategoryKeys is the fixed iteration order for every consumer (scoring,
// issue extraction, rendering). Map iteration order is never used.
var CategoryKeys = []CategoryKey{
	KeyValueProposition,
	KeyClarity,
	KeyRelevance,
	KeyAnxiety,
	KeyDistraction,
	KeyUrgency,
}

// Category is one LIFT dimension with its judged assertions.
// For inhibitor categories (anxiety, distraction) a high score means the
// named problem is absent.
type Category struct {
	Name        string      `json:"name"`
	ShortName   string      `json:"shortName"`
	Description string      `json:"description"`
	Score       int         `json:"score"`
	IsInhibitor bool        `json:"isInhibitor,omitempty"`
	Assertions  []Assertion `json:"assertions"`
}

// Status is a per-assertion judgment.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
)

// ValidStatus reports whether s is one of the three allowed judgments.
func ValidStatus(s Status) bool {
	return s == StatusPass || s == StatusFail || s == StatusWarning
}

// Severity ranks how much a failed assertion hurts conversion.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ValidSeverity reports whether s is one of the four allowed ranks.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Effort buckets implementation cost.
type Effort string

const (
	EffortEasy   Effort = "easy"
	EffortMedium Effort = "medium"
	EffortHard   Effort = "hard"
)

// ValidEffort reports whether e is one of the three allowed buckets.
func ValidEffort(e Effort) bool {
	return e == EffortEasy || e == EffortMedium || e == EffortHard
}

// Impact buckets expected conversion impact.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// ValidImpact reports whether i is one of the three allowed buckets.
func ValidImpact(i Impact) bool {
	return i == ImpactHigh || i == ImpactMedium || i == ImpactLow
}

// OriginCustom tags assertions and tests authored by a human editor rather
// than the generator.
const OriginCustom = "custom"

// Assertion is one yes/no/partial judgment within a category.
// Invariant: Recommendation is empty whenever Status is pass.
type Assertion struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Question       string   `json:"question"`
	Status         Status   `json:"status"`
	Severity       Severity `json:"severity"`
	Evidence       string   `json:"evidence"`
	Recommendation string   `json:"recommendation,omitempty"`
	Origin         string   `json:"_origin,omitempty"`
	Edited         bool     `json:"_edited,omitempty"`
}

// CriticalIssue highlights a failed critical/high assertion. Derived by the
// score calculator; Category holds the display name, not the key.
type CriticalIssue struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Impact   Severity `json:"impact"`
}

// QuickWin is an independently authored low-effort suggestion. Never derived.
type QuickWin struct {
	Title     string `json:"title"`
	Current   string `json:"current"`
	Suggested string `json:"suggested"`
	Effort    Effort `json:"effort"`
	Impact    Impact `json:"impact"`
}

// Test is a proposed A/B experiment ranked by PXL score.
// Invariants: at least two variants, the first named "Control"; PxlScore
// equals the weighted factor sum unless a human override froze it.
type Test struct {
	ID                   int        `json:"id"`
	Priority             Severity   `json:"priority"`
	PxlScore             int        `json:"pxlScore"`
	Title                string     `json:"title"`
	Hypothesis           string     `json:"hypothesis"`
	AssertionID          string     `json:"assertionId"`
	Category             string     `json:"category"`
	Variants             []Variant  `json:"variants"`
	ExpectedImpact       Impact     `json:"expectedImpact"`
	ImplementationEffort Effort     `json:"implementationEffort"`
	PxlFactors           PxlFactors `json:"pxlFactors"`
	Origin               string     `json:"_origin,omitempty"`
	Edited               bool       `json:"_edited,omitempty"`
}

// Variant is one arm of an A/B test.
type Variant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ControlVariantName is the required name of the first variant of every test.
const ControlVariantName = "Control"

// DefaultVariants returns the canonical two-arm layout used when the
// generator supplies no usable variant list.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: ControlVariantName, Description: "Current state"},
		{Name: "Variant A", Description: "Proposed change"},
	}
}

// PxlFactors are the six boolean PXL prioritization factors.
type PxlFactors struct {
	AboveFold        bool `json:"aboveFold"`
	NoticeableIn5Sec bool `json:"noticeableIn5Sec"`
	RunOnHighTraffic bool `json:"runOnHighTraffic"`
	AffectsAllUsers  bool `json:"affectsAllUsers"`
	EasyToImplement  bool `json:"easyToImplement"`
	EvidenceBacked   bool `json:"evidenceBacked"`
}

// FactorKey names one PXL factor for toggle operations and display.
type FactorKey string

const (
	FactorAboveFold        FactorKey = "aboveFold"
	FactorNoticeableIn5Sec FactorKey = "noticeableIn5Sec"
	FactorRunOnHighTraffic FactorKey = "runOnHighTraffic"
	FactorAffectsAllUsers  FactorKey = "affectsAllUsers"
	FactorEasyToImplement  FactorKey = "easyToImplement"
	FactorEvidenceBacked   FactorKey = "evidenceBacked"
)

// FactorKeys is the fixed display and toggle order of the PXL factors.
var FactorKeys = []FactorKey{
	FactorAboveFold,
	FactorNoticeableIn5Sec,
	FactorRunOnHighTraffic,
	FactorAffectsAllUsers,
	FactorEasyToImplement,
	FactorEvidenceBacked,
}

// Get returns the value of one factor. Unknown keys read as false.
func (f PxlFactors) Get(key FactorKey) bool {
	switch key {
	case FactorAboveFold:
		return f.AboveFold
	case FactorNoticeableIn5Sec:
		return f.NoticeableIn5Sec
	case FactorRunOnHighTraffic:
		return f.RunOnHighTraffic
	case FactorAffectsAllUsers:
		return f.AffectsAllUsers
	case FactorEasyToImplement:
		return f.EasyToImplement
	case FactorEvidenceBacked:
		return f.EvidenceBacked
	}
	return false
}

// Toggled returns a copy with one factor flipped. Unknown keys are a no-op.
func (f PxlFactors) Toggled(key FactorKey) PxlFactors {
	switch key {
	case FactorAboveFold:
		f.AboveFold = !f.AboveFold
	case FactorNoticeableIn5Sec:
		f.NoticeableIn5Sec = !f.NoticeableIn5Sec
	case FactorRunOnHighTraffic:
		f.RunOnHighTraffic = !f.RunOnHighTraffic
	case FactorAffectsAllUsers:
		f.AffectsAllUsers = !f.AffectsAllUsers
	case FactorEasyToImplement:
		f.EasyToImplement = !f.EasyToImplement
	case FactorEvidenceBacked:
		f.EvidenceBacked = !f.EvidenceBacked
	}
	return f
}

// Clone returns a deep copy of the document. Edit sessions clone the
// baseline so cancelling an edit is simply discarding the copy.
func (d Document) Clone() Document {
	out := d
	out.LiftCategories = make(map[CategoryKey]Category, len(d.LiftCategories))
	for key, cat := range d.LiftCategories {
		c := cat
		c.Assertions = append([]Assertion(nil), cat.Assertions...)
		out.LiftCategories[key] = c
	}
	out.CriticalIssues = append([]CriticalIssue(nil), d.CriticalIssues...)
	out.QuickWins = append([]QuickWin(nil), d.QuickWins...)
	out.Tests = make([]Test, len(d.Tests))
	for i, t := range d.Tests {
		t.Variants = append([]Variant(nil), t.Variants...)
		out.Tests[i] = t
	}
	return out
}

// FailedCount returns the number of failing assertions across all categories.
func (d Document) FailedCount() int {
	var n int
	for _, key := range CategoryKeys {
		for _, a := range d.LiftCategories[key].Assertions {
			if a.Status == StatusFail {
				n++
			}
		}
	}
	return n
}

// Grade maps a 0-100 score to a letter grade for display.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}
