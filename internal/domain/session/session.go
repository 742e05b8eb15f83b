// Package session implements the edit transaction engine for audit
// documents. A session moves between Viewing and Editing; entering Editing
// clones the baseline document into a working copy, and every operation
// applies one atomic mutation to that copy. Save promotes the working copy
// to the new baseline, Cancel discards it.
//
// Invalid operations (wrong state, unknown ids, direct score overrides while
// scores are derived) are rejected as no-ops rather than errors: they
// originate from UI affordances that should already prevent them, but the
// engine tolerates receiving them anyway.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liftlens/liftlens/internal/domain"
)

// State is the lifecycle position of an editing session.
type State int

const (
	// Viewing holds the last saved document; no mutations are accepted.
	Viewing State = iota
	// Editing owns a working copy that mutations apply to.
	Editing
)

// ScoreMode decides whether derived scores are recomputed after each edit
// (Derived) or frozen so a human can override them directly (Overridden).
// Direct score overrides are only accepted in Overridden mode; in Derived
// mode the calculator would immediately overwrite them.
type ScoreMode int

const (
	ScoreDerived ScoreMode = iota
	ScoreOverridden
)

// Session is a single-editor transaction over one document. Not safe for
// concurrent use; each session owns its working copy exclusively.
type Session struct {
	state    State
	mode     ScoreMode
	baseline domain.Document
	working  domain.Document
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithScoreMode sets the initial score mode. The default is ScoreDerived.
func WithScoreMode(mode ScoreMode) Option {
	return func(s *Session) { s.mode = mode }
}

// New creates a session in the Viewing state with doc as its baseline.
func New(doc domain.Document, opts ...Option) *Session {
	s := &Session{
		state:    Viewing,
		mode:     ScoreDerived,
		baseline: doc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Mode returns the current score mode.
func (s *Session) Mode() ScoreMode { return s.mode }

// SetMode switches between derived and overridden scoring. Switching does
// not recompute by itself; the next mutation does, if back in Derived mode.
func (s *Session) SetMode(mode ScoreMode) { s.mode = mode }

// Document returns the document the session currently presents: the working
// copy while editing, the baseline otherwise.
func (s *Session) Document() domain.Document {
	if s.state == Editing {
		return s.working
	}
	return s.baseline
}

// Begin enters the Editing state, cloning the baseline into a working copy.
// A no-op if already editing.
func (s *Session) Begin() {
	if s.state == Editing {
		return
	}
	s.working = s.baseline.Clone()
	s.state = Editing
}

// Save stamps the working copy as edited, promotes it to the new baseline
// and returns to Viewing. Returns the saved document. A no-op returning the
// baseline when not editing.
func (s *Session) Save() domain.Document {
	if s.state != Editing {
		return s.baseline
	}
	s.working.IsEdited = true
	s.working.EditedAt = s.now().Format(time.RFC3339)
	s.baseline = s.working
	s.working = domain.Document{}
	s.state = Viewing
	return s.baseline
}

// Cancel discards the working copy and returns to Viewing with the baseline
// unchanged.
func (s *Session) Cancel() {
	if s.state != Editing {
		return
	}
	s.working = domain.Document{}
	s.state = Viewing
}

// afterMutation re-derives scores and critical issues when the session is in
// Derived mode. Called by every mutation except the direct score overrides.
func (s *Session) afterMutation() {
	if s.mode == ScoreDerived {
		s.working = domain.Recompute(s.working)
	}
}

// AssertionPatch carries the assertion fields an edit replaces. Nil fields
// are left untouched.
type AssertionPatch struct {
	Name           *string
	Question       *string
	Status         *domain.Status
	Severity       *domain.Severity
	Evidence       *string
	Recommendation *string
}

// SetAssertionField patches one assertion and marks it edited. Rejected when
// not editing, when the assertion does not exist, or when the patch carries
// an invalid enum value.
func (s *Session) SetAssertionField(key domain.CategoryKey, assertionID string, patch AssertionPatch) bool {
	if s.state != Editing {
		return false
	}
	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return false
	}
	if patch.Severity != nil && !domain.ValidSeverity(*patch.Severity) {
		return false
	}

	cat, ok := s.working.LiftCategories[key]
	if !ok {
		return false
	}
	idx := assertionIndex(cat.Assertions, assertionID)
	if idx < 0 {
		return false
	}

	a := cat.Assertions[idx]
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Question != nil {
		a.Question = *patch.Question
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Severity != nil {
		a.Severity = *patch.Severity
	}
	if patch.Evidence != nil {
		a.Evidence = *patch.Evidence
	}
	if patch.Recommendation != nil {
		a.Recommendation = *patch.Recommendation
	}
	// Pass findings never carry a recommendation.
	if a.Status == domain.StatusPass {
		a.Recommendation = ""
	}
	a.Edited = true

	cat.Assertions[idx] = a
	s.working.LiftCategories[key] = cat
	s.afterMutation()
	return true
}

// DeleteAssertion removes one assertion. A critical issue already anchored
// to it is not cascade-deleted here; that reconciliation happens on the next
// recompute, which afterMutation triggers in Derived mode.
func (s *Session) DeleteAssertion(key domain.CategoryKey, assertionID string) bool {
	if s.state != Editing {
		return false
	}
	cat, ok := s.working.LiftCategories[key]
	if !ok {
		return false
	}
	idx := assertionIndex(cat.Assertions, assertionID)
	if idx < 0 {
		return false
	}
	cat.Assertions = append(cat.Assertions[:idx], cat.Assertions[idx+1:]...)
	s.working.LiftCategories[key] = cat
	s.afterMutation()
	return true
}

// AssertionFields carries the user-supplied fields of a new assertion.
type AssertionFields struct {
	Name           string
	Question       string
	Status         domain.Status
	Severity       domain.Severity
	Evidence       string
	Recommendation string
}

// AddAssertion appends a human-authored assertion with a freshly generated
// id and the custom origin tag. Returns the new id, or "" when rejected.
func (s *Session) AddAssertion(key domain.CategoryKey, fields AssertionFields) string {
	if s.state != Editing || fields.Name == "" {
		return ""
	}
	cat, ok := s.working.LiftCategories[key]
	if !ok {
		return ""
	}

	a := domain.Assertion{
		ID:             newCustomID(),
		Name:           fields.Name,
		Question:       fields.Question,
		Status:         fields.Status,
		Severity:       fields.Severity,
		Evidence:       fields.Evidence,
		Recommendation: fields.Recommendation,
		Origin:         domain.OriginCustom,
	}
	if !domain.ValidStatus(a.Status) {
		a.Status = domain.StatusWarning
	}
	if !domain.ValidSeverity(a.Severity) {
		a.Severity = domain.SeverityMedium
	}
	if a.Evidence == "" {
		a.Evidence = "No evidence provided"
	}
	if a.Status == domain.StatusPass {
		a.Recommendation = ""
	}

	cat.Assertions = append(cat.Assertions, a)
	s.working.LiftCategories[key] = cat
	s.afterMutation()
	return a.ID
}

// SetCategoryScore overrides one category score directly. Only accepted in
// Overridden mode; in Derived mode the calculator owns the value.
func (s *Session) SetCategoryScore(key domain.CategoryKey, score int) bool {
	if s.state != Editing || s.mode != ScoreOverridden {
		return false
	}
	cat, ok := s.working.LiftCategories[key]
	if !ok || score < 0 || score > 100 {
		return false
	}
	cat.Score = score
	s.working.LiftCategories[key] = cat
	return true
}

// SetOverallScore overrides the overall score directly. Only accepted in
// Overridden mode.
func (s *Session) SetOverallScore(score int) bool {
	if s.state != Editing || s.mode != ScoreOverridden {
		return false
	}
	if score < 0 || score > 100 {
		return false
	}
	s.working.OverallScore = score
	return true
}

// AddQuickWin appends a quick win, filling empty fields with the canonical
// defaults.
func (s *Session) AddQuickWin(win domain.QuickWin) bool {
	if s.state != Editing || win.Title == "" {
		return false
	}
	if !domain.ValidEffort(win.Effort) {
		win.Effort = domain.EffortEasy
	}
	if !domain.ValidImpact(win.Impact) {
		win.Impact = domain.ImpactMedium
	}
	s.working.QuickWins = append(s.working.QuickWins, win)
	s.afterMutation()
	return true
}

// UpdateQuickWin replaces the quick win at index.
func (s *Session) UpdateQuickWin(index int, win domain.QuickWin) bool {
	if s.state != Editing || index < 0 || index >= len(s.working.QuickWins) {
		return false
	}
	if !domain.ValidEffort(win.Effort) || !domain.ValidImpact(win.Impact) {
		return false
	}
	s.working.QuickWins[index] = win
	s.afterMutation()
	return true
}

// DeleteQuickWin removes the quick win at index.
func (s *Session) DeleteQuickWin(index int) bool {
	if s.state != Editing || index < 0 || index >= len(s.working.QuickWins) {
		return false
	}
	s.working.QuickWins = append(s.working.QuickWins[:index], s.working.QuickWins[index+1:]...)
	s.afterMutation()
	return true
}

// TestFields carries the user-supplied fields of a new test.
type TestFields struct {
	Title                string
	Hypothesis           string
	Category             string
	AssertionID          string
	Priority             domain.Severity
	ExpectedImpact       domain.Impact
	ImplementationEffort domain.Effort
	PxlFactors           domain.PxlFactors
}

// AddTest appends a human-authored test. The id is one past the highest
// existing id, the PXL score is computed from the factors, and the variants
// start from the canonical Control/Variant A pair. The list is not re-sorted;
// ranking may go stale until the next repair. Returns the new id, 0 when
// rejected.
func (s *Session) AddTest(fields TestFields) int {
	if s.state != Editing || fields.Title == "" {
		return 0
	}

	id := 1
	for _, t := range s.working.Tests {
		if t.ID >= id {
			id = t.ID + 1
		}
	}

	t := domain.Test{
		ID:                   id,
		Priority:             fields.Priority,
		PxlScore:             domain.PxlScore(fields.PxlFactors),
		Title:                fields.Title,
		Hypothesis:           fields.Hypothesis,
		AssertionID:          fields.AssertionID,
		Category:             fields.Category,
		Variants:             domain.DefaultVariants(),
		ExpectedImpact:       fields.ExpectedImpact,
		ImplementationEffort: fields.ImplementationEffort,
		PxlFactors:           fields.PxlFactors,
		Origin:               domain.OriginCustom,
	}
	if !domain.ValidSeverity(t.Priority) {
		t.Priority = domain.SeverityMedium
	}
	if !domain.ValidImpact(t.ExpectedImpact) {
		t.ExpectedImpact = domain.ImpactMedium
	}
	if !domain.ValidEffort(t.ImplementationEffort) {
		t.ImplementationEffort = domain.EffortMedium
	}

	s.working.Tests = append(s.working.Tests, t)
	s.afterMutation()
	return id
}

// TestPatch carries the test fields an edit replaces. Nil fields are left
// untouched.
type TestPatch struct {
	Title                *string
	Hypothesis           *string
	Category             *string
	Priority             *domain.Severity
	ExpectedImpact       *domain.Impact
	ImplementationEffort *domain.Effort
}

// UpdateTest patches one test and marks it edited.
func (s *Session) UpdateTest(testID int, patch TestPatch) bool {
	if s.state != Editing {
		return false
	}
	if patch.Priority != nil && !domain.ValidSeverity(*patch.Priority) {
		return false
	}
	if patch.ExpectedImpact != nil && !domain.ValidImpact(*patch.ExpectedImpact) {
		return false
	}
	if patch.ImplementationEffort != nil && !domain.ValidEffort(*patch.ImplementationEffort) {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}

	t := s.working.Tests[idx]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Hypothesis != nil {
		t.Hypothesis = *patch.Hypothesis
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.ExpectedImpact != nil {
		t.ExpectedImpact = *patch.ExpectedImpact
	}
	if patch.ImplementationEffort != nil {
		t.ImplementationEffort = *patch.ImplementationEffort
	}
	t.Edited = true

	s.working.Tests[idx] = t
	s.afterMutation()
	return true
}

// DeleteTest removes one test.
func (s *Session) DeleteTest(testID int) bool {
	if s.state != Editing {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}
	s.working.Tests = append(s.working.Tests[:idx], s.working.Tests[idx+1:]...)
	s.afterMutation()
	return true
}

// ToggleTestFactor flips one PXL factor and immediately recomputes that
// test's score. PXL recomputation is always live, independent of the score
// mode; the list position of the test does not change.
func (s *Session) ToggleTestFactor(testID int, factor domain.FactorKey) bool {
	if s.state != Editing {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}

	t := s.working.Tests[idx]
	t.PxlFactors = t.PxlFactors.Toggled(factor)
	t.PxlScore = domain.PxlScore(t.PxlFactors)
	t.Edited = true
	s.working.Tests[idx] = t
	s.afterMutation()
	return true
}

// AddVariant appends a variant named after its position (Variant A, B, ...).
func (s *Session) AddVariant(testID int) bool {
	if s.state != Editing {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}
	t := s.working.Tests[idx]
	name := "Variant " + variantSuffix(len(t.Variants)-1)
	t.Variants = append(t.Variants, domain.Variant{Name: name})
	t.Edited = true
	s.working.Tests[idx] = t
	s.afterMutation()
	return true
}

// variantSuffix maps 0..25 to A..Z, then continues AA, AB, ... so names
// stay well-formed however many variants a test accumulates.
func variantSuffix(n int) string {
	suffix := ""
	for n >= 0 {
		suffix = string(rune('A'+n%26)) + suffix
		n = n/26 - 1
	}
	return suffix
}

// UpdateVariant replaces one variant. The control variant keeps its name.
func (s *Session) UpdateVariant(testID, variantIndex int, v domain.Variant) bool {
	if s.state != Editing {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}
	t := s.working.Tests[idx]
	if variantIndex < 0 || variantIndex >= len(t.Variants) {
		return false
	}
	if variantIndex == 0 {
		v.Name = domain.ControlVariantName
	}
	t.Variants[variantIndex] = v
	t.Edited = true
	s.working.Tests[idx] = t
	s.afterMutation()
	return true
}

// DeleteVariant removes one variant. Rejected for the control variant and
// whenever the test would drop below two variants.
func (s *Session) DeleteVariant(testID, variantIndex int) bool {
	if s.state != Editing {
		return false
	}
	idx := s.testIndex(testID)
	if idx < 0 {
		return false
	}
	t := s.working.Tests[idx]
	if variantIndex <= 0 || variantIndex >= len(t.Variants) || len(t.Variants) <= 2 {
		return false
	}
	t.Variants = append(t.Variants[:variantIndex], t.Variants[variantIndex+1:]...)
	t.Edited = true
	s.working.Tests[idx] = t
	s.afterMutation()
	return true
}

func (s *Session) testIndex(testID int) int {
	for i, t := range s.working.Tests {
		if t.ID == testID {
			return i
		}
	}
	return -1
}

func assertionIndex(assertions []domain.Assertion, id string) int {
	for i, a := range assertions {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func newCustomID() string {
	return "CUSTOM_" + strings.ToUpper(uuid.NewString()[:8])
}
