package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/liftlens/liftlens/internal/domain"
)

// AuditService orchestrates the analysis pipeline:
// capture snapshot → generate audit → repair → recompute → persist.
type AuditService struct {
	source    domain.SnapshotSource
	generator domain.Generator
	history   domain.HistoryStore
	now       func() time.Time
	newID     func() string
}

type AuditOption func(*AuditService)

// WithAuditClock overrides the timestamp source, for tests.
func WithAuditClock(now func() time.Time) AuditOption {
	return func(s *AuditService) { s.now = now }
}

// WithIDFactory overrides document id generation, for tests.
func WithIDFactory(newID func() string) AuditOption {
	return func(s *AuditService) { s.newID = newID }
}

func NewAuditService(
	source domain.SnapshotSource,
	generator domain.Generator,
	history domain.HistoryStore,
	opts ...AuditOption,
) *AuditService {
	s := &AuditService{
		source:    source,
		generator: generator,
		history:   history,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline for url and returns the persisted document.
func (s *AuditService) Analyze(ctx context.Context, url string) (*domain.Document, error) {
	snap, err := s.source.Capture(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("capturing %s: %w", url, err)
	}
	return s.AnalyzeSnapshot(ctx, snap)
}

// AnalyzeSnapshot runs the pipeline for an already-captured snapshot, as
// submitted by HTTP clients that capture the page themselves.
func (s *AuditService) AnalyzeSnapshot(ctx context.Context, snap *domain.Snapshot) (*domain.Document, error) {
	raw, err := s.generate(ctx, snap)
	if err != nil {
		return nil, err
	}

	doc := domain.Repair(raw, domain.RepairContext{RequestedURL: snap.URL, Now: s.now})
	doc = domain.Recompute(doc)
	if doc.ID == "" {
		doc.ID = s.newID()
	}

	if err := s.history.Save(doc); err != nil {
		return nil, fmt.Errorf("saving audit: %w", err)
	}
	return &doc, nil
}

// generate calls the generator and parses its payload, retrying once when the
// payload is not a JSON object. Repair absorbs every other defect; only an
// unparseable response earns a second model call.
func (s *AuditService) generate(ctx context.Context, snap *domain.Snapshot) (map[string]any, error) {
	payload, err := s.generator.Generate(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("generating audit: %w", err)
	}

	raw, err := domain.ParseAudit(payload)
	if err == nil {
		return raw, nil
	}
	var analysisErr *domain.AnalysisError
	if !errors.As(err, &analysisErr) {
		return nil, err
	}

	payload, err = s.generator.Generate(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("generating audit (retry): %w", err)
	}
	raw, err = domain.ParseAudit(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing retried audit: %w", err)
	}
	return raw, nil
}
