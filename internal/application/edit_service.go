package application

import (
	"fmt"

	"github.com/liftlens/liftlens/internal/domain"
	"github.com/liftlens/liftlens/internal/domain/session"
)

// EditService loads stored audits into edit sessions and writes saved
// sessions back to the history store.
type EditService struct {
	history domain.HistoryStore
	opts    []session.Option
}

func NewEditService(history domain.HistoryStore, opts ...session.Option) *EditService {
	return &EditService{history: history, opts: opts}
}

// Open loads the audit with id and returns a session in the Viewing state.
func (s *EditService) Open(id string) (*session.Session, error) {
	doc, err := s.history.Get(id)
	if err != nil {
		return nil, fmt.Errorf("loading audit %s: %w", id, err)
	}
	return session.New(*doc, s.opts...), nil
}

// Commit saves the session's working copy and persists the result. The
// session must be in the Editing state.
func (s *EditService) Commit(sess *session.Session) (*domain.Document, error) {
	if sess.State() != session.Editing {
		return nil, fmt.Errorf("no edit in progress")
	}
	doc := sess.Save()
	if err := s.history.Update(doc); err != nil {
		return nil, fmt.Errorf("persisting edited audit: %w", err)
	}
	return &doc, nil
}
