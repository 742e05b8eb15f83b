// Package history provides SQLite-backed storage for audit documents.
//
// Documents are stored whole as JSON; the indexed columns exist only for
// listing and pruning. The store keeps at most MaxEntries audits and drops
// the oldest beyond that.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/liftlens/liftlens/internal/domain"
)

// MaxEntries is the audit history cap. Saving past the cap evicts the
// oldest audits.
const MaxEntries = 50

// ErrNotFound is returned when no audit exists for the requested id.
var ErrNotFound = errors.New("audit not found")

const appName = "liftlens"

// Store implements domain.HistoryStore over a SQLite database file.
type Store struct {
	db *sql.DB
}

// DefaultDir returns the XDG data directory for the audit database.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// Open opens or creates the audit database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "audits.db")+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audits (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		analyzed_at TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		is_edited INTEGER NOT NULL DEFAULT 0,
		document TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audits_saved_at ON audits(saved_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a new audit and evicts the oldest entries past MaxEntries.
func (s *Store) Save(doc domain.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing audit: %w", err)
	}

	_, err = s.db.Exec(`
	INSERT INTO audits (id, url, analyzed_at, overall_score, is_edited, document)
	VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.URL, doc.AnalyzedAt, doc.OverallScore, boolToInt(doc.IsEdited), string(payload))
	if err != nil {
		return fmt.Errorf("inserting audit: %w", err)
	}

	_, err = s.db.Exec(`
	DELETE FROM audits WHERE id NOT IN (
		SELECT id FROM audits ORDER BY saved_at DESC, rowid DESC LIMIT ?
	)`, MaxEntries)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}

// Update replaces a stored audit in place. The entry keeps its position in
// the history; editing an old audit does not bump it past newer ones.
func (s *Store) Update(doc domain.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing audit: %w", err)
	}

	res, err := s.db.Exec(`
	UPDATE audits SET url = ?, analyzed_at = ?, overall_score = ?, is_edited = ?, document = ?
	WHERE id = ?`,
		doc.URL, doc.AnalyzedAt, doc.OverallScore, boolToInt(doc.IsEdited), string(payload), doc.ID)
	if err != nil {
		return fmt.Errorf("updating audit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("updating audit %s: %w", doc.ID, ErrNotFound)
	}
	return nil
}

// Get loads one audit by id.
func (s *Store) Get(id string) (*domain.Document, error) {
	var payload string
	err := s.db.QueryRow(`SELECT document FROM audits WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading audit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading audit %s: %w", id, err)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("deserializing audit %s: %w", id, err)
	}
	return &doc, nil
}

// List returns every stored audit, most recent first.
func (s *Store) List() ([]domain.Document, error) {
	rows, err := s.db.Query(`SELECT document FROM audits ORDER BY saved_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing audits: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("deserializing audit: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes one audit by id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM audits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting audit %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deleting audit %s: %w", id, ErrNotFound)
	}
	return nil
}

// Clear removes every stored audit.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM audits`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
