package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/climavet/climavet/internal/model"
)

// FilterStore remembers the last filter criteria used on each checklist.
type FilterStore struct {
	db *sql.DB
}

func NewFilterStore(db *sql.DB) *FilterStore {
	return &FilterStore{db: db}
}

// Get returns the saved criteria for a checklist, or nil if none were saved.
func (s *FilterStore) Get(checklistID int64) (*model.FilterCriteria, error) {
	var c model.FilterCriteria
	err := s.db.QueryRow(
		`SELECT category, priority, status, search FROM saved_filters WHERE checklist_id = ?`,
		checklistID,
	).Scan(&c.Category, &c.Priority, &c.Status, &c.Search)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get saved filter %d: %w", checklistID, err)
	}
	c = c.Normalize()
	return &c, nil
}

// Save stores c for a checklist, normalized. Default criteria clear the row.
func (s *FilterStore) Save(checklistID int64, c model.FilterCriteria) error {
	c = c.Normalize()
	if c.IsDefault() {
		return s.Clear(checklistID)
	}
	_, err := s.db.Exec(
		`INSERT INTO saved_filters (checklist_id, category, priority, status, search, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(checklist_id) DO UPDATE SET
		   category = excluded.category,
		   priority = excluded.priority,
		   status = excluded.status,
		   search = excluded.search,
		   updated_at = excluded.updated_at`,
		checklistID, c.Category, c.Priority, c.Status, c.Search, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save filter %d: %w", checklistID, err)
	}
	return nil
}

func (s *FilterStore) Clear(checklistID int64) error {
	if _, err := s.db.Exec(`DELETE FROM saved_filters WHERE checklist_id = ?`, checklistID); err != nil {
		return fmt.Errorf("clear filter %d: %w", checklistID, err)
	}
	return nil
}
