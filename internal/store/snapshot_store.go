package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vbonduro/estatedocs/internal/domain"
)

// Snapshot is the locator collection fetched for one session's estate view.
type Snapshot struct {
	Estate    domain.Estate
	Locators  []domain.Locator
	FetchedAt time.Time
}

type SnapshotStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

// Put replaces the session's snapshot.
func (s *SnapshotStore) Put(ctx context.Context, token string, estate domain.Estate, locators []domain.Locator) error {
	if locators == nil {
		locators = []domain.Locator{}
	}
	payload, err := json.Marshal(locators)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO locator_snapshots (session_token, estate, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_token) DO UPDATE SET
			estate = excluded.estate,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, token, string(estate), string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Get returns the session's snapshot, or nil if none is held.
func (s *SnapshotStore) Get(ctx context.Context, token string) (*Snapshot, error) {
	var estate, payload string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT estate, payload, fetched_at FROM locator_snapshots WHERE session_token = ?
	`, token).Scan(&estate, &payload, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap := &Snapshot{Estate: domain.Estate(estate), FetchedAt: time.Unix(fetchedAt, 0)}
	if err := json.Unmarshal([]byte(payload), &snap.Locators); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM locator_snapshots WHERE session_token = ?
	`, token); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
