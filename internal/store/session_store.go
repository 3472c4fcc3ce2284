package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/session"
)

// SessionStore keeps per-browser session state keyed by cookie token.
// Sessions untouched for longer than idleTimeout are treated as absent.
type SessionStore struct {
	db          *sql.DB
	idleTimeout time.Duration
	now         func() time.Time
}

func NewSessionStore(db *sql.DB, idleTimeout time.Duration) *SessionStore {
	return &SessionStore{db: db, idleTimeout: idleTimeout, now: time.Now}
}

// Create starts a new anonymous session.
func (s *SessionStore) Create(ctx context.Context) (*session.Session, error) {
	return s.insert(ctx, s.db, session.State{})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SessionStore) insert(ctx context.Context, db execer, state session.State) (*session.Session, error) {
	sess := &session.Session{Token: uuid.NewString(), State: state}
	ssid, userEmail, adminEmail, estate := columns(state)
	now := s.now().Unix()
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_ssid, user_email, admin_email, estate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.Token, ssid, userEmail, adminEmail, estate, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Get returns the live session for token and refreshes its idle clock, or
// nil when no live session exists.
func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, nil
	}
	var ssid, userEmail, adminEmail, estate sql.NullString
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_ssid, user_email, admin_email, estate, updated_at FROM sessions WHERE token = ?
	`, token).Scan(&ssid, &userEmail, &adminEmail, &estate, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	now := s.now()
	if s.idleTimeout > 0 && now.Sub(time.Unix(updatedAt, 0)) > s.idleTimeout {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET updated_at = ? WHERE token = ?
	`, now.Unix(), token); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	sess := &session.Session{Token: token}
	if ssid.Valid && userEmail.Valid {
		sess.State.User = &domain.User{SessionID: ssid.String, Email: userEmail.String}
		sess.State.Estate = domain.Estate(estate.String)
	}
	if adminEmail.Valid {
		sess.State.Admin = &domain.Admin{Email: adminEmail.String}
	}
	return sess, nil
}

// Rotate moves state to a freshly issued token and drops the old one along
// with anything keyed by it.
func (s *SessionStore) Rotate(ctx context.Context, oldToken string, state session.State) (*session.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteSession(ctx, tx, oldToken); err != nil {
		return nil, err
	}
	sess, err := s.insert(ctx, tx, state)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session rotation: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return deleteSession(ctx, s.db, token)
}

func deleteSession(ctx context.Context, db execer, token string) error {
	if _, err := db.ExecContext(ctx, `
		DELETE FROM locator_snapshots WHERE session_token = ?
	`, token); err != nil {
		return fmt.Errorf("failed to delete session snapshot: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		DELETE FROM sessions WHERE token = ?
	`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PruneIdle removes sessions idle past the timeout and returns how many
// were removed.
func (s *SessionStore) PruneIdle(ctx context.Context) (int64, error) {
	if s.idleTimeout <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.idleTimeout).Unix()
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM locator_snapshots
		WHERE session_token IN (SELECT token FROM sessions WHERE updated_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE updated_at < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func columns(state session.State) (ssid, userEmail, adminEmail, estate sql.NullString) {
	if state.User != nil {
		ssid = sql.NullString{String: state.User.SessionID, Valid: true}
		userEmail = sql.NullString{String: state.User.Email, Valid: true}
		estate = sql.NullString{String: string(state.Estate), Valid: state.Estate != ""}
	}
	if state.Admin != nil {
		adminEmail = sql.NullString{String: state.Admin.Email, Valid: true}
	}
	return ssid, userEmail, adminEmail, estate
}
