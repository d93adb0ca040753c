package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/models"
)

// invalid_text_representation: a cookie carried a non-UUID id.
const pqInvalidText = "22P02"

// SessionStore is the Postgres implementation of auth.Store.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO web_sessions (id, username, sealed_password, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.Username, session.SealedPassword, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, sealed_password, flash, created_at, expires_at
		FROM web_sessions
		WHERE id = $1`, id).
		Scan(&session.ID, &session.Username, &session.SealedPassword, &session.Flash,
			&session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return models.Session{}, auth.ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return auth.ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return requireRow(result)
}

func (s *SessionStore) SetFlash(ctx context.Context, id, message string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE web_sessions SET flash = $2 WHERE id = $1`, id, message)
	if err != nil {
		return fmt.Errorf("set flash: %w", err)
	}
	return requireRow(result)
}

func (s *SessionStore) TakeFlash(ctx context.Context, id string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var flash string
	err = tx.QueryRowContext(ctx, `SELECT flash FROM web_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&flash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", auth.ErrSessionNotFound
		}
		return "", fmt.Errorf("read flash: %w", err)
	}
	if flash == "" {
		return "", tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE web_sessions SET flash = '' WHERE id = $1`, id); err != nil {
		return "", fmt.Errorf("clear flash: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return flash, nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidText
}
