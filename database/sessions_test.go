package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/models"
)

const sessionID = "9b2e3c1a-7d4f-4e8a-a1b2-c3d4e5f60718"

var sessionColumns = []string{"id", "username", "sealed_password", "flash", "created_at", "expires_at"}

func newMockStore(t *testing.T) (*SessionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewSessionStore(db), mock
}

func TestCreateSession(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := models.Session{
		ID:             sessionID,
		Username:       "alice",
		SealedPassword: []byte("sealed"),
		CreatedAt:      created,
		ExpiresAt:      created.Add(24 * time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO web_sessions (id, username, sealed_password, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)")).
		WithArgs(sessionID, "alice", []byte("sealed"), created, session.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestGetSession(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, sealed_password, flash, created_at, expires_at FROM web_sessions WHERE id = $1")).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(sessionID, "alice", []byte("sealed"), "Saved", created, created.Add(time.Hour)))

	session, err := store.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if session.Username != "alice" || session.Flash != "Saved" || string(session.SealedPassword) != "sealed" {
		t.Errorf("session = %+v", session)
	}
	if !session.ExpiresAt.Equal(created.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", session.ExpiresAt)
	}
}

func TestGetSessionErrors(t *testing.T) {
	tests := []struct {
		name     string
		expect   func(*sqlmock.ExpectedQuery)
		notFound bool
	}{
		{
			name: "no rows",
			expect: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows(sessionColumns))
			},
			notFound: true,
		},
		{
			name: "malformed id",
			expect: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(&pq.Error{Code: pqInvalidText})
			},
			notFound: true,
		},
		{
			name: "connection refused",
			expect: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(errors.New("dial tcp: connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.expect(mock.ExpectQuery("SELECT (.+) FROM web_sessions").WithArgs(sessionID))

			_, err := store.Get(context.Background(), sessionID)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, auth.ErrSessionNotFound); got != tt.notFound {
				t.Errorf("errors.Is(%v, ErrSessionNotFound) = %t, want %t", err, got, tt.notFound)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	store, mock := newMockStore(t)
	query := regexp.QuoteMeta("DELETE FROM web_sessions WHERE id = $1")
	mock.ExpectExec(query).WithArgs(sessionID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(sessionID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(query).WithArgs("junk").WillReturnError(&pq.Error{Code: pqInvalidText})

	ctx := context.Background()
	if err := store.Delete(ctx, sessionID); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := store.Delete(ctx, sessionID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("second Delete: err = %v, want ErrSessionNotFound", err)
	}
	if err := store.Delete(ctx, "junk"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("Delete of a malformed id: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSetFlash(t *testing.T) {
	store, mock := newMockStore(t)
	query := regexp.QuoteMeta("UPDATE web_sessions SET flash = $2 WHERE id = $1")
	mock.ExpectExec(query).WithArgs(sessionID, "Saved").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("gone", "Saved").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SetFlash(context.Background(), sessionID, "Saved"); err != nil {
		t.Errorf("SetFlash: %v", err)
	}
	if err := store.SetFlash(context.Background(), "gone", "Saved"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("SetFlash on a missing session: err = %v", err)
	}
}

func TestTakeFlashClearsInTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT flash FROM web_sessions WHERE id = $1 FOR UPDATE")).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{"flash"}).AddRow("Saved"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE web_sessions SET flash = '' WHERE id = $1")).
		WithArgs(sessionID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	flash, err := store.TakeFlash(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("TakeFlash: %v", err)
	}
	if flash != "Saved" {
		t.Errorf("flash = %q, want Saved", flash)
	}
}

func TestTakeFlashWithoutMessageSkipsUpdate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT flash FROM web_sessions").
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{"flash"}).AddRow(""))
	mock.ExpectCommit()

	flash, err := store.TakeFlash(context.Background(), sessionID)
	if err != nil || flash != "" {
		t.Errorf("TakeFlash = %q, %v; want empty, nil", flash, err)
	}
}

func TestTakeFlashRollsBack(t *testing.T) {
	t.Run("missing session", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT flash FROM web_sessions").
			WithArgs(sessionID).
			WillReturnRows(sqlmock.NewRows([]string{"flash"}))
		mock.ExpectRollback()

		if _, err := store.TakeFlash(context.Background(), sessionID); !errors.Is(err, auth.ErrSessionNotFound) {
			t.Errorf("err = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("failed clear", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT flash FROM web_sessions").
			WithArgs(sessionID).
			WillReturnRows(sqlmock.NewRows([]string{"flash"}).AddRow("Saved"))
		mock.ExpectExec("UPDATE web_sessions SET flash").
			WithArgs(sessionID).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		if _, err := store.TakeFlash(context.Background(), sessionID); !errors.Is(err, sql.ErrConnDone) {
			t.Errorf("err = %v, want ErrConnDone", err)
		}
	})
}

func TestDeleteExpired(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM web_sessions WHERE expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := store.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
}

type rowsResult int64

func (r rowsResult) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (r rowsResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestRequireRow(t *testing.T) {
	if err := requireRow(rowsResult(1)); err != nil {
		t.Errorf("one row: %v", err)
	}
	if err := requireRow(rowsResult(0)); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("no rows: err = %v, want ErrSessionNotFound", err)
	}
}

func TestIsInvalidText(t *testing.T) {
	if !isInvalidText(&pq.Error{Code: pqInvalidText}) {
		t.Error("22P02 should count as an invalid id")
	}
	if isInvalidText(&pq.Error{Code: "23505"}) || isInvalidText(errors.New("other")) {
		t.Error("unrelated errors matched")
	}
}

// Compile-time check that the Postgres store can back the session manager.
var _ auth.Store = (*SessionStore)(nil)
