package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"dashboard-aggregates-service/internal/events/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// fakeResult implements sql.Result for tests.
type fakeResult struct {
	rowsAffected int64
}

func (f *fakeResult) LastInsertId() (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeResult) RowsAffected() (int64, error) {
	return f.rowsAffected, nil
}

// fakeDB implements DB interface for tests.
type fakeDB struct {
	ExecFn     func(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingFn     func(ctx context.Context) error
	lastQuery  string
	lastArgs   []any
	execCalled bool
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execCalled = true
	f.lastQuery = query
	f.lastArgs = args
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return &fakeResult{rowsAffected: 1}, nil
}

func (f *fakeDB) PingContext(ctx context.Context) error {
	if f.PingFn != nil {
		return f.PingFn(ctx)
	}
	return nil
}

func newEvent(session string) *domain.Event {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:            uuid.New(),
		SessionID:     session,
		Country:       "USA",
		FirstSeenDate: day.AddDate(0, 0, -1),
		EventDate:     day,
		DeviceClass:   "desktop",
		DedupeKey:     session + "|2024-01-02",
		ReceivedAt:    day.Add(time.Hour),
	}
}

// ------------------------------------------------------------
// SUCCESS (batch)
// ------------------------------------------------------------

func TestEventRepository_InsertEvents_Batch(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO session_events") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ON CONFLICT (dedupe_key) DO NOTHING") {
				t.Fatalf("expected idempotent insert: %s", query)
			}
			if !strings.Contains(query, "($17, $18, $19, $20, $21, $22, $23, $24)") {
				t.Fatalf("expected third value tuple: %s", query)
			}
			// Biri duplicate
			return &fakeResult{rowsAffected: 2}, nil
		},
	}

	repo := NewEventRepository(db)

	inserted, err := repo.InsertEvents(context.Background(), []*domain.Event{newEvent("a"), newEvent("b"), newEvent("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}
	if len(db.lastArgs) != 24 {
		t.Fatalf("expected 24 args, got %d", len(db.lastArgs))
	}
}

func TestEventRepository_InsertEvents_Empty(t *testing.T) {
	db := &fakeDB{}

	inserted, err := NewEventRepository(db).InsertEvents(context.Background(), nil)
	if err != nil || inserted != 0 {
		t.Fatalf("expected no-op, got inserted=%d err=%v", inserted, err)
	}
	if db.execCalled {
		t.Fatalf("expected no query for empty batch")
	}
}

// ------------------------------------------------------------
// DB ERROR
// ------------------------------------------------------------

func TestEventRepository_InsertEvents_Error(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return nil, errors.New("db error")
		},
	}

	inserted, err := NewEventRepository(db).InsertEvents(context.Background(), []*domain.Event{newEvent("a")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if inserted != 0 {
		t.Fatalf("expected inserted=0 on error")
	}
}

// ------------------------------------------------------------
// SQLMOCK
// ------------------------------------------------------------

func TestEventRepository_SQLMock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS session_events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO session_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	db := NewSQLDB(sqlDB)
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	inserted, err := NewEventRepository(db).InsertEvents(context.Background(), []*domain.Event{newEvent("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got %d", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_Ping(t *testing.T) {
	down := errors.New("connection refused")
	db := &fakeDB{PingFn: func(ctx context.Context) error { return down }}
	repo := NewEventRepository(db)

	if err := repo.Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected ping error, got %v", err)
	}

	db.PingFn = nil
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
