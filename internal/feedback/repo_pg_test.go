package feedback

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := Record{
		ID:        "fb-1",
		UserID:    "user-1",
		Feedback:  Feedback{Skills: &Category{Score: 80}},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(rec.ID, rec.UserID, nil, sqlmock.AnyArg(), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "document_id", "payload", "created_at"}).
		AddRow("fb-1", "user-1", "doc-1", []byte(`{"content":{"score":45,"tips":[{"type":"improve","tip":"More metrics"}]}}`), created)
	mock.ExpectQuery("SELECT id, user_id, document_id, payload, created_at").
		WithArgs("user-1", "fb-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	rec, err := repo.GetByID(context.Background(), "user-1", "fb-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.DocumentID != "doc-1" {
		t.Fatalf("DocumentID = %q", rec.DocumentID)
	}
	if rec.Feedback.Content == nil || rec.Feedback.Content.Score != 45 || len(rec.Feedback.Content.Tips) != 1 {
		t.Fatalf("unexpected feedback: %+v", rec.Feedback)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %s", rec.CreatedAt)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, user_id, document_id, payload, created_at").
		WithArgs("user-1", "missing").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
