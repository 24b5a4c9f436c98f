package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var documentRowColumns = []string{
	"id", "user_id", "file_name", "original_filename", "mime_type", "content_type",
	"size_bytes", "storage_provider", "storage_key", "created_at",
}

func TestPGRepoCreateDefaultsOptionalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	doc := Document{
		ID:        "doc-1",
		UserID:    "user-1",
		FileName:  "resume.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 42,
		CreatedAt: time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.UserID, doc.FileName, "resume.pdf", doc.MimeType, "application/pdf",
			doc.SizeBytes, "local", nil, doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows(documentRowColumns))

	repo := &PGRepo{DB: db}
	_, err = repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(documentRowColumns).
		AddRow("doc-2", "user-1", "b.pdf", nil, "application/pdf", nil, int64(7), "s3", "u/b.pdf", created).
		AddRow("doc-1", "user-1", "a.pdf", "a.pdf", "application/pdf", "application/pdf", int64(5), "local", nil, created.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("user-1", 100, 0).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	docs, err := repo.ListByUser(context.Background(), "user-1", 500, -3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d", len(docs))
	}
	if docs[0].StorageKey != "u/b.pdf" || docs[0].OriginalFilename != "" {
		t.Fatalf("unexpected first document: %+v", docs[0])
	}
	if docs[1].StorageKey != "" || docs[1].ContentType != "application/pdf" {
		t.Fatalf("unexpected second document: %+v", docs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
