package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-feedback/internal/rasterize"
	"resume-feedback/internal/shared/storage/object"
	"resume-feedback/internal/shared/util"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	StorageProvider string
	Repo            DocumentsRepo
	Rasterizer      *rasterize.Rasterizer
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userId,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.provider(),
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// CreateFromS3 records a document that the client already put in the bucket.
func (s *Service) CreateFromS3(ctx context.Context, userId, key, fileName, contentType string, size int64) (Document, error) {
	if userId == "" || key == "" || fileName == "" || contentType == "" || size <= 0 {
		return Document{}, ErrInvalidInput
	}
	if strings.Contains(key, "..") {
		return Document{}, fmt.Errorf("%w: invalid s3Key", ErrInvalidInput)
	}
	userPrefix := util.HashUserKey(userId) + "/"
	if !strings.HasPrefix(key, userPrefix) || len(key) == len(userPrefix) {
		return Document{}, fmt.Errorf("%w: s3Key must be under the caller's prefix", ErrInvalidInput)
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		FileName:         fileName,
		OriginalFilename: fileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        size,
		StorageProvider:  "s3",
		StorageKey:       key,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Current returns the current document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if userId == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// Get returns one document owned by the user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Preview renders the first page of a stored document. The returned error is
// non-nil only for lookup/storage failures and rasterize.ErrPrecondition.
func (s *Service) Preview(ctx context.Context, userId, documentID string) (rasterize.Result, error) {
	if s.Rasterizer == nil {
		return rasterize.Result{}, fmt.Errorf("%w: no rasterizer configured", rasterize.ErrPrecondition)
	}
	if err := s.Rasterizer.Available(); err != nil {
		return rasterize.Result{Stage: rasterize.StageUninitialized, Err: err}, err
	}

	doc, err := s.Get(ctx, userId, documentID)
	if err != nil {
		return rasterize.Result{}, err
	}
	if doc.StorageKey == "" {
		return rasterize.Result{}, ErrNotFound
	}

	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return rasterize.Result{}, fmt.Errorf("open document %s: %w", doc.ID, err)
	}
	defer rc.Close()

	return s.Rasterizer.Convert(ctx, rc)
}

func (s *Service) provider() string {
	if s.StorageProvider == "" {
		return "local"
	}
	return s.StorageProvider
}
