package feedback

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for stored feedback.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Submit validates and stores feedback for a user.
func (s *Service) Submit(ctx context.Context, userID, documentID string, fb Feedback) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if err := Validate(fb); err != nil {
		return Record{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rec := Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: strings.TrimSpace(documentID),
		Feedback:   fb,
		CreatedAt:  now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns a stored record.
func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns a user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Validate checks feedback before it is stored. Rendering never calls it.
func Validate(fb Feedback) error {
	cats := map[string]*Category{
		"ats":           fb.ATS,
		KeyToneAndStyle: fb.ToneAndStyle,
		KeyContent:      fb.Content,
		KeyStructure:    fb.Structure,
		KeySkills:       fb.Skills,
	}
	if err := validateScore("overallScore", fb.OverallScore); err != nil {
		return err
	}
	for key, cat := range cats {
		if cat == nil {
			continue
		}
		if err := validateScore(key+".score", cat.Score); err != nil {
			return err
		}
		for i, t := range cat.Tips {
			if t.Type != TipGood && t.Type != TipImprove {
				return fmt.Errorf("%w: %s.tips[%d].type must be good or improve", ErrInvalidInput, key, i)
			}
			if strings.TrimSpace(t.Tip) == "" {
				return fmt.Errorf("%w: %s.tips[%d].tip is required", ErrInvalidInput, key, i)
			}
		}
	}
	return nil
}

func validateScore(field string, score float64) error {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100", ErrInvalidInput, field)
	}
	return nil
}
