package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"truview/internal/domain"
)

// Submitter queues background work without waiting for it.
type Submitter interface {
	Submit(id string) bool
}

type ReviewService struct {
	store domain.ReviewStore
	jobs  Submitter
	now   func() time.Time
}

func NewReviewService(store domain.ReviewStore, jobs Submitter) *ReviewService {
	return &ReviewService{store: store, jobs: jobs, now: time.Now}
}

// CreateReview persists a review and hands it to the translation runner.
// Translation never affects the outcome of creation.
func (s *ReviewService) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	in = in.Normalize()
	if in.Description == "" {
		return domain.Review{}, fmt.Errorf("description is required: %w", domain.ErrInvalid)
	}
	if len([]rune(in.Title)) > 300 {
		return domain.Review{}, fmt.Errorf("title longer than 300 characters: %w", domain.ErrInvalid)
	}

	r := domain.Review{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateReview(ctx, r); err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}

	if s.jobs != nil && !s.jobs.Submit(r.ID) {
		log.Warn().Str("review_id", r.ID).Msg("background translation not scheduled")
	}
	return r, nil
}
