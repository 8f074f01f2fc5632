package app

import (
	"context"
	"time"

	"truview/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReview(ctx context.Context, id string) (domain.ReviewView, error) {
	key := reviewCacheKey(id)
	var rv domain.ReviewView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rv); ok {
			return rv, nil
		}
	}
	r, err := s.repo.FindReview(ctx, id)
	if err != nil {
		return domain.ReviewView{}, err
	}
	rv = toView(r)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rv, s.cacheTTL)
	}
	return rv, nil
}

func toView(r domain.Review) domain.ReviewView {
	langs := r.Translations.Langs()
	if langs == nil {
		langs = []string{}
	}
	return domain.ReviewView{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		OriginalLanguage: r.OriginalLanguage,
		Languages:        langs,
		CreatedAt:        r.CreatedAt,
	}
}

func reviewCacheKey(id string) string { return "review:" + id }

// invalidateReview drops the cached view after a translation write.
func invalidateReview(ctx context.Context, c domain.Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, reviewCacheKey(id))
}
