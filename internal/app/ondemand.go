package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"truview/internal/adapters/observability"
	"truview/internal/domain"
)

// OnDemandService serves one (review, language) pair on the read path:
// cache fields first, live translation otherwise, persisting what it produced.
type OnDemandService struct {
	store domain.ReviewStore
	tr    *TranslationClient
	cache domain.Cache
	calls singleflight.Group
}

func NewOnDemandService(store domain.ReviewStore, tr *TranslationClient, cache domain.Cache) *OnDemandService {
	return &OnDemandService{store: store, tr: tr, cache: cache}
}

// sharedCallTimeout bounds a coalesced execution, which no single caller owns.
const sharedCallTimeout = 30 * time.Second

// Translate returns nil when the review does not exist or anything unexpected
// happens. Concurrent callers for the same pair share one execution. That
// execution is detached from the caller that started it, so a cancelled
// request only gives up its own wait; it returns nil and the others still
// get the result.
func (s *OnDemandService) Translate(ctx context.Context, id, lang string) *domain.TranslationResult {
	target := domain.NormalizeLang(lang)
	if target == "" {
		log.Warn().Str("review_id", id).Str("lang", lang).Msg("on-demand translation: invalid language")
		return nil
	}
	ch := s.calls.DoChan(id+"|"+target, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return s.translate(sctx, id, target), nil
	})

	var res *domain.TranslationResult
	select {
	case r := <-ch:
		res, _ = r.Val.(*domain.TranslationResult)
	case <-ctx.Done():
		log.Info().Err(ctx.Err()).Str("review_id", id).Str("target_lang", target).Msg("on-demand translation: caller gone")
		return nil
	}
	if res == nil {
		return nil
	}
	out := *res
	return &out
}

func (s *OnDemandService) translate(ctx context.Context, id, target string) (res *domain.TranslationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("review_id", id).Str("target_lang", target).Interface("panic", rec).Msg("on-demand translation panicked")
			res = nil
		}
	}()

	r, err := s.store.FindReview(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("review_id", id).Msg("on-demand translation: load review failed")
		}
		return nil
	}
	hasTitle := strings.TrimSpace(r.Title) != ""

	cachedText, textOK := r.Translations.Get(target)
	cachedTitle, titleOK := r.TitleTranslations.Get(target)
	if textOK && (titleOK || !hasTitle) {
		observability.ObserveLanguage("on_demand", "cached")
		return &domain.TranslationResult{
			TranslatedText:   cachedText,
			TranslatedTitle:  cachedTitle,
			OriginalLanguage: r.OriginalLanguage,
			Cached:           true,
		}
	}

	src := r.OriginalLanguage
	if src == "" {
		if lang, ok := s.tr.DetectLanguage(ctx, r.Description); ok {
			src = lang
			if err := s.store.UpdateReview(ctx, id, domain.ReviewUpdate{OriginalLanguage: src}); err != nil {
				log.Warn().Err(err).Str("review_id", id).Str("source_lang", src).Msg("persist original language failed")
			}
		}
	}

	if src != "" && src == target {
		s.persistPassthrough(ctx, id, r, src)
		observability.ObserveLanguage("on_demand", "cached")
		return &domain.TranslationResult{
			TranslatedText:   r.Description,
			TranslatedTitle:  r.Title,
			OriginalLanguage: src,
			Cached:           true,
		}
	}

	// translate only what is missing; a cached half is reused as is
	text, title := cachedText, cachedTitle
	var g errgroup.Group
	if !textOK {
		goSafe(&g, "translate description", func() {
			text, textOK = s.tr.TranslateText(ctx, r.Description, target, src)
		})
	}
	if hasTitle && !titleOK {
		goSafe(&g, "translate title", func() {
			title, titleOK = s.tr.TranslateText(ctx, r.Title, target, src)
		})
	}
	if err := g.Wait(); err != nil {
		// a crashed branch leaves its ok flag false and degrades like a remote failure
		log.Error().Err(err).Str("review_id", id).Str("target_lang", target).Msg("on-demand translation branch crashed")
	}

	if !textOK {
		observability.ObserveLanguage("on_demand", "failed")
		log.Info().Str("review_id", id).Str("target_lang", target).Msg("on-demand translation unavailable")
		return &domain.TranslationResult{
			TranslatedText:   r.Description,
			TranslatedTitle:  r.Title,
			OriginalLanguage: src,
			Unavailable:      true,
		}
	}
	observability.ObserveLanguage("on_demand", "ok")

	var upd domain.ReviewUpdate
	if _, cached := r.Translations.Get(target); !cached {
		upd.SetTranslation(target, text)
	}
	if hasTitle && titleOK {
		if _, cached := r.TitleTranslations.Get(target); !cached {
			upd.SetTitleTranslation(target, title)
		}
	}
	if !upd.IsEmpty() {
		if err := s.store.UpdateReview(ctx, id, upd); err != nil {
			log.Warn().Err(err).Str("review_id", id).Str("target_lang", target).Msg("persist translation failed")
		} else {
			invalidateReview(ctx, s.cache, id)
		}
	}

	if hasTitle && !titleOK {
		title = r.Title
	}
	return &domain.TranslationResult{
		TranslatedText:   text,
		TranslatedTitle:  title,
		OriginalLanguage: src,
	}
}

// persistPassthrough stores the original text under its own language key when missing.
func (s *OnDemandService) persistPassthrough(ctx context.Context, id string, r domain.Review, src string) {
	var upd domain.ReviewUpdate
	if _, ok := r.Translations.Get(src); !ok && r.Description != "" {
		upd.SetTranslation(src, r.Description)
	}
	if _, ok := r.TitleTranslations.Get(src); !ok && strings.TrimSpace(r.Title) != "" {
		upd.SetTitleTranslation(src, r.Title)
	}
	if upd.IsEmpty() {
		return
	}
	if err := s.store.UpdateReview(ctx, id, upd); err != nil {
		log.Warn().Err(err).Str("review_id", id).Msg("persist passthrough failed")
		return
	}
	invalidateReview(ctx, s.cache, id)
}
