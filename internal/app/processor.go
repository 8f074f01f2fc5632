package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"truview/internal/adapters/observability"
	"truview/internal/domain"
)

// Processor is the background enrichment job run after a review is created:
// detect the source language, then fan out translations into every app language.
type Processor struct {
	store domain.ReviewStore
	tr    *TranslationClient
	cache domain.Cache
	langs []string
}

func NewProcessor(store domain.ReviewStore, tr *TranslationClient, cache domain.Cache, langs []string) *Processor {
	if len(langs) == 0 {
		langs = domain.DefaultLanguages
	}
	return &Processor{store: store, tr: tr, cache: cache, langs: langs}
}

// Process never returns an error and never lets a panic escape, including
// one raised inside a per-language branch. Everything is logged.
func (p *Processor) Process(ctx context.Context, id string) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("review_id", id).Interface("panic", rec).Msg("translation job panicked")
			observability.ObserveJob("failed")
		}
	}()

	outcome, err := p.process(ctx, id, start)
	if err != nil {
		log.Error().Err(err).Str("review_id", id).Dur("elapsed", time.Since(start)).Msg("translation job failed")
	}
	observability.ObserveJob(outcome)
}

func (p *Processor) process(ctx context.Context, id string, start time.Time) (string, error) {
	r, err := p.store.FindReview(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		log.Info().Str("review_id", id).Msg("translation job: review not found")
		return "skipped", nil
	}
	if err != nil {
		return "failed", err
	}
	desc, title := strings.TrimSpace(r.Description), strings.TrimSpace(r.Title)
	if desc == "" && title == "" {
		log.Info().Str("review_id", id).Msg("translation job: nothing to translate")
		return "skipped", nil
	}

	src := r.OriginalLanguage
	if src == "" {
		lang, ok := p.tr.DetectLanguage(ctx, desc)
		if !ok {
			log.Info().Str("review_id", id).Msg("translation job: language not detected")
			return "skipped", nil
		}
		src = lang
		// persisted on its own so the tag survives a failing fan-out
		if err := p.store.UpdateReview(ctx, id, domain.ReviewUpdate{OriginalLanguage: src}); err != nil {
			log.Warn().Err(err).Str("review_id", id).Str("source_lang", src).Msg("persist original language failed")
		}
	}

	var (
		mu  sync.Mutex
		upd domain.ReviewUpdate
		g   errgroup.Group
	)
	for _, lang := range p.langs {
		if lang == src {
			continue
		}
		lang := lang
		if _, ok := r.Translations.Get(lang); !ok && desc != "" {
			goSafe(&g, "translate description to "+lang, func() {
				out, ok := p.tr.TranslateText(ctx, desc, lang, src)
				if !ok {
					observability.ObserveLanguage("background", "failed")
					return
				}
				observability.ObserveLanguage("background", "ok")
				mu.Lock()
				upd.SetTranslation(lang, out)
				mu.Unlock()
			})
		}
		if _, ok := r.TitleTranslations.Get(lang); !ok && title != "" {
			goSafe(&g, "translate title to "+lang, func() {
				out, ok := p.tr.TranslateText(ctx, title, lang, src)
				if !ok {
					observability.ObserveLanguage("background", "failed")
					return
				}
				observability.ObserveLanguage("background", "ok")
				mu.Lock()
				upd.SetTitleTranslation(lang, out)
				mu.Unlock()
			})
		}
	}
	if err := g.Wait(); err != nil {
		// the crashed branch contributes nothing; the rest is still written
		observability.ObserveLanguage("background", "failed")
		log.Error().Err(err).Str("review_id", id).Str("source_lang", src).Msg("translation branch crashed")
	}

	// the original is cached under its own key so reads need no special case
	if desc != "" {
		if _, ok := r.Translations.Get(src); !ok {
			upd.SetTranslation(src, r.Description)
		}
	}
	if title != "" {
		if _, ok := r.TitleTranslations.Get(src); !ok {
			upd.SetTitleTranslation(src, r.Title)
		}
	}

	if !upd.IsEmpty() {
		if err := p.store.UpdateReview(ctx, id, upd); err != nil {
			return "failed", err
		}
	}
	invalidateReview(ctx, p.cache, id)

	populated := 0
	for _, lang := range p.langs {
		if _, ok := upd.Translations.Get(lang); ok {
			populated++
		} else if _, ok := r.Translations.Get(lang); ok {
			populated++
		}
	}
	log.Info().
		Str("review_id", id).
		Str("source_lang", src).
		Int("languages", populated).
		Int("supported", len(p.langs)).
		Dur("elapsed", time.Since(start)).
		Msg("translation job done")
	return "done", nil
}
