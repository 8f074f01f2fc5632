package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"truview/internal/domain"
)

// Backfill runs the background job over reviews that never got a language,
// at most workers at a time. Returns how many jobs ran.
func Backfill(ctx context.Context, store domain.ReviewStore, job JobFunc, limit, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	ids, err := store.ListUntranslated(ctx, limit)
	if err != nil {
		return 0, err
	}
	log.Info().Int("reviews", len(ids)).Int("workers", workers).Msg("backfill starting")

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg  sync.WaitGroup
		ran atomic.Int64
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return int(ran.Load()), err
		}
		wg.Add(1)
		go func(reviewID string) {
			defer wg.Done()
			defer sem.Release(1)
			job(ctx, reviewID)
			ran.Add(1)
		}(id)
	}
	wg.Wait()
	log.Info().Int64("reviews", ran.Load()).Msg("backfill completed")
	return int(ran.Load()), nil
}
