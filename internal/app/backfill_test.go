package app_test

import (
	"context"
	"testing"

	"truview/internal/app"
	"truview/internal/domain"
)

func TestBackfill_ProcessesUntranslatedReviews(t *testing.T) {
	store := newFakeStore(
		domain.Review{ID: "a", Description: descEN},
		domain.Review{ID: "b", Description: descEN},
		domain.Review{ID: "done", Description: descEN, OriginalLanguage: "en"},
	)
	p := app.NewProcessor(store, app.NewTranslationClient(sampleRemote()), nil, langs)

	n, err := app.Backfill(context.Background(), store, p.Process, 10, 2)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 jobs, got %d", n)
	}
	for _, id := range []string{"a", "b"} {
		if got := store.get(id); got.OriginalLanguage != "en" || got.Translations["hi"] != descHI {
			t.Fatalf("review %s not translated: %+v", id, got)
		}
	}
	left, _ := store.ListUntranslated(context.Background(), 10)
	if len(left) != 0 {
		t.Fatalf("expected nothing left, got %v", left)
	}
}

func TestBackfill_RespectsLimit(t *testing.T) {
	store := newFakeStore(
		domain.Review{ID: "a", Description: descEN},
		domain.Review{ID: "b", Description: descEN},
		domain.Review{ID: "c", Description: descEN},
	)
	n, err := app.Backfill(context.Background(), store, func(ctx context.Context, id string) {}, 2, 1)
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
