package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

// ReviewStore is the document store holding reviews and their translation caches.
type ReviewStore interface {
	CreateReview(ctx context.Context, r Review) error
	// FindReview reads only the translation-relevant fields. Returns ErrNotFound.
	FindReview(ctx context.Context, id string) (Review, error)
	// UpdateReview merges u into the stored document atomically.
	// A missing id is a silent no-op.
	UpdateReview(ctx context.Context, id string, u ReviewUpdate) error
	// ListUntranslated returns ids of reviews without an original language, oldest first.
	ListUntranslated(ctx context.Context, limit int) ([]string, error)
}

// Translator is the remote translation API. Both calls may fail for any reason.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	// Translate translates text into target. An empty source lets the API detect it.
	Translate(ctx context.Context, text, target, source string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
