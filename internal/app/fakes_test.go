package app_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"truview/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu      sync.Mutex
	reviews map[string]domain.Review
	updates []domain.ReviewUpdate
	finds   int
	findErr error
	panicOn string
}

func newFakeStore(rs ...domain.Review) *fakeStore {
	s := &fakeStore{reviews: map[string]domain.Review{}}
	for _, r := range rs {
		s.reviews[r.ID] = r
	}
	return s
}

func (s *fakeStore) CreateReview(ctx context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
	return nil
}

func (s *fakeStore) FindReview(ctx context.Context, id string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.panicOn {
		panic("boom")
	}
	s.finds++
	if s.findErr != nil {
		return domain.Review{}, s.findErr
	}
	r, ok := s.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	// hand out copies so callers cannot mutate stored maps
	r.Translations = copyMap(r.Translations)
	r.TitleTranslations = copyMap(r.TitleTranslations)
	return r, nil
}

func (s *fakeStore) UpdateReview(ctx context.Context, id string, u domain.ReviewUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
	r, ok := s.reviews[id]
	if !ok {
		return nil
	}
	if u.OriginalLanguage != "" {
		r.OriginalLanguage = u.OriginalLanguage
	}
	for l, v := range u.Translations {
		if r.Translations == nil {
			r.Translations = domain.Translations{}
		}
		r.Translations[l] = v
	}
	for l, v := range u.TitleTranslations {
		if r.TitleTranslations == nil {
			r.TitleTranslations = domain.Translations{}
		}
		r.TitleTranslations[l] = v
	}
	s.reviews[id] = r
	return nil
}

func (s *fakeStore) ListUntranslated(ctx context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, r := range s.reviews {
		if r.OriginalLanguage == "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *fakeStore) get(id string) domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews[id]
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

// fakeRemote answers from a table keyed by "text|target|source".
type fakeRemote struct {
	mu          sync.Mutex
	detect      string
	detectErr   error
	table       map[string]string
	failTargets map[string]bool
	detects     int
	translates  int
	delay       time.Duration

	panicTargets map[string]bool
	// when set, Translate signals entered and waits for release or ctx
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRemote) Detect(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detects++
	return f.detect, f.detectErr
}

func (f *fakeRemote) Translate(ctx context.Context, text, target, source string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.release != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translates++
	if f.panicTargets[target] {
		panic("translator crashed on " + target)
	}
	if f.failTargets[target] {
		return "", fmt.Errorf("quota exceeded for %s", target)
	}
	if out, ok := f.table[text+"|"+target+"|"+source]; ok {
		return out, nil
	}
	return "[" + target + "] " + text, nil
}

func (f *fakeRemote) counts() (detects, translates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detects, f.translates
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.ReviewView); ok {
		*d = v.(domain.ReviewView)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func copyMap(m domain.Translations) domain.Translations {
	if m == nil {
		return nil
	}
	out := make(domain.Translations, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

const (
	descEN  = "This product works well"
	titleEN = "Great"
	descHI  = "यह उत्पाद अच्छी तरह काम करता है"
	descTA  = "இது சிறப்பாக வேலை செய்கிறது"
	titleHI = "बढ़िया"
	titleTA = "அருமை"
)

func sampleReview() domain.Review {
	return domain.Review{ID: "r1", Title: titleEN, Description: descEN}
}

func sampleRemote() *fakeRemote {
	return &fakeRemote{
		detect: "en",
		table: map[string]string{
			descEN + "|hi|en":  descHI,
			descEN + "|ta|en":  descTA,
			titleEN + "|hi|en": titleHI,
			titleEN + "|ta|en": titleTA,
		},
	}
}
