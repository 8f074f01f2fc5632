// Package gtranslate adapts the Google Cloud Translation v2 API.
package gtranslate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"truview/internal/adapters/observability"
)

const service = "google_translate"

var (
	ErrNotConfigured = errors.New("gtranslate: api key not configured")
	ErrNoDetection   = errors.New("gtranslate: empty detection result")
)

// Client builds the SDK client on first use and reuses it until Close.
type Client struct {
	key  string
	opts []option.ClientOption

	mu sync.Mutex
	tc *translate.Client
}

// New does not touch the network. Extra options are appended after the API key.
func New(key string, opts ...option.ClientOption) *Client {
	return &Client{key: key, opts: opts}
}

func (c *Client) client(ctx context.Context) (*translate.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tc != nil {
		return c.tc, nil
	}
	if c.key == "" {
		return nil, ErrNotConfigured
	}
	opts := append([]option.ClientOption{option.WithAPIKey(c.key)}, c.opts...)
	tc, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gtranslate: new client: %w", err)
	}
	c.tc = tc
	return tc, nil
}

func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	tc, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	start := time.Now()
	res, err := tc.DetectLanguage(ctx, []string{text})
	observability.ObserveExternal(service, "detect", statusOf(err), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("gtranslate: detect: %w", err)
	}
	if len(res) == 0 || len(res[0]) == 0 {
		return "", ErrNoDetection
	}
	best := res[0][0]
	for _, d := range res[0][1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best.Language.String(), nil
}

func (c *Client) Translate(ctx context.Context, text, target, source string) (string, error) {
	tgt, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("gtranslate: target %q: %w", target, err)
	}
	opts := &translate.Options{Format: translate.Text}
	if source != "" {
		src, err := language.Parse(source)
		if err != nil {
			return "", fmt.Errorf("gtranslate: source %q: %w", source, err)
		}
		opts.Source = src
	}

	tc, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	start := time.Now()
	res, err := tc.Translate(ctx, []string{text}, tgt, opts)
	observability.ObserveExternal(service, "translate", statusOf(err), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("gtranslate: translate to %s: %w", target, err)
	}
	if len(res) == 0 {
		return "", fmt.Errorf("gtranslate: empty translation to %s", target)
	}
	return res[0].Text, nil
}

// Close releases the SDK client if it was ever built.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tc == nil {
		return nil
	}
	err := c.tc.Close()
	c.tc = nil
	return err
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
