// internal/adapters/libretranslate/client.go
package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"truview/internal/adapters/observability"
)

const service = "libretranslate"

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("LibreTranslate base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("libretranslate: unauthorized")
	ErrRateLimited  = errors.New("libretranslate: rate limited")
	ErrEmpty        = errors.New("libretranslate: empty response")
)

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detection struct {
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"` // "auto" lets the server detect
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Detect returns the most confident language code for text.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	var out []detection
	if err := c.post(ctx, "/detect", detectRequest{Q: text, APIKey: c.key}, &out); err != nil {
		return "", err
	}
	best := -1
	for i, d := range out {
		if d.Language == "" {
			continue
		}
		if best < 0 || d.Confidence > out[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return "", ErrEmpty
	}
	return out[best].Language, nil
}

// Translate makes exactly one request; callers decide what a failure means.
func (c *Client) Translate(ctx context.Context, text, target, source string) (string, error) {
	if source == "" {
		source = "auto"
	}
	req := translateRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: c.key}
	var out translateResponse
	if err := c.post(ctx, "/translate", req, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", ErrEmpty
	}
	return out.TranslatedText, nil
}

// post performs a rate limited JSON POST and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "truview/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, path, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w", service, path, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, path, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: bad status %d: %s", service, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
