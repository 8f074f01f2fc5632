package gtranslate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestClient_NotConfigured(t *testing.T) {
	c := New("")
	if _, err := c.Detect(context.Background(), "hello"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.Translate(context.Background(), "hello", "hi", "en"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on unused client: %v", err)
	}
}

func TestClient_RejectsBadLanguageBeforeCalling(t *testing.T) {
	c := New("")
	if _, err := c.Translate(context.Background(), "hello", "not a tag!", ""); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if _, err := c.Translate(context.Background(), "hello", "hi", "??"); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected a parse error for the source, got %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	if got := statusOf(nil); got != http.StatusOK {
		t.Fatalf("nil: %d", got)
	}
	wrapped := fmt.Errorf("wrap: %w", &googleapi.Error{Code: http.StatusForbidden})
	if got := statusOf(wrapped); got != http.StatusForbidden {
		t.Fatalf("googleapi error: %d", got)
	}
	if got := statusOf(errors.New("dial tcp")); got != 0 {
		t.Fatalf("transport error: %d", got)
	}
}
