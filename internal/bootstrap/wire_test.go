package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"truview/internal/adapters/gtranslate"
	"truview/internal/adapters/libretranslate"
	"truview/internal/bootstrap"
	"truview/internal/shared"
)

func TestNewTranslator_Selection(t *testing.T) {
	cases := []struct {
		name string
		cfg  shared.Config
		want string // "", "google", "libre"
	}{
		{"google not configured", shared.Config{TranslateProvider: "google"}, ""},
		{"google", shared.Config{TranslateProvider: "google", GoogleAPIKey: "k"}, "google"},
		{"libre not configured", shared.Config{TranslateProvider: "libre"}, ""},
		{"libre", shared.Config{TranslateProvider: "libre", LibreURL: "http://localhost:5000", TranslateRPS: 5, TranslateTimeout: time.Second}, "libre"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr, closeFn, err := bootstrap.NewTranslator(c.cfg)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			defer closeFn()
			switch c.want {
			case "":
				if tr != nil {
					t.Fatalf("expected no translator, got %T", tr)
				}
			case "google":
				if _, ok := tr.(*gtranslate.Client); !ok {
					t.Fatalf("expected google client, got %T", tr)
				}
			case "libre":
				if _, ok := tr.(*libretranslate.Client); !ok {
					t.Fatalf("expected libretranslate client, got %T", tr)
				}
			}
		})
	}
}

func TestNewTranslator_UnknownProvider(t *testing.T) {
	// an unknown provider falls through TranslationConfigured to the google check
	if _, _, err := bootstrap.NewTranslator(shared.Config{TranslateProvider: "deepl", GoogleAPIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	if _, err := bootstrap.OpenStore(context.Background(), shared.Config{StoreDriver: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
