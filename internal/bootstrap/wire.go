// Package bootstrap builds the adapters selected by configuration so both
// binaries wire the same store and translation backend.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"truview/internal/adapters/gtranslate"
	"truview/internal/adapters/libretranslate"
	"truview/internal/domain"
	"truview/internal/shared"
	mongorepo "truview/internal/storage/mongo"
	mysqlrepo "truview/internal/storage/mysql"
)

// Store is a review store that owns a connection.
type Store interface {
	domain.ReviewStore
	Close(ctx context.Context) error
}

type mysqlStore struct {
	*mysqlrepo.Repo
	db *sql.DB
}

func (s mysqlStore) Close(context.Context) error { return s.db.Close() }

// OpenStore connects to the configured backend and checks it is reachable.
func OpenStore(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db.Ping: %w", err)
		}
		log.Info().Str("driver", "mysql").Msg("database connection ok")
		return mysqlStore{Repo: mysqlrepo.New(db), db: db}, nil
	case "mongo", "mongodb":
		repo, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo index creation failed")
		}
		log.Info().Str("driver", "mongo").Str("db", cfg.MongoDB).Msg("database connection ok")
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// NewTranslator returns the remote backend, or nil when translation is not
// configured. A nil translator disables the translation pipelines.
func NewTranslator(cfg shared.Config) (domain.Translator, func() error, error) {
	noop := func() error { return nil }
	if !cfg.TranslationConfigured() {
		return nil, noop, nil
	}
	switch cfg.TranslateProvider {
	case "libre", "libretranslate":
		c, err := libretranslate.New(cfg.LibreURL, cfg.LibreKey, cfg.TranslateRPS, cfg.TranslateTimeout)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case "google", "":
		c := gtranslate.New(cfg.GoogleAPIKey)
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown TRANSLATE_PROVIDER %q", cfg.TranslateProvider)
	}
}
