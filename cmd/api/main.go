package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "truview/internal/adapters/http_server"
	"truview/internal/adapters/observability"
	redisad "truview/internal/adapters/redis"
	"truview/internal/app"
	"truview/internal/bootstrap"
	"truview/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		// reads fall through to the store while redis is down
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	remote, closeRemote, err := bootstrap.NewTranslator(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.TranslateProvider).Msg("translator init failed")
	}
	tr := app.NewTranslationClient(remote)

	// background pipeline: creation submits, runner processes
	proc := app.NewProcessor(store, tr, cache, cfg.Languages)
	runner := app.NewRunner(proc.Process, cfg.Workers, cfg.QueueSize, cfg.JobTimeout)
	runner.Start(context.Background())

	reviews := app.NewReviewService(store, runner)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	od := app.NewOnDemandService(store, tr, cache)

	// http
	srv := server.New(cfg.TranslateTimeout + 5*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Reviews: reviews, Q: q, T: od, Languages: cfg.Languages})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Strs("languages", cfg.Languages).Bool("translation", tr.Enabled()).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDeadline)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := runner.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("translation runner did not drain in time")
	}
	if err := closeRemote(); err != nil {
		log.Warn().Err(err).Msg("close translator failed")
	}
	if err := cache.Close(); err != nil {
		log.Warn().Err(err).Msg("close redis failed")
	}
	if err := store.Close(sctx); err != nil {
		log.Warn().Err(err).Msg("close store failed")
	}
	log.Info().Msg("bye")
}
