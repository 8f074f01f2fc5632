package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"truview/internal/adapters/observability"
	redisad "truview/internal/adapters/redis"
	"truview/internal/app"
	"truview/internal/bootstrap"
	"truview/internal/domain"
	"truview/internal/shared"
)

// env bundles what every subcommand needs; close releases it.
type env struct {
	cfg   shared.Config
	store bootstrap.Store
	cache *redisad.Cache
	tr    *app.TranslationClient
	close func()
}

func setup(ctx context.Context) (*env, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	remote, closeRemote, err := bootstrap.NewTranslator(cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	return &env{
		cfg:   cfg,
		store: store,
		cache: cache,
		tr:    app.NewTranslationClient(remote),
		close: func() {
			_ = closeRemote()
			_ = cache.Close()
			_ = store.Close(context.Background())
		},
	}, nil
}

func backfillCmd() *cobra.Command {
	var limit, workers int
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run the translation job for reviews that have no detected language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if !e.tr.Enabled() {
				return errors.New("translation is not configured")
			}
			if limit <= 0 {
				limit = e.cfg.BackfillLimit
			}
			if workers <= 0 {
				workers = e.cfg.BackfillWorkers
			}
			proc := app.NewProcessor(e.store, e.tr, e.cache, e.cfg.Languages)
			n, err := app.Backfill(cmd.Context(), e.store, proc.Process, limit, workers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d reviews\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max reviews to process (default BACKFILL_LIMIT)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent jobs (default BACKFILL_WORKERS)")
	return cmd
}

func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <review-id> <lang>",
		Short: "Translate one review on demand and print the result as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if domain.NormalizeLang(args[1]) == "" {
				return fmt.Errorf("invalid language %q", args[1])
			}
			res := app.NewOnDemandService(e.store, e.tr, e.cache).Translate(cmd.Context(), args[0], args[1])
			if res == nil {
				return fmt.Errorf("review %s not found", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "translator",
		Short:        "Operator tooling for review translations",
		SilenceUsage: true,
	}
	root.AddCommand(backfillCmd(), translateCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("translator failed")
		os.Exit(1)
	}
}
