package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/csvsource"
	server "review_sentiment/internal/adapters/http_server"
	"review_sentiment/internal/adapters/observability"
	redisad "review_sentiment/internal/adapters/redis"
	"review_sentiment/internal/adapters/remote"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/shared"
	"review_sentiment/internal/storage/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// data source
	var src domain.ReviewSource
	switch cfg.ExplorerSource {
	case shared.SourceStore:
		repo, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, cfg.StoreTable)
		if err != nil {
			log.Fatal().Err(err).Msg("open store failed")
		}
		defer repo.Close()
		src = repo
		log.Info().Str("driver", cfg.StoreDriver).Str("table", cfg.StoreTable).Msg("explorer reading store")
	default:
		src = csvsource.New(cfg.SourcePath, remote.New(cfg.RemoteRPS), remote.IsURL)
		log.Info().Str("source", cfg.SourcePath).Msg("explorer reading file")
	}

	// view cache
	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; view cache disabled")
			_ = rc.Close()
		} else {
			cache = rc
			defer rc.Close()
		}
		cancel()
	}

	data := app.NewDatasetCache(src, clockwork.NewRealClock())
	x := app.NewExplorerService(data, cache, cfg.CacheTTL)

	// warm the dataset so the first page load doesn't pay for it
	go func() {
		if _, err := data.Get(ctx); err != nil {
			log.Error().Err(err).Msg("initial dataset load failed")
		}
	}()

	// http
	srv := server.New(cfg.RateLimitRPS)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{X: x})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("explorer listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
