package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/charts"
	"review_sentiment/internal/adapters/csvsource"
	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/adapters/remote"
	"review_sentiment/internal/adapters/report"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/nlp"
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

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr)

	log.Info().
		Str("source", cfg.SourcePath).
		Str("driver", cfg.StoreDriver).
		Str("table", cfg.StoreTable).
		Int("sample", cfg.SampleSize).
		Msg("annotator starting")

	repo, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, cfg.StoreTable)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer repo.Close()
	log.Info().Str("table", repo.Table()).Msg("store ping ok")

	src := csvsource.New(cfg.SourcePath, remote.New(cfg.RemoteRPS), remote.IsURL)
	svc := app.NewAnnotationService(src, repo, nlp.NewLexicon(), clockwork.NewRealClock(), app.AnnotateOptions{
		SampleSize:  cfg.SampleSize,
		PreviewRows: cfg.PreviewRows,
		TopProducts: cfg.TopProducts,
	})

	sum, err := svc.Run(ctx)
	if err != nil {
		// log.Fatal skips deferred calls
		_ = repo.Close()
		log.Fatal().Err(err).Msg("annotation failed")
	}

	if err := report.NewConsole(os.Stdout).Write(sum); err != nil {
		log.Error().Err(err).Msg("write report failed")
	}

	if err := writeChart(cfg.ChartPath, sum.ScoreDistribution); err != nil {
		_ = repo.Close()
		log.Fatal().Err(err).Str("path", cfg.ChartPath).Msg("write chart failed")
	}
	log.Info().Str("path", cfg.ChartPath).Str("run_id", sum.RunID).Msg("annotation completed")
}

func writeChart(path string, dist []domain.ScoreCount) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := charts.ScoreDistribution(f, dist); err != nil {
		_ = f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
