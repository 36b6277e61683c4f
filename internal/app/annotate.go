package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/nlp"
)

type AnnotateOptions struct {
	SampleSize  int // prefix sample taken from the source
	PreviewRows int
	TopProducts int
}

// RunSummary is what one annotation run reports back to the console.
type RunSummary struct {
	RunID string

	// raw rows before projection, as loaded
	Preview       []domain.Review
	PreviewSchema domain.Schema

	Total             int
	TopProducts       []domain.ProductCount
	ScoreDistribution []domain.ScoreCount
	Labels            []LabelCount
}

type AnnotationService struct {
	source domain.ReviewSource
	store  domain.AnnotatedStore
	est    domain.PolarityEstimator
	clock  clockwork.Clock
	opts   AnnotateOptions
}

func NewAnnotationService(src domain.ReviewSource, store domain.AnnotatedStore, est domain.PolarityEstimator,
	clock clockwork.Clock, opts AnnotateOptions) *AnnotationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AnnotationService{source: src, store: store, est: est, clock: clock, opts: opts}
}

// Run loads, samples, projects, annotates and persists the source table, then
// reads the summary back from the store. Any error aborts the run; the store
// keeps its previous contents unless ReplaceAll succeeded.
func (s *AnnotationService) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{RunID: uuid.NewString()}
	l := log.With().Str("run_id", sum.RunID).Logger()
	started := s.clock.Now()

	var src domain.Table
	err := s.stage(l, "load", func() (err error) {
		src, err = s.source.Load(ctx)
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("load source: %w", err)
	}

	sum.PreviewSchema = src.Schema
	if s.opts.PreviewRows > 0 {
		sum.Preview = src.Head(s.opts.PreviewRows).Rows
	}

	sample := src.Head(s.opts.SampleSize)
	rows, err := project(sample)
	if err != nil {
		return sum, err
	}

	_ = s.stage(l, "annotate", func() error {
		annotateRows(s.est, rows)
		return nil
	})
	sum.Labels = labelCounts(rows)

	if err := s.stage(l, "store", func() error { return s.store.ReplaceAll(ctx, rows) }); err != nil {
		return sum, fmt.Errorf("write annotated table: %w", err)
	}

	err = s.stage(l, "summarize", func() (err error) {
		if sum.Total, err = s.store.Count(ctx); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if sum.TopProducts, err = s.store.TopProducts(ctx, s.opts.TopProducts); err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		if sum.ScoreDistribution, err = s.store.ScoreDistribution(ctx); err != nil {
			return fmt.Errorf("score distribution: %w", err)
		}
		return nil
	})
	if err != nil {
		return sum, err
	}

	l.Info().
		Int("source_rows", src.Len()).
		Int("annotated_rows", len(rows)).
		Dur("elapsed", s.clock.Since(started)).
		Msg("annotation run complete")
	return sum, nil
}

func (s *AnnotationService) stage(l zerolog.Logger, name string, fn func() error) error {
	start := s.clock.Now()
	err := fn()
	d := s.clock.Since(start)
	observability.ObserveStage(name, d)

	ev := l.Debug()
	if err != nil {
		ev = l.Error().Err(err)
	}
	ev.Str("stage", name).Dur("took", d).Msg("stage finished")
	return err
}

// project keeps the raw review columns and drops any derived values carried
// by the source.
func project(t domain.Table) ([]domain.Review, error) {
	if missing := t.Schema.Missing(domain.RawColumns...); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(names, ", "))
	}
	rows := make([]domain.Review, len(t.Rows))
	for i, r := range t.Rows {
		r.CleanedText, r.SentimentScore, r.SentimentLabel = nil, nil, nil
		rows[i] = r
	}
	return rows, nil
}

func annotateRows(est domain.PolarityEstimator, rows []domain.Review) {
	for i := range rows {
		a := nlp.Annotate(est, rows[i].Text)
		cleaned, score, label := a.CleanedText, a.SentimentScore, a.SentimentLabel
		rows[i].CleanedText = &cleaned
		rows[i].SentimentScore = &score
		rows[i].SentimentLabel = &label
		observability.ObserveAnnotated(label.String())
	}
}
