package domain

import "context"

// ReviewSource loads a complete review table (CSV file, remote file or store).
type ReviewSource interface {
	Load(ctx context.Context) (Table, error)
}

// AnnotatedStore persists annotated tables and answers summary queries.
type AnnotatedStore interface {
	// Write path: full replace of the named table.
	ReplaceAll(ctx context.Context, rows []Review) error

	// Read paths
	Count(ctx context.Context) (int, error)
	TopProducts(ctx context.Context, n int) ([]ProductCount, error)
	ScoreDistribution(ctx context.Context) ([]ScoreCount, error)
	LoadAll(ctx context.Context) ([]Review, error)
}

// PolarityEstimator scores cleaned text in [-1, 1]. Must be deterministic.
type PolarityEstimator interface {
	Polarity(text string) float64
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

type ProductCount struct {
	ProductID *string // nil groups rows without a product id
	Count     int
}

type ScoreCount struct {
	Score int
	Count int
}
