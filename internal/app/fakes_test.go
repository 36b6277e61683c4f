package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"review_sentiment/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	tbl   domain.Table
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeSource) Load(ctx context.Context) (domain.Table, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.tbl, f.err
}

type fakeStore struct {
	rows     []domain.Review
	replaced int
	err      error
}

func (f *fakeStore) ReplaceAll(ctx context.Context, rows []domain.Review) error {
	if f.err != nil {
		return f.err
	}
	f.replaced++
	f.rows = append([]domain.Review(nil), rows...)
	return nil
}
func (f *fakeStore) Count(ctx context.Context) (int, error) { return len(f.rows), nil }
func (f *fakeStore) TopProducts(ctx context.Context, n int) ([]domain.ProductCount, error) {
	counts := map[string]int{}
	for _, r := range f.rows {
		if r.ProductID != nil {
			counts[*r.ProductID]++
		}
	}
	var out []domain.ProductCount
	for p, c := range counts {
		out = append(out, domain.ProductCount{ProductID: ptr(p), Count: c})
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
func (f *fakeStore) ScoreDistribution(ctx context.Context) ([]domain.ScoreCount, error) {
	return []domain.ScoreCount{{Score: 5, Count: len(f.rows)}}, nil
}
func (f *fakeStore) LoadAll(ctx context.Context) ([]domain.Review, error) { return f.rows, nil }

// fakeCache stores JSON like the redis adapter so round-trips are exercised.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// constant polarity for every non-empty text
type fixedEstimator float64

func (e fixedEstimator) Polarity(string) float64 { return float64(e) }

func ptr[T any](v T) *T { return &v }

func at(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &t
}
