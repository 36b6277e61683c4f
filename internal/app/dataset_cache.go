package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

// Dataset is one immutable load of the explorer's source.
type Dataset struct {
	Generation string // new uuid per load; part of every view cache key
	LoadedAt   time.Time
	Table      domain.Table
}

// DatasetCache loads its source once for the life of the process. Concurrent
// first calls share a single load; a failed load is not remembered.
type DatasetCache struct {
	src   domain.ReviewSource
	clock clockwork.Clock

	group singleflight.Group
	mu    sync.RWMutex
	ds    *Dataset
}

func NewDatasetCache(src domain.ReviewSource, clock clockwork.Clock) *DatasetCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DatasetCache{src: src, clock: clock}
}

func (c *DatasetCache) Get(ctx context.Context) (*Dataset, error) {
	if ds := c.loaded(); ds != nil {
		return ds, nil
	}
	v, err, _ := c.group.Do("dataset", func() (any, error) {
		if ds := c.loaded(); ds != nil {
			return ds, nil
		}
		// a cancelled first caller must not fail the others sharing this load
		tbl, err := c.src.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		ds := &Dataset{Generation: uuid.NewString(), LoadedAt: c.clock.Now().UTC(), Table: tbl}

		c.mu.Lock()
		c.ds = ds
		c.mu.Unlock()

		observability.ObserveCache("dataset", "load")
		observability.DatasetRows.Set(float64(tbl.Len()))
		log.Info().Str("generation", ds.Generation).Int("rows", tbl.Len()).Msg("dataset loaded")
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (c *DatasetCache) loaded() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds
}

// NopCache satisfies domain.Cache without storing anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, any, int) error    { return nil }
func (NopCache) Del(context.Context, string) error              { return nil }
