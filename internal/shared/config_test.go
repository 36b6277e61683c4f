package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := shared.Load()
	require.NoError(t, err)

	assert.Equal(t, "Reviews.csv", cfg.SourcePath)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "amazon_reviews.db", cfg.StoreDSN)
	assert.Equal(t, "reviews", cfg.StoreTable)
	assert.Equal(t, 10000, cfg.SampleSize)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, 5, cfg.TopProducts)
	assert.Equal(t, shared.SourceCSV, cfg.ExplorerSource)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOURCE_PATH", "https://example.com/Reviews.csv")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("ANNOTATE_SAMPLE_SIZE", "250")
	t.Setenv("EXPLORER_SOURCE", "store")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg, err := shared.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/Reviews.csv", cfg.SourcePath)
	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, 250, cfg.SampleSize)
	assert.Equal(t, shared.SourceStore, cfg.ExplorerSource)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver": {"STORE_DRIVER": "postgres"},
		"source": {"EXPLORER_SOURCE": "s3"},
		"table":  {"STORE_TABLE": "reviews; DROP TABLE x"},
		"sample": {"ANNOTATE_SAMPLE_SIZE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := shared.Load()
			assert.Error(t, err)
		})
	}
}
