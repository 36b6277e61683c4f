package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	SourcePath     string // local path or http(s) URL
	StoreDriver    string // sqlite | mysql
	StoreDSN       string
	StoreTable     string
	SampleSize     int
	PreviewRows    int
	TopProducts    int
	ChartPath      string
	ExplorerSource string // csv | store

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	RateLimitRPS int
	RemoteRPS    int
}

const (
	SourceCSV   = "csv"
	SourceStore = "store"
)

var reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,50}$`)

// Load reads configuration from the environment, falling back to an
// optional config.yaml in the working directory, then to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	c := Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		MetricsAddr:    v.GetString("METRICS_ADDR"),
		SourcePath:     v.GetString("SOURCE_PATH"),
		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		StoreDSN:       v.GetString("STORE_DSN"),
		StoreTable:     v.GetString("STORE_TABLE"),
		SampleSize:     v.GetInt("ANNOTATE_SAMPLE_SIZE"),
		PreviewRows:    v.GetInt("ANNOTATE_PREVIEW_ROWS"),
		TopProducts:    v.GetInt("ANNOTATE_TOP_PRODUCTS"),
		ChartPath:      v.GetString("CHART_PATH"),
		ExplorerSource: strings.ToLower(v.GetString("EXPLORER_SOURCE")),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPass:      v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		CacheTTL:       time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		RateLimitRPS:   v.GetInt("RATE_LIMIT_RPS"),
		RemoteRPS:      v.GetInt("REMOTE_RPS"),
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	if c.RedisAddr == "" {
		log.Debug().Msg("REDIS_ADDR is empty; view cache disabled")
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("SOURCE_PATH", "Reviews.csv")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("STORE_DSN", "amazon_reviews.db")
	v.SetDefault("STORE_TABLE", "reviews")
	v.SetDefault("ANNOTATE_SAMPLE_SIZE", 10000)
	v.SetDefault("ANNOTATE_PREVIEW_ROWS", 5)
	v.SetDefault("ANNOTATE_TOP_PRODUCTS", 5)
	v.SetDefault("CHART_PATH", "score_distribution.html")
	v.SetDefault("EXPLORER_SOURCE", SourceCSV)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 900)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("REMOTE_RPS", 5)
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("STORE_DRIVER must be sqlite or mysql, got %q", c.StoreDriver)
	}
	switch c.ExplorerSource {
	case SourceCSV, SourceStore:
	default:
		return fmt.Errorf("EXPLORER_SOURCE must be csv or store, got %q", c.ExplorerSource)
	}
	if !reIdent.MatchString(c.StoreTable) {
		return fmt.Errorf("STORE_TABLE %q is not a valid identifier", c.StoreTable)
	}
	if c.SampleSize <= 0 {
		return errors.New("ANNOTATE_SAMPLE_SIZE must be positive")
	}
	if c.SourcePath == "" {
		return errors.New("SOURCE_PATH is required")
	}
	return nil
}
