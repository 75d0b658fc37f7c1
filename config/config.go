package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the search fusion engine.
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	Server  ServerConfig  `mapstructure:"server"`
	Sources SourcesConfig `mapstructure:"sources"`
	Fusion  FusionConfig  `mapstructure:"fusion"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings. When JWTSecret is set the
// search API requires a bearer token.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// SourcesConfig carries per-provider credentials. A provider with no
// credential is simply unavailable, never an error.
type SourcesConfig struct {
	Tavily   TavilyConfig   `mapstructure:"tavily"`
	Linkup   LinkupConfig   `mapstructure:"linkup"`
	Brave    BraveConfig    `mapstructure:"brave"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	SEC      SECConfig      `mapstructure:"sec"`
	OpenAlex OpenAlexConfig `mapstructure:"openalex"`
}

type TavilyConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	SearchDepth string `mapstructure:"search_depth"` // basic or advanced
}

type LinkupConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

type BraveConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

type YouTubeConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// SECConfig configures EDGAR full-text search. EDGAR has no API key but
// requires a descriptive User-Agent; the adapter is unavailable without one.
type SECConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	Endpoint  string `mapstructure:"endpoint"`
}

// OpenAlexConfig configures the OpenAlex works API. MailTo joins the polite
// pool; the adapter is unavailable without it.
type OpenAlexConfig struct {
	MailTo   string `mapstructure:"mail_to"`
	Endpoint string `mapstructure:"endpoint"`
}

// FusionConfig tunes the orchestrator and ranker.
type FusionConfig struct {
	Deadline             time.Duration      `mapstructure:"deadline"`
	MaxConcurrent        int                `mapstructure:"max_concurrent"`
	TrustWeights         map[string]float64 `mapstructure:"trust_weights"`
	RecencyHalfLifeHours float64            `mapstructure:"recency_half_life_hours"`
	RerankTopK           int                `mapstructure:"rerank_top_k"`
}

// CacheConfig selects the cache backend and TTL classes.
type CacheConfig struct {
	Backend        string        `mapstructure:"backend"` // postgres or redis
	NewsTTL        time.Duration `mapstructure:"news_ttl"`
	FundingTTL     time.Duration `mapstructure:"funding_ttl"`
	BackgroundTTL  time.Duration `mapstructure:"background_ttl"`
	DefaultTTL     time.Duration `mapstructure:"default_ttl"`
	SweepSchedule  string        `mapstructure:"sweep_schedule"`
	SweepBatchSize int           `mapstructure:"sweep_batch_size"`
}

// StorageConfig contains connection settings for the cache stores.
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a postgres connection string, preferring an explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "", "postgres", "redis":
		return nil
	}
	return fmt.Errorf("cache.backend must be postgres or redis, got %q", c.Backend)
}

// Load reads configuration from the given file (or the default search paths)
// with SEARCHFUSION_* environment overrides. Missing config files are fine;
// defaults and env cover the minimal setup.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SEARCHFUSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":10020")

	v.SetDefault("sources.tavily.endpoint", "https://api.tavily.com/search")
	v.SetDefault("sources.tavily.search_depth", "basic")
	v.SetDefault("sources.linkup.endpoint", "https://api.linkup.so/v1/search")
	v.SetDefault("sources.brave.endpoint", "https://api.search.brave.com/res/v1/web/search")
	v.SetDefault("sources.youtube.endpoint", "https://www.googleapis.com/youtube/v3/search")
	v.SetDefault("sources.sec.endpoint", "https://efts.sec.gov/LATEST/search-index")
	v.SetDefault("sources.openalex.endpoint", "https://api.openalex.org/works")

	v.SetDefault("fusion.deadline", 10*time.Second)
	v.SetDefault("fusion.max_concurrent", 8)
	v.SetDefault("fusion.recency_half_life_hours", 72.0)
	v.SetDefault("fusion.rerank_top_k", 20)

	v.SetDefault("cache.backend", "postgres")
	v.SetDefault("cache.news_ttl", 6*time.Hour)
	v.SetDefault("cache.funding_ttl", 24*time.Hour)
	v.SetDefault("cache.background_ttl", 7*24*time.Hour)
	v.SetDefault("cache.default_ttl", 24*time.Hour)
	v.SetDefault("cache.sweep_schedule", "*/10 * * * *")
	v.SetDefault("cache.sweep_batch_size", 200)

	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
}
