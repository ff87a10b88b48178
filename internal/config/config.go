package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// ErrMissingStoreCredentials is returned when the selected store backend
// lacks the identifiers it needs. The run must abort before any I/O.
var ErrMissingStoreCredentials = errors.New("missing store credentials")

// Config holds all application configuration. It is loaded once and passed
// by value into the components that need it.
type Config struct {
	Store       StoreConfig         `toml:"store"`
	Notion      NotionConfig        `toml:"notion"`
	AI          AIConfig            `toml:"ai"`
	Translation TranslationConfig   `toml:"translation"`
	Pipeline    PipelineConfig      `toml:"pipeline"`
	Schedule    ScheduleConfig      `toml:"schedule"`
	Server      ServerConfig        `toml:"server"`
	Logging     LoggingConfig       `toml:"logging"`
	Sources     []models.FeedSource `toml:"sources"`
}

// StoreConfig selects the persisted store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"` // "sqlite" | "notion"
	SQLitePath string `toml:"sqlite_path"`
}

// NotionConfig holds Notion API credentials and database identifiers.
type NotionConfig struct {
	Token         string `toml:"token"`
	DatabaseID    string `toml:"database_id"`
	LogDatabaseID string `toml:"log_database_id"`
	APIVersion    string `toml:"api_version"`
}

// AIConfig holds analysis provider settings.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// TranslationConfig holds title translation settings.
type TranslationConfig struct {
	Provider       string `toml:"provider"` // "ai" | "libretranslate" | "none"
	TargetLanguage string `toml:"target_language"`
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
}

// PipelineConfig holds the knobs of the ingestion run.
type PipelineConfig struct {
	MaxEntries          int  `toml:"max_entries"`
	WindowDays          int  `toml:"window_days"`
	RateLimitSeconds    int  `toml:"rate_limit_seconds"`
	AbortOnPartialIndex bool `toml:"abort_on_partial_index"`
	ExtractFullText     bool `toml:"extract_full_text"`
	FetchTimeoutSeconds int  `toml:"fetch_timeout_seconds"`
}

// Window returns the recency window as a duration.
func (p PipelineConfig) Window() time.Duration {
	return time.Duration(p.WindowDays) * 24 * time.Hour
}

// RateLimit returns the fixed inter-cycle delay.
func (p PipelineConfig) RateLimit() time.Duration {
	return time.Duration(p.RateLimitSeconds) * time.Second
}

// FetchTimeout returns the per-feed HTTP timeout.
func (p PipelineConfig) FetchTimeout() time.Duration {
	return time.Duration(p.FetchTimeoutSeconds) * time.Second
}

// ScheduleConfig controls periodic runs.
type ScheduleConfig struct {
	Cron string `toml:"cron"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultBackend        = "sqlite"
	defaultSQLitePath     = "./data/rssdaily.db"
	defaultNotionVersion  = "2022-06-28"
	defaultAIProvider     = "openai"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultClaudeModel    = "claude-haiku-4-5"
	defaultTargetLanguage = "zh-TW"
	defaultMaxEntries     = 80
	defaultWindowDays     = 30
	defaultRateLimit      = 2
	defaultFetchTimeout   = 30
	defaultCron           = "@every 6h"
	defaultPort           = 8080
)

// defaultSources are the feeds of the original C-level daily digest.
var defaultSources = []models.FeedSource{
	{Name: "Bloomberg", URL: "https://www.bloomberg.com/feed", Role: "CEO", Category: "全球財經"},
	{Name: "Supply Chain Dive", URL: "https://www.supplychaindive.com/feeds/news/", Role: "COO", Category: "供應鏈動態"},
	{Name: "CFO Dive", URL: "https://www.cfodive.com/feeds/news/", Role: "CFO", Category: "財務與會計策略"},
	{Name: "InfoQ", URL: "https://feed.infoq.com/", Role: "CTO", Category: "技術策略"},
	{Name: "CIO", URL: "https://www.cio.com/index.rss", Role: "CIO", Category: "資安治理"},
}

const defaultConfigContent = `[store]
backend = "sqlite"                # "sqlite" or "notion"
sqlite_path = "./data/rssdaily.db"

[notion]
token = ""                        # or set NOTION_TOKEN
database_id = ""                  # or set NOTION_DATABASE_ID
log_database_id = ""              # optional, or set NOTION_LOG_DATABASE_ID

[ai]
provider = "openai"               # "openai" or "anthropic"
api_key = ""                      # or set AI_API_KEY
model = "gpt-4o-mini"

[translation]
provider = "ai"                   # "ai", "libretranslate" or "none"
target_language = "zh-TW"

[pipeline]
max_entries = 80
window_days = 30
rate_limit_seconds = 2
abort_on_partial_index = false
extract_full_text = false

[schedule]
cron = "@every 6h"

[server]
enabled = true
port = 8080

[logging]
level = "info"
format = "text"

[[sources]]
name = "Bloomberg"
url = "https://www.bloomberg.com/feed"
role = "CEO"
category = "全球財經"

[[sources]]
name = "Supply Chain Dive"
url = "https://www.supplychaindive.com/feeds/news/"
role = "COO"
category = "供應鏈動態"

[[sources]]
name = "CFO Dive"
url = "https://www.cfodive.com/feeds/news/"
role = "CFO"
category = "財務與會計策略"

[[sources]]
name = "InfoQ"
url = "https://feed.infoq.com/"
role = "CTO"
category = "技術策略"

[[sources]]
name = "CIO"
url = "https://www.cio.com/index.rss"
role = "CIO"
category = "資安治理"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(string(data))
}

// Parse decodes TOML content and applies defaults, env overrides and
// validation in the same order as Load.
func Parse(content string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// "max_entries = 0" is an error rather than silently becoming 80.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("pipeline", "max_entries") && cfg.Pipeline.MaxEntries < 1 {
		return fmt.Errorf("invalid pipeline.max_entries %d: must be >= 1", cfg.Pipeline.MaxEntries)
	}
	if md.IsDefined("pipeline", "window_days") && cfg.Pipeline.WindowDays < 1 {
		return fmt.Errorf("invalid pipeline.window_days %d: must be >= 1", cfg.Pipeline.WindowDays)
	}
	if md.IsDefined("pipeline", "rate_limit_seconds") && cfg.Pipeline.RateLimitSeconds < 0 {
		return fmt.Errorf("invalid pipeline.rate_limit_seconds %d: must be >= 0", cfg.Pipeline.RateLimitSeconds)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = defaultBackend
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = defaultSQLitePath
	}
	if cfg.Notion.APIVersion == "" {
		cfg.Notion.APIVersion = defaultNotionVersion
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = defaultAIProvider
	}
	if cfg.AI.Model == "" {
		if cfg.AI.Provider == "anthropic" {
			cfg.AI.Model = defaultClaudeModel
		} else {
			cfg.AI.Model = defaultOpenAIModel
		}
	}
	if cfg.Translation.Provider == "" {
		cfg.Translation.Provider = "ai"
	}
	if cfg.Translation.TargetLanguage == "" {
		cfg.Translation.TargetLanguage = defaultTargetLanguage
	}
	if cfg.Pipeline.MaxEntries == 0 {
		cfg.Pipeline.MaxEntries = defaultMaxEntries
	}
	if cfg.Pipeline.WindowDays == 0 {
		cfg.Pipeline.WindowDays = defaultWindowDays
	}
	// An explicit 0 disables the delay; only a missing key gets the default.
	if !md.IsDefined("pipeline", "rate_limit_seconds") {
		cfg.Pipeline.RateLimitSeconds = defaultRateLimit
	}
	if cfg.Pipeline.FetchTimeoutSeconds <= 0 {
		cfg.Pipeline.FetchTimeoutSeconds = defaultFetchTimeout
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = defaultCron
	}
	if !md.IsDefined("server", "enabled") {
		cfg.Server.Enabled = true
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]models.FeedSource(nil), defaultSources...)
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. OPENAI_API_KEY (when provider is "openai")
//  3. ANTHROPIC_API_KEY (when provider is "anthropic")
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		cfg.Notion.DatabaseID = v
	}
	if v := os.Getenv("NOTION_LOG_DATABASE_ID"); v != "" {
		cfg.Notion.LogDatabaseID = v
	}

	switch cfg.AI.Provider {
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("TRANSLATE_API_KEY"); v != "" {
		cfg.Translation.APIKey = v
	}

	if v := os.Getenv("MAX_ENTRIES_PER_RUN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid MAX_ENTRIES_PER_RUN %q: must be a positive integer", v)
		}
		cfg.Pipeline.MaxEntries = n
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\" or \"anthropic\"", cfg.AI.Provider)
	}

	switch cfg.Translation.Provider {
	case "ai", "none":
	case "libretranslate":
		if cfg.Translation.Endpoint == "" {
			return fmt.Errorf("translation.endpoint is required for the libretranslate provider")
		}
	default:
		return fmt.Errorf("invalid translation.provider %q: must be \"ai\", \"libretranslate\" or \"none\"", cfg.Translation.Provider)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: must be \"text\" or \"json\"", cfg.Logging.Format)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	for i, src := range cfg.Sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("invalid sources[%d]: name and url are required", i)
		}
	}

	switch cfg.Store.Backend {
	case "sqlite":
	case "notion":
		if cfg.Notion.Token == "" {
			return fmt.Errorf("%w: notion.token (NOTION_TOKEN) is not set", ErrMissingStoreCredentials)
		}
		if cfg.Notion.DatabaseID == "" {
			return fmt.Errorf("%w: notion.database_id (NOTION_DATABASE_ID) is not set", ErrMissingStoreCredentials)
		}
	default:
		return fmt.Errorf("invalid store.backend %q: must be \"sqlite\" or \"notion\"", cfg.Store.Backend)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: analysis will be skipped for every item")
	}

	return nil
}
