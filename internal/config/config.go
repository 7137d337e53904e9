package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	placeholderKey  = "your_api_key_here"

	configPathEnv       = "NEWS_SEARCH_CONFIG"
	newsAPIKeyEnv       = "NEWSAPI_KEY"
	outputDirEnv        = "OUTPUT_DIR"
	databaseDriverEnv   = "DATABASE_DRIVER"
	databaseDSNEnv      = "DATABASE_DSN"
	nlpInferenceURLEnv  = "NLP_INFERENCE_URL"
	summarizerProvEnv   = "SUMMARIZER_PROVIDER"
	summarizerKeyEnv    = "SUMMARIZER_API_KEY"
	summarizerModelEnv  = "SUMMARIZER_MODEL"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	logLevelEnv         = "LOG_LEVEL"
	httpAddrEnv         = "HTTP_ADDR"
	sourceEnv           = "NEWS_SOURCE"
	displayLanguageEnv  = "NEWS_LANGUAGE"
	summaryMaxLengthEnv = "SUMMARY_MAX_LENGTH"
)

// ErrMissingNewsAPIKey is returned by Validate when NewsAPI is the source and no key is set.
var ErrMissingNewsAPIKey = errors.New("NewsAPI key not found or not set; set NEWSAPI_KEY (get a free key from https://newsapi.org/register)")

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Source     string           `yaml:"source"` // comma-separated source names
	NewsAPI    NewsAPIConfig    `yaml:"newsapi"`
	Feeds      FeedsConfig      `yaml:"feeds"`
	Output     OutputConfig     `yaml:"output"`
	Display    DisplayConfig    `yaml:"display"`
	NLP        NLPConfig        `yaml:"nlp"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Server     ServerConfig     `yaml:"server"`
	Watch      WatchConfig      `yaml:"watch"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewsAPIConfig describes the newsapi.org article source.
type NewsAPIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	DaysBack int    `yaml:"daysBack"`
	PageSize int    `yaml:"pageSize"`
}

// FeedsConfig lists RSS/Atom feeds searched by the rss source.
type FeedsConfig struct {
	URLs []string `yaml:"urls"`
}

// OutputConfig groups the persistence sinks.
type OutputConfig struct {
	Dir      string         `yaml:"dir"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig describes an optional SQL sink. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// DisplayConfig controls how much of a search is analysed and shown.
type DisplayConfig struct {
	Language         string `yaml:"language"`
	TopN             int    `yaml:"topN"`
	SummaryMaxLength int    `yaml:"summaryMaxLength"`
}

// NLPConfig points at the named-entity inference service.
type NLPConfig struct {
	InferenceURL string            `yaml:"inferenceUrl"`
	APIKey       string            `yaml:"apiKey"`
	Models       map[string]string `yaml:"models"`
}

// SummarizerConfig selects the abstractive summarization provider.
type SummarizerConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// WatchConfig defines recurring searches.
type WatchConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Queries        []WatchQuery   `yaml:"queries"`
	location       *time.Location `yaml:"-"`
}

// WatchQuery is one recurring search.
type WatchQuery struct {
	Query    string `yaml:"query"`
	Language string `yaml:"language"`
}

// Location resolves the watch timezone string to a time.Location.
func (w WatchConfig) Location() *time.Location {
	if w.location != nil {
		return w.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// Load reads .env, the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Sources splits the comma-separated source setting.
func (c Config) Sources() []string {
	var names []string
	for _, name := range strings.Split(c.Source, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c Config) uses(source string) bool {
	for _, name := range c.Sources() {
		if name == source {
			return true
		}
	}
	return false
}

// Validate reports settings the application cannot start without.
func (c Config) Validate() error {
	if len(c.Sources()) == 0 {
		return fmt.Errorf("no article source configured")
	}
	if c.uses("newsapi") {
		key := strings.TrimSpace(c.NewsAPI.APIKey)
		if key == "" || key == placeholderKey {
			return ErrMissingNewsAPIKey
		}
	}
	if c.uses("rss") && len(c.Feeds.URLs) == 0 {
		return fmt.Errorf("source rss needs at least one feed url")
	}
	if c.Display.TopN <= 0 {
		return fmt.Errorf("display.topN must be positive, got %d", c.Display.TopN)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv(sourceEnv); v != "" {
		c.Source = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Output.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Output.Database.DSN = v
	}
	if v := os.Getenv(nlpInferenceURLEnv); v != "" {
		c.NLP.InferenceURL = v
	}
	if v := os.Getenv(summarizerProvEnv); v != "" {
		c.Summarizer.Provider = v
	}
	if v := os.Getenv(summarizerKeyEnv); v != "" {
		c.Summarizer.APIKey = v
	}
	if v := os.Getenv(summarizerModelEnv); v != "" {
		c.Summarizer.Model = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		} else {
			log.Printf("config: invalid %s %q: %v", telegramChatIDEnv, v, err)
		}
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(displayLanguageEnv); v != "" {
		c.Display.Language = v
	}
	if v := os.Getenv(summaryMaxLengthEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Display.SummaryMaxLength = n
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Watch.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Watch.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Source != "" {
		base.Source = override.Source
	}

	if override.NewsAPI.Endpoint != "" {
		base.NewsAPI.Endpoint = override.NewsAPI.Endpoint
	}
	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.DaysBack > 0 {
		base.NewsAPI.DaysBack = override.NewsAPI.DaysBack
	}
	if override.NewsAPI.PageSize > 0 {
		base.NewsAPI.PageSize = override.NewsAPI.PageSize
	}

	if len(override.Feeds.URLs) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if override.Output.Database.DSN != "" {
		base.Output.Database = override.Output.Database
	}

	if override.Display.Language != "" {
		base.Display.Language = override.Display.Language
	}
	if override.Display.TopN > 0 {
		base.Display.TopN = override.Display.TopN
	}
	if override.Display.SummaryMaxLength > 0 {
		base.Display.SummaryMaxLength = override.Display.SummaryMaxLength
	}

	if override.NLP.InferenceURL != "" {
		base.NLP.InferenceURL = override.NLP.InferenceURL
	}
	if override.NLP.APIKey != "" {
		base.NLP.APIKey = override.NLP.APIKey
	}
	for lang, model := range override.NLP.Models {
		base.NLP.Models[lang] = model
	}

	if override.Summarizer.Provider != "" {
		base.Summarizer.Provider = override.Summarizer.Provider
	}
	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}
	if override.Summarizer.Endpoint != "" {
		base.Summarizer.Endpoint = override.Summarizer.Endpoint
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.Watch.CronExpression != "" {
		base.Watch.CronExpression = override.Watch.CronExpression
	}
	if override.Watch.Timezone != "" {
		base.Watch.Timezone = override.Watch.Timezone
	}
	if len(override.Watch.Queries) > 0 {
		base.Watch.Queries = override.Watch.Queries
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != 0 {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Source:  "newsapi",
		NewsAPI: NewsAPIConfig{
			Endpoint: "https://newsapi.org",
			DaysBack: 30,
			PageSize: 100,
		},
		Output: OutputConfig{Dir: "."},
		Display: DisplayConfig{
			Language:         "en",
			TopN:             15,
			SummaryMaxLength: 150,
		},
		NLP: NLPConfig{
			InferenceURL: "http://localhost:8000",
			Models: map[string]string{
				"en": "en_core_web_sm",
				"de": "de_core_news_sm",
			},
		},
		Summarizer: SummarizerConfig{
			Provider: "http",
			Endpoint: "http://localhost:8000",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Watch: WatchConfig{
			CronExpression: "0 7 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
	}
}
