package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	SeenSet  SeenSetConfig  `mapstructure:"seenset"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds the history database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ScraperConfig holds source-site scraping configuration.
type ScraperConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	ListingPath     string        `mapstructure:"listing_path"`
	MaxFilms        int           `mapstructure:"max_films"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	FetchDelay      time.Duration `mapstructure:"fetch_delay"`
	UseBrowser      bool          `mapstructure:"use_browser"`
	ProfilePath     string        `mapstructure:"profile_path"`
	DefaultLanguage string        `mapstructure:"default_language"`
}

// SeenSetConfig holds seen-set persistence configuration.
type SeenSetConfig struct {
	Path            string `mapstructure:"path"`
	MaxTrackedFilms int    `mapstructure:"max_tracked_films"`
}

// TelegramConfig holds Telegram publisher configuration.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	TopicID  int64  `mapstructure:"topic_id"`
	Silent   bool   `mapstructure:"silent"`
}

// SyncConfig holds sync scheduling configuration.
type SyncConfig struct {
	Cron         string        `mapstructure:"cron"`
	RunOnStart   bool          `mapstructure:"run_on_start"`
	PublishDelay time.Duration `mapstructure:"publish_delay"`
}

// ListingURL returns the absolute URL of the listing page.
func (c *ScraperConfig) ListingURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ListingPath
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// Optional .env file for secrets (bot token, chat id)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.filmrelay")
	}

	v.SetEnvPrefix("FILMRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url is required")
	}
	if c.Scraper.MaxFilms < 1 {
		return fmt.Errorf("scraper.max_films must be at least 1")
	}
	if c.SeenSet.MaxTrackedFilms < 1 {
		return fmt.Errorf("seenset.max_tracked_films must be at least 1")
	}
	return nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8484)

	v.SetDefault("database.path", "./data/filmrelay.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("scraper.base_url", "https://www.1tamilmv.fi")
	v.SetDefault("scraper.listing_path", "/index.php?/forums/forum/11-web-hd-itunes-hd-bluray/")
	v.SetDefault("scraper.max_films", 15)
	v.SetDefault("scraper.fetch_timeout", 30*time.Second)
	v.SetDefault("scraper.fetch_delay", 2*time.Second)
	v.SetDefault("scraper.use_browser", false)
	v.SetDefault("scraper.profile_path", "")
	v.SetDefault("scraper.default_language", "Tamil")

	v.SetDefault("seenset.path", "./data/seen_films.json")
	v.SetDefault("seenset.max_tracked_films", 300)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.topic_id", 0)
	v.SetDefault("telegram.silent", false)

	v.SetDefault("sync.cron", "*/30 * * * *")
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("sync.publish_delay", 3*time.Second)
}
