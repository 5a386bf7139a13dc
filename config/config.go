package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger         `mapstructure:"logger"`
	DB         Database       `mapstructure:"database"`
	API        API            `mapstructure:"api"`
	TradingAPI TradingAPI     `mapstructure:"trading_api"`
	Poller     Poller         `mapstructure:"poller"`
	Cache      Cache          `mapstructure:"cache"`
	Optimize   Optimize       `mapstructure:"optimize"`
	Journal    Journal        `mapstructure:"journal"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port            int `mapstructure:"port"`
	RateLimitPerSec int `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int `mapstructure:"rate_limit_burst"`
}

// TradingAPI configures the upstream trading/backtest service this
// dashboard reads from.
type TradingAPI struct {
	BaseURL          string        `mapstructure:"base_url"`
	Token            string        `mapstructure:"token"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	DefaultStrategy  string        `mapstructure:"default_strategy"`
	DefaultDays      int           `mapstructure:"default_days"`
}

type Poller struct {
	StatusSpec       string        `mapstructure:"status_spec"`
	MetricsSpec      string        `mapstructure:"metrics_spec"`
	CleanupSpec      string        `mapstructure:"cleanup_spec"`
	JournalRetention time.Duration `mapstructure:"journal_retention"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Optimize struct {
	// Suggestions at or above this confidence are preselected on load.
	PreselectConfidence float64 `mapstructure:"preselect_confidence"`
}

type Journal struct {
	Enabled      bool `mapstructure:"enabled"`
	HistoryLimit int  `mapstructure:"history_limit"`
}

type TelegramConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	BotToken            string        `mapstructure:"bot_token"`
	ChatID              string        `mapstructure:"chat_id"`
	TimeoutDuration     time.Duration `mapstructure:"timeout_duration"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.rate_limit_per_sec", 10)
	viper.SetDefault("api.rate_limit_burst", 30)
	viper.SetDefault("trading_api.timeout", 15*time.Second)
	viper.SetDefault("trading_api.max_request_per_min", 60)
	viper.SetDefault("trading_api.default_strategy", "ORB")
	viper.SetDefault("trading_api.default_days", 30)
	viper.SetDefault("poller.status_spec", "@every 30s")
	viper.SetDefault("poller.metrics_spec", "@every 5m")
	viper.SetDefault("poller.cleanup_spec", "@daily")
	viper.SetDefault("poller.journal_retention", 90*24*time.Hour)
	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("optimize.preselect_confidence", 0.7)
	viper.SetDefault("journal.enabled", true)
	viper.SetDefault("journal.history_limit", 50)
	viper.SetDefault("telegram.max_request_per_second", 1)
	viper.SetDefault("telegram.timeout_duration", 10*time.Second)
}
