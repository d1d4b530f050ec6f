package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Records   RecordsConfig   `mapstructure:"records"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Poller    PollerConfig    `mapstructure:"poller"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RecordsConfig points the console at the external records service.
type RecordsConfig struct {
	BaseURL     string        `mapstructure:"base_url" envconfig:"RECORDS_BASE_URL"`
	Timeout     time.Duration `mapstructure:"timeout" envconfig:"RECORDS_TIMEOUT"`
	MaxFailures int           `mapstructure:"max_failures"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
}

type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size" envconfig:"UPLOAD_MAX_FILE_SIZE"`
}

type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval" envconfig:"POLLER_INTERVAL"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
	MetricsPort int           `mapstructure:"metrics_port"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type SMTPConfig struct {
	Host     string   `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int      `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string   `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string   `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string   `mapstructure:"from"`
	AlertTo  []string `mapstructure:"alert_to"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty"`
}

// LoadConfig reads config.yaml (working dir or ./config), then applies
// CONSOLE_* environment overrides on top.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, defaults plus env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("console", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if cfg.Records.BaseURL == "" {
		return nil, fmt.Errorf("records.base_url is required")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.request_timeout", 30*time.Second)

	viper.SetDefault("records.base_url", "http://localhost:5000")
	viper.SetDefault("records.timeout", 30*time.Second)
	viper.SetDefault("records.max_failures", 5)
	viper.SetDefault("records.cooldown", 10*time.Second)

	viper.SetDefault("upload.max_file_size", int64(10<<20))

	viper.SetDefault("poller.interval", 15*time.Second)
	viper.SetDefault("poller.max_backoff", 4*time.Minute)
	viper.SetDefault("poller.metrics_port", 9091)

	viper.SetDefault("rate_limit.rps", 50.0)
	viper.SetDefault("rate_limit.burst", 100)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)
}
