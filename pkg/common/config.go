package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the safetrack service.
type Config struct {
	HTTPHostPort string `mapstructure:"http_host_port"`
	GrpcHostPort string `mapstructure:"grpc_host_port"`

	TelemetryURL      string        `mapstructure:"telemetry_url"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	FreshnessInterval time.Duration `mapstructure:"freshness_interval"`
	StaleAfter        time.Duration `mapstructure:"stale_after"`
	HistoryPerDevice  int           `mapstructure:"history_per_device"`
	AutoRefresh       bool          `mapstructure:"auto_refresh"`

	MaxActiveAlerts   int `mapstructure:"max_active_alerts"`
	MaxArchivedAlerts int `mapstructure:"max_archived_alerts"`
	CleanupDays       int `mapstructure:"cleanup_days"`

	// StoreBackend is one of memory, file, redis, postgres.
	StoreBackend  string `mapstructure:"store_backend"`
	DBPath        string `mapstructure:"db_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	PostgresURL   string `mapstructure:"postgres_url"`

	EmailEndpoint   string        `mapstructure:"email_endpoint"`
	EmailServiceID  string        `mapstructure:"email_service_id"`
	EmailTemplateID string        `mapstructure:"email_template_id"`
	EmailPublicKey  string        `mapstructure:"email_public_key"`
	EmailTo         string        `mapstructure:"email_to"`
	BulkSendDelay   time.Duration `mapstructure:"bulk_send_delay"`

	ExportPrefix string `mapstructure:"export_prefix"`

	DefaultRate  float64 `mapstructure:"default_rate"`
	DefaultBurst int     `mapstructure:"default_burst"`

	AdminUser string `mapstructure:"admin_user"`
	AdminPass string `mapstructure:"admin_pass"`

	LogDir string `mapstructure:"log_dir"`
}

var validBackends = map[string]bool{"memory": true, "file": true, "redis": true, "postgres": true}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("http_host_port", ":1080")
	v.SetDefault("grpc_host_port", "")

	v.SetDefault("telemetry_url", "http://127.0.0.1:1090/telemetry")
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("cache_ttl", 3*time.Second)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("freshness_interval", 2*time.Second)
	v.SetDefault("stale_after", 10*time.Second)
	v.SetDefault("history_per_device", 100)
	v.SetDefault("auto_refresh", true)

	v.SetDefault("max_active_alerts", 1000)
	v.SetDefault("max_archived_alerts", 5000)
	v.SetDefault("cleanup_days", 30)

	v.SetDefault("store_backend", "file")
	v.SetDefault("db_path", "safetrack.db")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("postgres_url", "")

	v.SetDefault("email_endpoint", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("email_service_id", "")
	v.SetDefault("email_template_id", "")
	v.SetDefault("email_public_key", "")
	v.SetDefault("email_to", "")
	v.SetDefault("bulk_send_delay", time.Second)

	v.SetDefault("export_prefix", "safetrack-alerts")

	v.SetDefault("default_rate", 20.0)
	v.SetDefault("default_burst", 40)

	// an empty admin_user disables login until one is configured
	v.SetDefault("admin_user", "")
	v.SetDefault("admin_pass", "")

	v.SetDefault("log_dir", "")
}

// LoadConfig reads .env (optional), then safetrack.yaml from the working
// directory or $HOME/.safetrack (optional), then SAFETRACK_* environment
// variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setConfigDefaults(v)

	v.SetConfigName("safetrack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.safetrack")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !validBackends[c.StoreBackend] {
		return fmt.Errorf("invalid store_backend %q, should be one of memory, file, redis, postgres", c.StoreBackend)
	}
	if c.StoreBackend == "postgres" && c.PostgresURL == "" {
		return errors.New("postgres_url is required when store_backend is postgres")
	}
	if c.MaxActiveAlerts <= 0 || c.MaxArchivedAlerts <= 0 {
		return errors.New("max_active_alerts and max_archived_alerts must be positive")
	}
	if c.MaxArchivedAlerts < c.MaxActiveAlerts {
		return errors.New("max_archived_alerts must not be smaller than max_active_alerts")
	}
	if c.PollInterval <= 0 || c.FreshnessInterval <= 0 || c.FetchTimeout <= 0 {
		return errors.New("poll_interval, freshness_interval and fetch_timeout must be positive")
	}
	return nil
}
