package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. TASKFLOW_SERVER_PORT maps to server.port.
const envPrefix = "TASKFLOW"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables use the TASKFLOW_ prefix
// with underscores separating nested keys.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for every known key. Registering a
// default is also what makes AutomaticEnv pick the key up during
// Unmarshal, so every key must appear here even when its default is the
// zero value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.debug", false)

	v.SetDefault("database.url", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_lifetime_minutes", 15)
	v.SetDefault("auth.refresh_token_lifetime_days", 7)
	v.SetDefault("auth.refresh_reissue_lifetime_days", 1)
	v.SetDefault("auth.access_cookie_name", "access_token")
	v.SetDefault("auth.reset_token_lifetime_hours", 24)
	v.SetDefault("auth.verification_token_ttl_minutes", 10)

	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.encryption", "starttls")
	v.SetDefault("mail.from_address", "noreply@taskflow.local")
	v.SetDefault("mail.from_name", "Taskflow")

	v.SetDefault("notification.scan_interval", "5m")
	v.SetDefault("notification.deadline_window", "24h")
	v.SetDefault("notification.max_attempts", 3)
	v.SetDefault("notification.retry_backoff", "300s")
	v.SetDefault("notification.queue_size", 100)
	v.SetDefault("notification.workers_per_lane", 2)
	v.SetDefault("notification.purge_interval", "5m")
	v.SetDefault("notification.purge_unconfirmed_age", "5m")
}
