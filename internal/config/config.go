package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"         validate:"required"`
	Mail         MailConfig         `mapstructure:"mail"         validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
}

// ServerConfig contains HTTP server settings.
//
// Debug gates the diagnostic responses that echo verification tokens and
// session tokens in response bodies; it must never be enabled in
// production.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	BaseURL  string `mapstructure:"base_url"  validate:"required,url"`
	Debug    bool   `mapstructure:"debug"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains settings for the Redis instance backing the
// verification token cache. When Addr is empty the application falls back
// to the in-process cache, which is only suitable for single-node
// deployments.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig contains authentication and token settings.
//
// RefreshReissueLifetimeDays intentionally differs from
// RefreshTokenLifetimeDays: a refresh performed through the refresh
// endpoint re-emits the same refresh token in a cookie with a shorter
// window. See the auth handler for details.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	AccessTokenLifetimeMinutes  int    `mapstructure:"access_token_lifetime_minutes"  validate:"required,gt=0"`
	RefreshTokenLifetimeDays    int    `mapstructure:"refresh_token_lifetime_days"    validate:"required,gt=0"`
	RefreshReissueLifetimeDays  int    `mapstructure:"refresh_reissue_lifetime_days"  validate:"required,gt=0"`
	AccessCookieName            string `mapstructure:"access_cookie_name"             validate:"required"`
	ResetTokenLifetimeHours     int    `mapstructure:"reset_token_lifetime_hours"     validate:"required,gt=0"`
	VerificationTokenTTLMinutes int    `mapstructure:"verification_token_ttl_minutes" validate:"required,gt=0"`
}

// MailConfig contains SMTP transport settings.
type MailConfig struct {
	Host        string `mapstructure:"host"         validate:"required"`
	Port        int    `mapstructure:"port"         validate:"required,gt=0,lt=65536"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Encryption  string `mapstructure:"encryption"   validate:"oneof=tls starttls ssl none"`
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
	FromName    string `mapstructure:"from_name"`
}

// NotificationConfig contains settings for the async email dispatcher and
// the periodic deadline scanner.
type NotificationConfig struct {
	ScanInterval        time.Duration `mapstructure:"scan_interval"         validate:"required"`
	DeadlineWindow      time.Duration `mapstructure:"deadline_window"       validate:"required"`
	MaxAttempts         int           `mapstructure:"max_attempts"          validate:"required,gt=0"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
	QueueSize           int           `mapstructure:"queue_size"            validate:"required,gt=0"`
	WorkersPerLane      int           `mapstructure:"workers_per_lane"      validate:"required,gt=0"`
	PurgeInterval       time.Duration `mapstructure:"purge_interval"        validate:"required"`
	PurgeUnconfirmedAge time.Duration `mapstructure:"purge_unconfirmed_age" validate:"required"`
}

// AccessTokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) AccessTokenLifetime() time.Duration {
	return time.Duration(c.AccessTokenLifetimeMinutes) * time.Minute
}

// RefreshTokenLifetime returns the refresh token lifetime as a duration.
func (c AuthConfig) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeDays) * 24 * time.Hour
}

// RefreshReissueLifetime returns the cookie window applied when a refresh
// token is re-emitted by the refresh endpoint.
func (c AuthConfig) RefreshReissueLifetime() time.Duration {
	return time.Duration(c.RefreshReissueLifetimeDays) * 24 * time.Hour
}

// ResetTokenLifetime returns the password reset token lifetime.
func (c AuthConfig) ResetTokenLifetime() time.Duration {
	return time.Duration(c.ResetTokenLifetimeHours) * time.Hour
}

// VerificationTokenTTL returns the email verification token TTL.
func (c AuthConfig) VerificationTokenTTL() time.Duration {
	return time.Duration(c.VerificationTokenTTLMinutes) * time.Minute
}
