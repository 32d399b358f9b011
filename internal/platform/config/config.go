package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevJWTSecret is used when no secret is configured. main logs a warning when it is in effect.
const DevJWTSecret = "dev-secret-key-change-in-production"

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	BodyLimitBytes int64         `mapstructure:"body_limit_bytes"`
	Environment    string        `mapstructure:"environment"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig selects the store backend. An empty URL keeps all state in memory.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type JWTConfig struct {
	Secret              string        `mapstructure:"secret"`
	Issuer              string        `mapstructure:"issuer"`
	AccessExpirationMs  int64         `mapstructure:"access_expiration_ms"`
	RefreshExpirationMs int64         `mapstructure:"refresh_expiration_ms"`
	ClockSkew           time.Duration `mapstructure:"clock_skew"`
}

// AccessTTL converts the configured access expiration into a duration.
func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessExpirationMs) * time.Millisecond
}

// RefreshTTL converts the configured refresh expiration into a duration.
func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpirationMs) * time.Millisecond
}

type AuthConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminEmail    string `mapstructure:"admin_email"`
}

type CatalogConfig struct {
	PopularTracksThreshold  int `mapstructure:"popular_tracks_threshold"`
	PopularArtistsThreshold int `mapstructure:"popular_artists_threshold"`
}

// Load reads configuration from an optional YAML file and RHYM_* environment variables.
// With an empty path, ./config.yaml and ./config/config.yaml are tried.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RHYM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("log.level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("jwt.secret", DevJWTSecret)
	v.SetDefault("jwt.issuer", "rhymcaffer")
	v.SetDefault("jwt.access_expiration_ms", 900000)
	v.SetDefault("jwt.refresh_expiration_ms", 604800000)
	v.SetDefault("jwt.clock_skew", 30*time.Second)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_email", "")

	v.SetDefault("catalog.popular_tracks_threshold", 70)
	v.SetDefault("catalog.popular_artists_threshold", 0)
}

func (c *Config) validate() error {
	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret must not be empty")
	case c.JWT.AccessExpirationMs <= 0 || c.JWT.RefreshExpirationMs <= 0:
		return errors.New("jwt expirations must be positive")
	case c.JWT.ClockSkew < 0:
		return errors.New("jwt.clock_skew must not be negative")
	case c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31:
		return fmt.Errorf("auth.bcrypt_cost %d out of range [4,31]", c.Auth.BcryptCost)
	case c.Auth.AdminUsername != "" && c.Auth.AdminPassword == "":
		return errors.New("auth.admin_password is required when auth.admin_username is set")
	}
	return nil
}
