// Package config loads runtime settings from configs/config.yml and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevSecret signs cookies when no secret is configured. Rejected in production.
const DevSecret = "dev-secret-change-me"

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port       string
	Production bool
	Log        LogConfig
	Storage    StorageConfig
	Session    SessionConfig
	DB         DBConfig
	Redis      RedisConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers
	// decide the client IP. Empty means the peer address is always used.
	TrustedProxies []string
}

type LogConfig struct {
	Level string
}

// StorageConfig locates the JSON record files.
type StorageConfig struct {
	Dir string
}

type SessionConfig struct {
	Secret          string
	TTL             time.Duration
	Store           string
	CookieName      string
	JanitorInterval time.Duration
}

// DBConfig is the SQLite session database.
type DBConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig is the single administrator credential pair.
type AdminConfig struct {
	Username string
	Password string
}

// RateLimitConfig bounds credential and anonymous submission posts per client IP.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

var envBindings = map[string][]string{
	"port":                     {"PORT"},
	"env":                      {"APP_ENV", "NODE_ENV"},
	"log.level":                {"LOG_LEVEL"},
	"storage.dir":              {"DATA_DIR"},
	"session.secret":           {"SECRET_KEY"},
	"session.ttl":              {"SESSION_TTL"},
	"session.store":            {"SESSION_STORE"},
	"session.cookie_name":      {"SESSION_COOKIE_NAME"},
	"session.janitor_interval": {"SESSION_JANITOR_INTERVAL"},
	"db.path":                  {"DB_PATH"},
	"redis.addr":               {"REDIS_ADDR"},
	"redis.password":           {"REDIS_PASSWORD"},
	"redis.db":                 {"REDIS_DB"},
	"admin.username":           {"ADMIN_USERNAME"},
	"admin.password":           {"ADMIN_PASSWORD"},
	"ratelimit.enabled":        {"RATE_LIMIT_ENABLED"},
	"ratelimit.rps":            {"RATE_LIMIT_RPS"},
	"ratelimit.burst":          {"RATE_LIMIT_BURST"},
	"trusted_proxies":          {"TRUSTED_PROXIES"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.dir", "instance")
	v.SetDefault("session.secret", DevSecret)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.cookie_name", "anonbox.sid")
	v.SetDefault("session.janitor_interval", "10m")
	v.SetDefault("db.path", "instance/sessions.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)
}

// Load reads configs/config.yml from the working directory when present.
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom reads config.yml from dir. A missing file is not an error.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:       v.GetString("port"),
		Production: strings.EqualFold(v.GetString("env"), "production"),
		Log:        LogConfig{Level: v.GetString("log.level")},
		Storage:    StorageConfig{Dir: v.GetString("storage.dir")},
		Session: SessionConfig{
			Secret:          v.GetString("session.secret"),
			TTL:             v.GetDuration("session.ttl"),
			Store:           strings.ToLower(v.GetString("session.store")),
			CookieName:      v.GetString("session.cookie_name"),
			JanitorInterval: v.GetDuration("session.janitor_interval"),
		},
		DB: DBConfig{Path: v.GetString("db.path")},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Admin: AdminConfig{
			Username: v.GetString("admin.username"),
			Password: v.GetString("admin.password"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("ratelimit.enabled"),
			RPS:     v.GetFloat64("ratelimit.rps"),
			Burst:   v.GetInt("ratelimit.burst"),
		},
		TrustedProxies: splitList(v.GetStringSlice("trusted_proxies")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is empty")
	}
	if c.Production && c.Session.Secret == DevSecret {
		return errors.New("SECRET_KEY must be set in production")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	switch c.Session.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Storage.Dir == "" {
		return errors.New("storage dir is empty")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst, got %v/%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("trusted proxy %q is neither an IP nor a CIDR", p)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// String masks secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %s, production: %t, storage: %s, session store: %s, ttl: %s, admin: %t, secret: ***}",
		c.Port, c.Production, c.Storage.Dir, c.Session.Store, c.Session.TTL, c.Admin.Username != "")
}
