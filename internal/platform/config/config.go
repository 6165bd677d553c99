// Package config builds the process-wide configuration from the
// environment. Everything is validated here so misconfiguration fails at
// startup, never on the request path. The resulting Config is read-only and
// shared by reference.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"sitegate/internal/blocklist"
)

// EnvProduction is the environment value that flips the security-relevant
// defaults (blocklist enforced, fail closed).
const EnvProduction = "production"

// RedisConfig captures connection settings for the blocklist backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BlocklistConfig captures gate behavior. Policy and FailMode are explicit
// so tests and staging can exercise every combination; the environment only
// chooses their defaults.
type BlocklistConfig struct {
	Policy      blocklist.Policy
	FailMode    blocklist.FailMode
	SetKey      string
	Timeout     time.Duration
	PostgresDSN string
}

// AnalyticsConfig captures pageview delivery settings. Empty Brokers
// disables analytics.
type AnalyticsConfig struct {
	Brokers []string
	Topic   string
}

// Config is the process-wide configuration, initialized once at startup.
type Config struct {
	Addr               string
	Environment        string
	LogLevel           slog.Level
	PortalDomainLength int
	Blocklist          BlocklistConfig
	Analytics          AnalyticsConfig
	CrashReportURL     string
	Redis              RedisConfig
}

// IsProduction reports whether the production defaults apply.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// FromEnv builds the configuration from environment variables so main stays
// lean.
func FromEnv() (Config, error) {
	env := getenv("ENVIRONMENT", "development")

	cfg := Config{
		Addr:           getenv("SITEGATE_ADDR", ":8080"),
		Environment:    env,
		CrashReportURL: os.Getenv("CRASH_REPORT_URL"),
	}

	level, err := parseLogLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	lengthStr := getenv("PORTAL_DOMAIN_LENGTH", "2")
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 1 {
		return Config{}, fmt.Errorf("invalid PORTAL_DOMAIN_LENGTH=%q: must be an integer >= 1", lengthStr)
	}
	cfg.PortalDomainLength = length

	if cfg.Blocklist, err = blocklistFromEnv(env); err != nil {
		return Config{}, err
	}

	cfg.Analytics = AnalyticsConfig{
		Topic: getenv("ANALYTICS_TOPIC", "portal.pageviews"),
	}
	if brokers := os.Getenv("ANALYTICS_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Analytics.Brokers = append(cfg.Analytics.Brokers, b)
			}
		}
	}

	if cfg.Redis, err = redisFromEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func blocklistFromEnv(env string) (BlocklistConfig, error) {
	// The environment picks defaults only; both knobs stay independently
	// overridable so non-production can still enforce deterministically.
	defaultPolicy := string(blocklist.PolicyDisabled)
	defaultFailMode := string(blocklist.FailOpen)
	if env == EnvProduction {
		defaultPolicy = string(blocklist.PolicyEnforce)
		defaultFailMode = string(blocklist.FailClosed)
	}

	policy, err := blocklist.ParsePolicy(getenv("BLOCKLIST_POLICY", defaultPolicy))
	if err != nil {
		return BlocklistConfig{}, fmt.Errorf("BLOCKLIST_POLICY: %w", err)
	}
	failMode, err := blocklist.ParseFailMode(getenv("BLOCKLIST_FAIL_MODE", defaultFailMode))
	if err != nil {
		return BlocklistConfig{}, fmt.Errorf("BLOCKLIST_FAIL_MODE: %w", err)
	}

	timeoutStr := getenv("BLOCKLIST_TIMEOUT", "500ms")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		return BlocklistConfig{}, fmt.Errorf("invalid BLOCKLIST_TIMEOUT=%q", timeoutStr)
	}

	return BlocklistConfig{
		Policy:      policy,
		FailMode:    failMode,
		SetKey:      getenv("BLOCKLIST_SET_KEY", "portal:blocklist"),
		Timeout:     timeout,
		PostgresDSN: os.Getenv("BLOCKLIST_POSTGRES_DSN"),
	}, nil
}

func redisFromEnv() (RedisConfig, error) {
	cfg := RedisConfig{
		URL:          os.Getenv("BLOCKLIST_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return RedisConfig{}, fmt.Errorf("invalid REDIS_POOL_SIZE=%q", v)
		}
		cfg.PoolSize = size
	}
	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown LOG_LEVEL %q", s)
}
