package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"remindbot/internal/domain/constant"
	appErrors "remindbot/internal/pkg/errors"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Config holds process settings read from the environment.
type Config struct {
	Port     int
	Timezone *time.Location
	Locale   string // "zh" or "en"
	LogLevel string

	StoreDriver string
	DBURL       string // sqlite file
	BoltPath    string

	DeliveryMaxAttempts int
	DeliveryBackoff     time.Duration
	RecoveryPolicy      constant.RecoveryPolicy
	ReconcileInterval   time.Duration

	ChannelSecret      string
	ChannelAccessToken string
	LinePushRate       float64 // pushes per second

	APIToken string // bearer token for /api, empty disables it
}

// Load reads the configuration from environment variables. Missing values take
// defaults; malformed values are reported as ErrInvalidConfig.
func Load() (*Config, error) {
	cfg := &Config{
		Locale:             strings.ToLower(getenv("LOCALE", "zh")),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		StoreDriver:        strings.ToLower(getenv("STORE_DRIVER", DriverSQLite)),
		DBURL:              getenv("BLUEPRINT_DB_URL", "reminders.db"),
		BoltPath:           getenv("BOLT_PATH", "reminders.bolt"),
		ChannelSecret:      os.Getenv("CHANNEL_SECRET"),
		ChannelAccessToken: os.Getenv("CHANNEL_ACCESS_TOKEN"),
		APIToken:           strings.TrimSpace(os.Getenv("API_TOKEN")),
	}

	var err error
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: PORT %d out of range", appErrors.ErrInvalidConfig, cfg.Port)
	}

	tz := getenv("TIMEZONE", "Asia/Shanghai")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE %q: %v", appErrors.ErrInvalidConfig, tz, err)
	}

	if cfg.Locale != "zh" && cfg.Locale != "en" {
		return nil, fmt.Errorf("%w: LOCALE must be zh or en, got %q", appErrors.ErrInvalidConfig, cfg.Locale)
	}
	if cfg.StoreDriver != DriverSQLite && cfg.StoreDriver != DriverBolt {
		return nil, fmt.Errorf("%w: STORE_DRIVER must be sqlite or bolt, got %q", appErrors.ErrInvalidConfig, cfg.StoreDriver)
	}

	if cfg.DeliveryMaxAttempts, err = intEnv("DELIVERY_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.DeliveryMaxAttempts < 1 {
		return nil, fmt.Errorf("%w: DELIVERY_MAX_ATTEMPTS must be at least 1", appErrors.ErrInvalidConfig)
	}
	if cfg.DeliveryBackoff, err = durationEnv("DELIVERY_BACKOFF", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval < time.Second {
		return nil, fmt.Errorf("%w: RECONCILE_INTERVAL must be at least 1s", appErrors.ErrInvalidConfig)
	}

	policy := getenv("RECOVERY_POLICY", string(constant.RecoverySkip))
	if cfg.RecoveryPolicy, err = constant.ParseRecoveryPolicy(policy); err != nil {
		return nil, fmt.Errorf("%w: RECOVERY_POLICY: %v", appErrors.ErrInvalidConfig, err)
	}

	rate := getenv("LINE_PUSH_RATE", "5")
	if cfg.LinePushRate, err = strconv.ParseFloat(rate, 64); err != nil || cfg.LinePushRate <= 0 {
		return nil, fmt.Errorf("%w: LINE_PUSH_RATE %q", appErrors.ErrInvalidConfig, rate)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", appErrors.ErrInvalidConfig, key, v)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s %q is not a duration", appErrors.ErrInvalidConfig, key, v)
	}
	return d, nil
}
