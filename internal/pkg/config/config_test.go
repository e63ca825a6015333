package config

import (
	"errors"
	"testing"
	"time"

	"remindbot/internal/domain/constant"
	appErrors "remindbot/internal/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TIMEZONE", "LOCALE", "STORE_DRIVER", "DELIVERY_MAX_ATTEMPTS",
		"DELIVERY_BACKOFF", "RECOVERY_POLICY", "RECONCILE_INTERVAL", "LINE_PUSH_RATE", "API_TOKEN"} {
		t.Setenv(k, "")
	}
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Fatalf("StoreDriver = %q, want sqlite", cfg.StoreDriver)
	}
	if cfg.DeliveryMaxAttempts != 3 || cfg.DeliveryBackoff != 30*time.Second {
		t.Fatalf("delivery = %d/%v, want 3/30s", cfg.DeliveryMaxAttempts, cfg.DeliveryBackoff)
	}
	if cfg.RecoveryPolicy != constant.RecoverySkip {
		t.Fatalf("RecoveryPolicy = %q, want skip", cfg.RecoveryPolicy)
	}
	if cfg.Locale != "zh" {
		t.Fatalf("Locale = %q, want zh", cfg.Locale)
	}
	if cfg.APIToken != "" {
		t.Fatalf("APIToken = %q, want empty", cfg.APIToken)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOCALE", "EN")
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("DELIVERY_MAX_ATTEMPTS", "5")
	t.Setenv("DELIVERY_BACKOFF", "2s")
	t.Setenv("RECOVERY_POLICY", "fire")
	t.Setenv("RECONCILE_INTERVAL", "10s")
	t.Setenv("LINE_PUSH_RATE", "0.5")
	t.Setenv("API_TOKEN", " s3cret ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 9090 || cfg.Locale != "en" || cfg.StoreDriver != DriverBolt {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DeliveryMaxAttempts != 5 || cfg.DeliveryBackoff != 2*time.Second {
		t.Fatalf("delivery = %d/%v", cfg.DeliveryMaxAttempts, cfg.DeliveryBackoff)
	}
	if cfg.APIToken != "s3cret" {
		t.Fatalf("APIToken = %q, want s3cret", cfg.APIToken)
	}
	if cfg.RecoveryPolicy != constant.RecoveryFire || cfg.ReconcileInterval != 10*time.Second {
		t.Fatalf("policy/interval = %q/%v", cfg.RecoveryPolicy, cfg.ReconcileInterval)
	}
	if cfg.LinePushRate != 0.5 {
		t.Fatalf("LinePushRate = %v", cfg.LinePushRate)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "PORT", "eighty"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
		{"locale", "LOCALE", "fr"},
		{"driver", "STORE_DRIVER", "mongo"},
		{"attempts", "DELIVERY_MAX_ATTEMPTS", "0"},
		{"backoff", "DELIVERY_BACKOFF", "soon"},
		{"policy", "RECOVERY_POLICY", "sometimes"},
		{"rate", "LINE_PUSH_RATE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TIMEZONE", "UTC")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if !errors.Is(err, appErrors.ErrInvalidConfig) {
				t.Fatalf("Load with %s=%q: err = %v, want ErrInvalidConfig", tt.key, tt.value, err)
			}
		})
	}
}
