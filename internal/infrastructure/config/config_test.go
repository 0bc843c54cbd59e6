package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testSecret is a 32+ character JWT secret for tests.
const testSecret = "test-secret-0123456789abcdef0123456789"

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default MQTT port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("default QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Presence.OnlineTimeout != 60*time.Second {
		t.Errorf("default online timeout = %v, want 60s", cfg.Presence.OnlineTimeout)
	}
	if cfg.Presence.OfflineWarningAfter != 5*time.Minute {
		t.Errorf("default offline warning window = %v, want 5m", cfg.Presence.OfflineWarningAfter)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
mqtt:
  broker:
    host: broker.internal
    port: 8883
    tls: true
presence:
  online_timeout: 30s
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.internal" {
		t.Errorf("host = %q, want broker.internal", cfg.MQTT.Broker.Host)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("TLS should be enabled")
	}
	if cfg.Presence.OnlineTimeout != 30*time.Second {
		t.Errorf("online timeout = %v, want 30s", cfg.Presence.OnlineTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	t.Setenv("MEDBOX_MQTT_HOST", "env-broker")
	t.Setenv("MEDBOX_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("host = %q, want env-broker", cfg.MQTT.Broker.Host)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("database path = %q, want /tmp/env.db", cfg.Database.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "zero online timeout",
			mutate:  func(c *Config) { c.Presence.OnlineTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
