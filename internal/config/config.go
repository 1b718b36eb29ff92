// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package config handles server and engine configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds the full service configuration.
type Config struct {
	Server   ServerConfig  `json:"server"`
	Engine   EngineConfig  `json:"engine"`
	MQTT     MQTTConfig    `json:"mqtt"`
	Webhook  WebhookConfig `json:"webhook"`
	LogLevel string        `json:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Mode     string `json:"mode"`      // "debug" or "release"
	AdminKey string `json:"admin_key"` // Key for mutating endpoints (min 20 chars)
}

// EngineConfig holds evaluator settings.
type EngineConfig struct {
	DataDir        string `json:"data_dir"`        // Directory for persisted collections
	TickSeconds    int    `json:"tick_seconds"`    // Evaluation interval
	SourceCapacity int    `json:"source_capacity"` // Max buffered scored entries
	StartEnabled   bool   `json:"start_enabled"`   // Default switch position on first run
}

// MQTTConfig holds the optional MQTT ingest source settings.
// An empty broker URL disables MQTT ingest.
type MQTTConfig struct {
	BrokerURL string `json:"broker_url"`
	Topic     string `json:"topic"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
}

// WebhookConfig holds the optional alert webhook sink settings.
// An empty URL disables the webhook.
type WebhookConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 21180,
			Mode: "release",
		},
		Engine: EngineConfig{
			DataDir:        "./data",
			TickSeconds:    30,
			SourceCapacity: 10000,
			StartEnabled:   true,
		},
		MQTT: MQTTConfig{
			Topic: "sentinel/entries",
		},
		Webhook: WebhookConfig{
			TimeoutSeconds: 10,
		},
		LogLevel: "info",
	}
}

// TickInterval returns the evaluation interval as a duration.
func (c *Config) TickInterval() time.Duration {
	if c.Engine.TickSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Engine.TickSeconds) * time.Second
}

// Load loads configuration from a JSON file.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadFromEnv overrides config values from environment variables.
func (c *Config) LoadFromEnv() {
	if host := os.Getenv("SENTINEL_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SENTINEL_PORT"); port != "" {
		var p int
		if _, err := parseEnvInt(port, &p); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if mode := os.Getenv("SENTINEL_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if adminKey := os.Getenv("SENTINEL_ADMIN_KEY"); adminKey != "" {
		c.Server.AdminKey = adminKey
	}
	if dataDir := os.Getenv("SENTINEL_DATA_DIR"); dataDir != "" {
		c.Engine.DataDir = dataDir
	}
	if tick := os.Getenv("SENTINEL_TICK_SECONDS"); tick != "" {
		var t int
		if _, err := parseEnvInt(tick, &t); err == nil && t > 0 {
			c.Engine.TickSeconds = t
		}
	}
	if broker := os.Getenv("SENTINEL_MQTT_BROKER"); broker != "" {
		c.MQTT.BrokerURL = broker
	}
	if topic := os.Getenv("SENTINEL_MQTT_TOPIC"); topic != "" {
		c.MQTT.Topic = topic
	}
	if url := os.Getenv("SENTINEL_WEBHOOK_URL"); url != "" {
		c.Webhook.URL = url
	}
	if level := os.Getenv("SENTINEL_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

func parseEnvInt(s string, v *int) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	*v = n
	return n, nil
}
