/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package config assembles runtime settings from defaults, an optional YAML
// file, a .env file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvFirecrawlKey = "FIRECRAWL_API_KEY"
	EnvModel        = "TESTUDO_MODEL"
	EnvListenAddr   = "TESTUDO_ADDR"
	EnvAPIKeys      = "TESTUDO_API_KEYS"
	EnvRateLimit    = "TESTUDO_RATE_LIMIT"
	EnvLogLevel     = "TESTUDO_LOG_LEVEL"
)

// Config is the explicit settings object passed through the program; there
// is no package-level configuration state.
type Config struct {
	DatabaseURL         string   `yaml:"database_url"`
	Model               string   `yaml:"model"`
	EmbeddingModel      string   `yaml:"embedding_model"`
	EmbeddingDimensions int      `yaml:"embedding_dimensions"`
	ListenAddr          string   `yaml:"listen_addr"`
	APIKeys             []string `yaml:"api_keys"`
	RateLimitPerMinute  int      `yaml:"rate_limit_per_minute"`
	LogLevel            string   `yaml:"log_level"`

	// Secrets come from the environment only, never from the settings file.
	OpenAIKey    string `yaml:"-"`
	FirecrawlKey string `yaml:"-"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DatabaseURL:         "postgres://localhost:5432/web_testing",
		Model:               "gpt-4o",
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 512,
		ListenAddr:          ":8080",
		RateLimitPerMinute:  10,
		LogLevel:            "info",
	}
}

// Load builds a Config: defaults, then the YAML file at path (skipped when
// path is empty or missing), then .env, then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional file
		case err != nil:
			return cfg, fmt.Errorf("read settings file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse settings file: %w", err)
			}
		}
	}

	LoadDotEnv(".env")
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv reads KEY=VALUE lines from a dotenv file into the process
// environment. Existing variables win, so container env vars are never
// overridden.
func LoadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}

func (c *Config) applyEnv() {
	setString(&c.DatabaseURL, EnvDatabaseURL)
	setString(&c.OpenAIKey, EnvOpenAIKey)
	setString(&c.FirecrawlKey, EnvFirecrawlKey)
	setString(&c.Model, EnvModel)
	setString(&c.ListenAddr, EnvListenAddr)
	setString(&c.LogLevel, EnvLogLevel)
	if v := os.Getenv(EnvAPIKeys); v != "" {
		c.APIKeys = nil
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				c.APIKeys = append(c.APIKeys, k)
			}
		}
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitPerMinute = n
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
