// File path: internal/vector/config.go
package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config controls the ChromaDB connection. Values resolve env-first with an
// optional JSON file, the same way the relational store is configured.
type Config struct {
	Scheme     string `json:"scheme"`
	Host       string `json:"host"`
	Port       string `json:"port"`
	Collection string `json:"collection"`
	APIKey     string `json:"api_key"`

	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`

	// Pool knobs for the shared HTTP transport.
	MaxIdleConns        int `json:"max_idle_conns"`
	MaxIdleConnsPerHost int `json:"max_idle_conns_per_host"`

	IdleConnTimeout       time.Duration `json:"-"`
	IdleConnTimeoutString string        `json:"idle_conn_timeout"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if s := strings.TrimSpace(override.Scheme); s != "" {
		result.Scheme = s
	}
	if h := strings.TrimSpace(override.Host); h != "" {
		result.Host = h
	}
	if p := strings.TrimSpace(override.Port); p != "" {
		result.Port = p
	}
	if col := strings.TrimSpace(override.Collection); col != "" {
		result.Collection = col
	}
	if strings.TrimSpace(override.APIKey) != "" {
		result.APIKey = override.APIKey
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if s := strings.TrimSpace(override.TimeoutString); s != "" {
		result.TimeoutString = s
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.MaxIdleConnsPerHost > 0 {
		result.MaxIdleConnsPerHost = override.MaxIdleConnsPerHost
	}
	if override.IdleConnTimeout > 0 {
		result.IdleConnTimeout = override.IdleConnTimeout
	}
	if s := strings.TrimSpace(override.IdleConnTimeoutString); s != "" {
		result.IdleConnTimeoutString = s
	}
	return result
}

func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := envString("CHROMADB_CONFIG_FILE"); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Scheme) == "" {
		c.Scheme = "http"
	}
	if strings.TrimSpace(c.Host) == "" {
		c.Host = "localhost"
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = "8000"
	}
	if strings.TrimSpace(c.Collection) == "" {
		c.Collection = "fallout76"
	}
	c.Timeout = resolveDuration(c.Timeout, c.TimeoutString, 10*time.Second)
	c.IdleConnTimeout = resolveDuration(c.IdleConnTimeout, c.IdleConnTimeoutString, 90*time.Second)
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 64
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 16
	}
}

// resolveDuration prefers an already-set duration, then the string form from
// JSON or the environment, then the fallback.
func resolveDuration(current time.Duration, raw string, fallback time.Duration) time.Duration {
	if current > 0 {
		return current
	}
	if raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read chromadb config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse chromadb config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{
		Scheme:     envString("CHROMADB_SCHEME"),
		Host:       envString("CHROMADB_HOST"),
		Port:       envString("CHROMADB_PORT"),
		Collection: envString("CHROMADB_COLLECTION"),
		APIKey:     envString("CHROMADB_API_KEY"),
	}
	if timeout := envString("CHROMADB_TIMEOUT"); timeout != "" {
		cfg.TimeoutString = timeout
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.Timeout = parsed
		}
	}
	if idle := envString("CHROMADB_IDLE_CONN_TIMEOUT"); idle != "" {
		cfg.IdleConnTimeoutString = idle
		if parsed, err := time.ParseDuration(idle); err == nil {
			cfg.IdleConnTimeout = parsed
		}
	}
	var err error
	if cfg.MaxIdleConns, err = envPositiveInt("CHROMADB_MAX_IDLE_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConnsPerHost, err = envPositiveInt("CHROMADB_MAX_IDLE_CONNS_PER_HOST"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envPositiveInt(key string) (int, error) {
	raw := envString(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, nil
	}
	return value, nil
}
