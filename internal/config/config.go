package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// Bind is the interface the HTTP server listens on
	Bind string `json:"bind,omitempty"`

	// Port is the TCP port the HTTP server listens on
	Port int `json:"port,omitempty"`

	// MaxBodyBytes caps the size of an HTTP request body.
	MaxBodyBytes int64 `json:"max_body_bytes,omitempty"`

	// MaxTextChars rejects analysis of canonical text longer than this many characters.
	// 0 means unlimited.
	MaxTextChars int `json:"max_text_chars,omitempty"`

	// RateLimitPerSecond caps sustained HTTP requests per second across all clients.
	// 0 disables rate limiting.
	RateLimitPerSecond float64 `json:"rate_limit_per_second,omitempty"`

	// RateLimitBurst is the token bucket size. Defaults to 1 when limiting is on.
	RateLimitBurst int `json:"rate_limit_burst,omitempty"`

	// LogLevel is the zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "string". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// PortEnv overrides Config.Port when set.
const PortEnv = "SIFT_PORT"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bind:         "127.0.0.1",
		Port:         3000,
		MaxBodyBytes: 10 << 20,
		LogLevel:     "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sift.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.sift) and repo (.sift) directories.
// Repo config is found by walking upward from startDir to find the nearest .sift/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// ApplyEnv overrides config values from the environment.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(PortEnv)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s %q", PortEnv, v)
		}
		cfg.Port = port
	}
	return nil
}

// FindRepoConfig walks upward from startDir to find the nearest .sift/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".sift", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Bind:               firstNonZero(overlay.Bind, base.Bind),
		Port:               firstNonZero(overlay.Port, base.Port),
		MaxBodyBytes:       firstNonZero(overlay.MaxBodyBytes, base.MaxBodyBytes),
		MaxTextChars:       firstNonZero(overlay.MaxTextChars, base.MaxTextChars),
		LogLevel:           firstNonZero(overlay.LogLevel, base.LogLevel),
		RateLimitPerSecond: firstNonZero(overlay.RateLimitPerSecond, base.RateLimitPerSecond),
		RateLimitBurst:     firstNonZero(overlay.RateLimitBurst, base.RateLimitBurst),
		DBMaxOpenConns:     firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:     firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// firstNonZero returns overlay unless it is the zero value.
func firstNonZero[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
