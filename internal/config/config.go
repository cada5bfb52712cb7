package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds cadence's runtime settings.
type Config struct {
	APIBase        string
	PollInterval   time.Duration
	LoginTimeout   time.Duration
	RequestTimeout time.Duration
	CredentialPath string
	LogFile        string
	LogLevel       string
	Theme          string
}

const (
	defaultConfigPath     = "~/.config/cadence/config.toml"
	defaultAPIBase        = "127.0.0.1:3000"
	defaultPollMS         = 1500
	defaultLoginTimeout   = 180
	defaultRequestTimeout = 10
	defaultCredentialPath = "~/.config/cadence/credential.toml"
	defaultLogFile        = "~/.local/state/cadence/cadence.log"
	defaultLogLevel       = "info"
	defaultTheme          = "Nightfox"
)

type fileConfig struct {
	APIBase               string `toml:"api_base"`
	PollIntervalMS        int    `toml:"poll_interval_ms"`
	LoginTimeoutSeconds   *int   `toml:"login_timeout_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	CredentialPath        string `toml:"credential_path"`
	LogFile               string `toml:"log_file"`
	LogLevel              string `toml:"log_level"`
	Theme                 string `toml:"theme"`
}

// Load reads the config file at path (or the default path), then applies
// CADENCE_* environment overrides. A .env file in the working directory is
// loaded first when present. A missing config file means defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	applyEnv(&raw)

	cfg := Config{
		APIBase:        strings.TrimSpace(raw.APIBase),
		PollInterval:   time.Duration(raw.PollIntervalMS) * time.Millisecond,
		RequestTimeout: time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		CredentialPath: strings.TrimSpace(raw.CredentialPath),
		LogFile:        strings.TrimSpace(raw.LogFile),
		LogLevel:       strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		Theme:          strings.TrimSpace(raw.Theme),
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollMS * time.Millisecond
	}
	loginTimeout := defaultLoginTimeout
	if raw.LoginTimeoutSeconds != nil {
		loginTimeout = *raw.LoginTimeoutSeconds
	}
	if loginTimeout > 0 {
		cfg.LoginTimeout = time.Duration(loginTimeout) * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout * time.Second
	}
	if cfg.CredentialPath == "" {
		cfg.CredentialPath = defaultCredentialPath
	}
	cfg.CredentialPath = mustExpand(cfg.CredentialPath)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Theme == "" {
		cfg.Theme = defaultTheme
	}

	return cfg, nil
}

// applyEnv overrides file values with CADENCE_* variables. Malformed numbers
// are ignored.
func applyEnv(raw *fileConfig) {
	if v := strings.TrimSpace(os.Getenv("CADENCE_API_BASE")); v != "" {
		raw.APIBase = v
	}
	if v, ok := envInt("CADENCE_POLL_INTERVAL_MS"); ok {
		raw.PollIntervalMS = v
	}
	if v, ok := envInt("CADENCE_LOGIN_TIMEOUT_SECONDS"); ok {
		raw.LoginTimeoutSeconds = &v
	}
	if v := strings.TrimSpace(os.Getenv("CADENCE_LOG_FILE")); v != "" {
		raw.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CADENCE_LOG_LEVEL")); v != "" {
		raw.LogLevel = v
	}
}

func envInt(key string) (int, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
