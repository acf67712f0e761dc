// Package config provides configuration management for chaski. Settings live
// in ~/.chaski/settings.json with environment-variable overrides; per-stage
// model choices live in ~/.chaski/models.yaml.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Defaults.
const (
	DefaultListenPort   = 8080
	DefaultBackend      = "sqlite"
	DefaultRetrievalURL = "http://localhost:8001"
	DefaultSearchURL    = "https://api.tavily.com"
	DefaultLLMBaseURL   = "https://api.openai.com/v1"

	DefaultAttendanceCollection = "asistencias"
	DefaultVotingCollection     = "votaciones"
)

// Config holds runtime settings for the engine and its collaborators.
type Config struct {
	ListenPort int `json:"CHASKI_PORT"`

	// Backend selects the procurement store: "sqlite" or "postgres".
	Backend     string `json:"CHASKI_BACKEND"`
	SQLitePath  string `json:"CHASKI_SQLITE_PATH"`
	PostgresDSN string `json:"CHASKI_POSTGRES_DSN"`

	RetrievalURL         string `json:"CHASKI_RETRIEVAL_URL"`
	AttendanceCollection string `json:"CHASKI_ATTENDANCE_COLLECTION"`
	VotingCollection     string `json:"CHASKI_VOTING_COLLECTION"`

	SearchURL string `json:"CHASKI_SEARCH_URL"`
	SearchKey string `json:"CHASKI_SEARCH_KEY"`

	LLMBaseURL string `json:"CHASKI_LLM_URL"`
	LLMKey     string `json:"CHASKI_LLM_KEY"`

	// ArchiveTranscripts enables the append-only conversation archive.
	ArchiveTranscripts bool `json:"CHASKI_ARCHIVE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenPort:           DefaultListenPort,
		Backend:              DefaultBackend,
		SQLitePath:           DBPath(),
		RetrievalURL:         DefaultRetrievalURL,
		AttendanceCollection: DefaultAttendanceCollection,
		VotingCollection:     DefaultVotingCollection,
		SearchURL:            DefaultSearchURL,
		LLMBaseURL:           DefaultLLMBaseURL,
	}
}

// DataDir returns the chaski data directory under the user's home.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".chaski")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "chaski.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// ModelsPath returns the per-stage model configuration path.
func ModelsPath() string {
	return filepath.Join(DataDir(), "models.yaml")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll initializes the data directory, settings, and model config.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	if err := EnsureSettings(); err != nil {
		return err
	}
	return EnsureModels()
}

// Load reads settings from disk, falling back to defaults when the file is
// missing or malformed, then applies environment overrides. Never fails: a
// broken settings file must not keep the engine from starting.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			log.Warn().Err(err).Str("path", SettingsPath()).Msg("Settings file unreadable, using defaults")
			cfg = Default()
		}
	}

	applyEnv(cfg)
	fillDefaults(cfg)
	return cfg, nil
}

// applyEnv overrides settings from the environment, matching the JSON keys.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHASKI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.ListenPort = port
		}
	}
	setIfPresent := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent("CHASKI_BACKEND", &cfg.Backend)
	setIfPresent("CHASKI_SQLITE_PATH", &cfg.SQLitePath)
	setIfPresent("CHASKI_POSTGRES_DSN", &cfg.PostgresDSN)
	setIfPresent("CHASKI_RETRIEVAL_URL", &cfg.RetrievalURL)
	setIfPresent("CHASKI_ATTENDANCE_COLLECTION", &cfg.AttendanceCollection)
	setIfPresent("CHASKI_VOTING_COLLECTION", &cfg.VotingCollection)
	setIfPresent("CHASKI_SEARCH_URL", &cfg.SearchURL)
	setIfPresent("CHASKI_SEARCH_KEY", &cfg.SearchKey)
	setIfPresent("CHASKI_LLM_URL", &cfg.LLMBaseURL)
	setIfPresent("CHASKI_LLM_KEY", &cfg.LLMKey)
	if v := os.Getenv("CHASKI_ARCHIVE"); v != "" {
		cfg.ArchiveTranscripts = v == "1" || v == "true"
	}
}

// fillDefaults backfills fields a partial settings file may have zeroed.
func fillDefaults(cfg *Config) {
	if cfg.ListenPort <= 0 {
		cfg.ListenPort = DefaultListenPort
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = DBPath()
	}
	if cfg.RetrievalURL == "" {
		cfg.RetrievalURL = DefaultRetrievalURL
	}
	if cfg.AttendanceCollection == "" {
		cfg.AttendanceCollection = DefaultAttendanceCollection
	}
	if cfg.VotingCollection == "" {
		cfg.VotingCollection = DefaultVotingCollection
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = DefaultLLMBaseURL
	}
}

var (
	global     *Config
	globalOnce sync.Once
)

// Get returns the process-wide configuration, loading it once.
func Get() *Config {
	globalOnce.Do(func() {
		cfg, _ := Load()
		global = cfg
	})
	return global
}

// GetListenPort returns the listen port, preferring the environment.
func GetListenPort() int {
	if v := os.Getenv("CHASKI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			return port
		}
	}
	return Get().ListenPort
}
