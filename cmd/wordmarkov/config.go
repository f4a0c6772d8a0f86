package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v2"
)

// Config holds every setting of the wordmarkov binary.
type Config struct {
	LogLevel     string   `json:"log_level" yaml:"log_level"`
	DataDir      string   `json:"data_dir" yaml:"data_dir"`
	DatabasePath string   `json:"database_path" yaml:"database_path"`
	ChainName    string   `json:"chain_name" yaml:"chain_name"`
	MaxLength    int      `json:"max_length" yaml:"max_length"`
	Selector     string   `json:"selector" yaml:"selector"`
	Temperature  float64  `json:"temperature" yaml:"temperature"`
	CorpusFiles  []string `json:"corpus_files" yaml:"corpus_files"`
	ApiAddr      string   `json:"api_addr" yaml:"api_addr"`
	ApiKey       string   `json:"api_key" yaml:"api_key"`
	Autosave     bool     `json:"autosave" yaml:"autosave"`
	MinPruneHits int      `json:"min_prune_hits" yaml:"min_prune_hits"`
}

// DefaultConfig creates a configuration with default values. The API is off
// unless api_addr is set.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DataDir:      "./data",
		DatabasePath: "./data/wordmarkov.db?_journal_mode=WAL&_busy_timeout=5000",
		ChainName:    "default",
		MaxLength:    450,
		Selector:     "weighted",
		Temperature:  1.0,
		CorpusFiles:  []string{},
		ApiAddr:      "",
		ApiKey:       "",
		Autosave:     true,
		MinPruneHits: 0,
	}
}

// isYAML reports whether path names a YAML config file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func marshalConfig(path string, config *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

func unmarshalConfig(path string, data []byte, config *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, config)
	}
	return json.Unmarshal(data, config)
}

// LoadConfig reads the configuration from a JSON or YAML file at the given
// path, picked by extension. If the file doesn't exist, it creates one with
// default values. Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = marshalConfig(path, config)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The binary can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = unmarshalConfig(path, file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the binary cannot run with.
func (c *Config) Validate() error {
	if c.ChainName == "" {
		return fmt.Errorf("invalid config: chain_name must not be empty")
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("invalid config: max_length must not be negative, got %d", c.MaxLength)
	}
	if c.MinPruneHits < 0 {
		return fmt.Errorf("invalid config: min_prune_hits must not be negative, got %d", c.MinPruneHits)
	}
	return nil
}

// parseLogLevel maps a config level name onto a slog.Level. Unknown names
// fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
