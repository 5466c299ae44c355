/*
Package config manages TOML config for hsnserve services.
*/
package config

import (
	"path/filepath"

	"hsnserve/internal/utils"

	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Index   IndexConfig   `toml:"index"`
	Suggest SuggestConfig `toml:"suggest"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// IndexConfig controls similarity index construction.
type IndexConfig struct {
	MaxFeatures int     `toml:"max_features"`
	MinDocFreq  int     `toml:"min_doc_freq"`
	MaxDocRatio float64 `toml:"max_doc_ratio"`
	Bigrams     bool    `toml:"bigrams"`
}

// SuggestConfig controls the suggestion engine.
type SuggestConfig struct {
	MinSimilarity float64 `toml:"min_similarity"`
	DefaultTopK   int     `toml:"default_top_k"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxLimit    int `toml:"max_limit"`
	MaxQueryLen int `toml:"max_query_len"`
	MaxBatch    int `toml:"max_batch"`
}

// CliConfig holds interactive shell options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MaxFeatures: 5000,
			MinDocFreq:  1,
			MaxDocRatio: 0.95,
			Bigrams:     true,
		},
		Suggest: SuggestConfig{
			MinSimilarity: 0.1,
			DefaultTopK:   5,
		},
		Server: ServerConfig{
			MaxLimit:    50,
			MaxQueryLen: 256,
			MaxBatch:    100,
		},
		CLI: CliConfig{
			DefaultLimit: 5,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return cfg, nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file. Missing keys keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(cfg *Config, configPath string) error {
	return utils.SaveTOMLFile(cfg, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	return utils.GetAbsolutePath(configPath)
}
