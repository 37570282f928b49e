package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
)

var (
	cfgFile = "gomoku-mcts/config.json"
)

const (
	MaxSearchBudgetMs = engine.MaxSearchBudgetMs
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ServerConfig struct {
	Addr string `json:"addr"`
	// Cycles between two progress frames of the analysis socket
	ProgressInterval int `json:"progress_interval"`
}

type Config struct {
	SearchBudgetMs int          `json:"search_budget_ms"`
	GraceMs        int          `json:"grace_ms"`
	MaxTreeMb      int          `json:"max_tree_mb"`
	Seed           int64        `json:"seed"`
	LogLevel       string       `json:"log_level"`
	Server         ServerConfig `json:"server"`
}

var DefaultConfig = Config{
	SearchBudgetMs: 2000,
	GraceMs:        1000,
	MaxTreeMb:      512,
	LogLevel:       "info",
	Server: ServerConfig{
		Addr:             ":8080",
		ProgressInterval: 5000,
	},
}

// Defaults overridden by the user's config file, if there is one
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		config := DefaultConfig
		return &config, nil
	}
	return Load(absPath)
}

// Read the config at 'path' on top of the defaults
func Load(path string) (*Config, error) {
	config := DefaultConfig
	if err := readCfgFile(path, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.SearchBudgetMs < 0 || c.SearchBudgetMs > MaxSearchBudgetMs {
		return &InvalidConfig{fmt.Sprintf("search_budget_ms must be in [0, %d], got %d", MaxSearchBudgetMs, c.SearchBudgetMs)}
	}
	if c.GraceMs <= 0 {
		return &InvalidConfig{fmt.Sprintf("grace_ms must be positive, got %d", c.GraceMs)}
	}
	if c.MaxTreeMb < 0 {
		return &InvalidConfig{fmt.Sprintf("max_tree_mb must not be negative, got %d", c.MaxTreeMb)}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return &InvalidConfig{fmt.Sprintf("unknown log_level %q", c.LogLevel)}
	}
	if c.Server.Addr == "" {
		return &InvalidConfig{"server.addr must not be empty"}
	}
	if c.Server.ProgressInterval < 1 {
		return &InvalidConfig{fmt.Sprintf("server.progress_interval must be positive, got %d", c.Server.ProgressInterval)}
	}
	return nil
}

// Write the config to the user's config directory, returns the file path
func (c *Config) Save() (string, error) {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", err
	}
	return absPath, c.SaveTo(absPath)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return saveCfgFile(path, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
