package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxRecentSources = 10

// uiConfig is per-user state that survives restarts. Grid settings live in
// the grid config file, not here.
type uiConfig struct {
	Theme    string   `yaml:"theme,omitempty"`
	PageSize int      `yaml:"page_size,omitempty"`
	Recent   []string `yaml:"recent,omitempty"`
}

func loadUIConfig() (*uiConfig, string) {
	configDir := resolveConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return &uiConfig{}, filepath.Join(configDir, "ui.yaml")
	}
	path := filepath.Join(configDir, "ui.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// rememberSource moves source to the front of the recent list.
func (c *uiConfig) rememberSource(source string) {
	source = strings.TrimSpace(source)
	if c == nil || source == "" {
		return
	}
	out := []string{source}
	for _, s := range c.Recent {
		if s != source {
			out = append(out, s)
		}
	}
	if len(out) > maxRecentSources {
		out = out[:maxRecentSources]
	}
	c.Recent = out
}

func resolveConfigDir() string {
	if dir := strings.TrimSpace(os.Getenv("GRIDVIEW_CONFIG_DIR")); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gridview")
}
