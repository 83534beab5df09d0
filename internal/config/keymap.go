package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultKeymapFileName = "keys.toml"

// Keymap binds terminal client actions to keys.
type Keymap struct {
	Quit          string `toml:"quit"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	Search        string `toml:"search"`
	CycleCategory string `toml:"cycle_category"`
	CyclePriority string `toml:"cycle_priority"`
	CycleStatus   string `toml:"cycle_status"`
	ResetFilters  string `toml:"reset_filters"`
	Refresh       string `toml:"refresh"`
	Export        string `toml:"export"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
}

type TUIConfig struct {
	ExportDir string `toml:"export_dir"`
	Keys      Keymap `toml:"keys"`
}

// DefaultKeymapPath is keys.toml under the user's config directory.
func DefaultKeymapPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "climavet", DefaultKeymapFileName), nil
}

// LoadOrCreateTUI reads path, writing the defaults there first if it does
// not exist. Keys missing from the file keep their defaults.
func LoadOrCreateTUI(path string) (TUIConfig, error) {
	cfg := DefaultTUIConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeTUI(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read keymap: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse keymap: %w", err)
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	return cfg, nil
}

func writeTUI(path string, cfg TUIConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal keymap: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultTUIConfig() TUIConfig {
	return TUIConfig{
		ExportDir: ".",
		Keys: Keymap{
			Quit:          "q",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			Search:        "/",
			CycleCategory: "c",
			CyclePriority: "p",
			CycleStatus:   "s",
			ResetFilters:  "0",
			Refresh:       "r",
			Export:        "x",
			Confirm:       "enter",
			Cancel:        "esc",
		},
	}
}
