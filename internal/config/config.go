package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	appDir          = "yescommander"
	defaultFileName = "yc.yaml"
)

// CommanderConfig describes one node of the commander tree.
type CommanderConfig struct {
	Type        string   `yaml:"type" toml:"type"`
	Keywords    []string `yaml:"keywords,omitempty" toml:"keywords,omitempty"`
	Command     string   `yaml:"command,omitempty" toml:"command,omitempty"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty"`
	Score       *int     `yaml:"score,omitempty" toml:"score,omitempty"`

	// file
	Filename string `yaml:"filename,omitempty" toml:"filename,omitempty"`
	Filetype string `yaml:"filetype,omitempty" toml:"filetype,omitempty"`
	Dir      string `yaml:"dir,omitempty" toml:"dir,omitempty"`

	// external and calculator
	Program     string `yaml:"program,omitempty" toml:"program,omitempty"`
	DelayMs     int    `yaml:"delay_ms,omitempty" toml:"delay_ms,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty" toml:"timeout_secs,omitempty"`
	TitleField  string `yaml:"title_field,omitempty" toml:"title_field,omitempty"`
	CopyField   string `yaml:"copy_field,omitempty" toml:"copy_field,omitempty"`
	OpenField   string `yaml:"open_field,omitempty" toml:"open_field,omitempty"`
	Opener      string `yaml:"opener,omitempty" toml:"opener,omitempty"`
	Marker      string `yaml:"marker,omitempty" toml:"marker,omitempty"`
	CacheSize   int    `yaml:"cache_size,omitempty" toml:"cache_size,omitempty"`

	// group, chain, async
	Limit    int               `yaml:"limit,omitempty" toml:"limit,omitempty"`
	Children []CommanderConfig `yaml:"children,omitempty" toml:"children,omitempty"`
}

// UIConfig holds presentation settings handed to the terminal UI.
type UIConfig struct {
	Prompt              string `yaml:"prompt" toml:"prompt"`
	DefaultMarker       string `yaml:"default_marker" toml:"default_marker"`
	HighlightColor      string `yaml:"highlight_color" toml:"highlight_color"`
	MarkerColor         string `yaml:"marker_color" toml:"marker_color"`
	PreviewTitleColor   string `yaml:"preview_title_color" toml:"preview_title_color"`
	PreviewFrame        bool   `yaml:"preview_frame" toml:"preview_frame"`
	NarrowHeight        int    `yaml:"narrow_height" toml:"narrow_height"`
	WideHeight          int    `yaml:"wide_height" toml:"wide_height"`
	PreviewNarrowHeight int    `yaml:"preview_narrow_height" toml:"preview_narrow_height"`
	MaxNarrowWidth      int    `yaml:"max_narrow_width" toml:"max_narrow_width"`
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	Mode           string `yaml:"mode" toml:"mode"`
	BatchSize      int    `yaml:"batch_size" toml:"batch_size"`
	PollIntervalMs int    `yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	SinkCapacity   int    `yaml:"sink_capacity" toml:"sink_capacity"`
	MaxConcurrency int    `yaml:"max_concurrency" toml:"max_concurrency"`
	// Calculator is on unless set to false.
	Calculator *bool `yaml:"calculator,omitempty" toml:"calculator,omitempty"`
}

// CalculatorEnabled reports whether the built-in calculator should run.
func (s SearchConfig) CalculatorEnabled() bool {
	return s.Calculator == nil || *s.Calculator
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	UI         UIConfig          `yaml:"ui" toml:"ui"`
	Search     SearchConfig      `yaml:"search" toml:"search"`
	FileViewer map[string]string `yaml:"file_viewer" toml:"file_viewer"`
	Commanders []CommanderConfig `yaml:"commanders" toml:"commanders"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Files ending in .toml are read as TOML, anything else as YAML.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./yc.yaml first, then the user config directory.
// If neither exists, it writes defaults to the user config directory and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(defaultFileName); err == nil {
		cfg, err := Load(defaultFileName)
		return cfg, defaultFileName, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ConfigDir is $XDG_CONFIG_HOME/yescommander, or ~/.config/yescommander.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir is $XDG_CACHE_HOME/yescommander, or ~/.cache/yescommander.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func DefaultUserConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultFileName), nil
}

func xdgDir(env, fallback string) (string, error) {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return filepath.Join(v, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appDir), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Search:     SearchConfig{Mode: "concurrent"},
		FileViewer: map[string]string{"default": "vim %s", "url": "xdg-open %s"},
		Commanders: []CommanderConfig{
			{
				Type:        "soldier",
				Keywords:    []string{"ls", "seconds"},
				Command:     "ls --time-style=full-iso -all",
				Description: "show time in nano second",
			},
			{Type: "soldier", Keywords: []string{"change"}, Command: "chown user:group file"},
		},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	ui := &cfg.UI
	if ui.Prompt == "" {
		ui.Prompt = "> "
	}
	if ui.DefaultMarker == "" {
		ui.DefaultMarker = "  "
	}
	if ui.HighlightColor == "" {
		ui.HighlightColor = "11"
	}
	if ui.MarkerColor == "" {
		ui.MarkerColor = "8"
	}
	if ui.PreviewTitleColor == "" {
		ui.PreviewTitleColor = "10"
	}
	if ui.NarrowHeight == 0 {
		ui.NarrowHeight = 16
	}
	if ui.WideHeight == 0 {
		ui.WideHeight = 12
	}
	if ui.PreviewNarrowHeight == 0 {
		ui.PreviewNarrowHeight = 6
	}
	if ui.MaxNarrowWidth == 0 {
		ui.MaxNarrowWidth = 80
	}

	s := &cfg.Search
	if s.Mode == "" {
		s.Mode = "concurrent"
	}
	if s.BatchSize == 0 {
		s.BatchSize = 30
	}
	if s.PollIntervalMs == 0 {
		s.PollIntervalMs = 10
	}
	if s.SinkCapacity == 0 {
		s.SinkCapacity = 1024
	}
	if s.Calculator == nil {
		on := true
		s.Calculator = &on
	}

	if cfg.FileViewer == nil {
		cfg.FileViewer = map[string]string{}
	}
	if cfg.FileViewer["default"] == "" {
		cfg.FileViewer["default"] = "vim %s"
	}
}
