// Package config loads game settings from YAML.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/milk9111/buddingfriendships/season"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Debug   Flags         `yaml:"debug"`
	Season  string        `yaml:"season"`
	DataDir string        `yaml:"data_dir"`
	// Manifest lists the maps to load, relative to DataDir.
	Manifest string        `yaml:"manifest"`
	Start    StartConfig   `yaml:"start"`
	Player   PlayerConfig  `yaml:"player"`
	Console  ConsoleConfig `yaml:"console"`
	Scripts  ScriptConfig  `yaml:"scripts"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TPS    int    `yaml:"tps"`
}

// Flags are the runtime debug toggles (DEBUG_COLLISION, SHOW_FPS).
type Flags struct {
	Collision bool `yaml:"collision"`
	ShowFPS   bool `yaml:"show_fps"`
}

type StartConfig struct {
	Map string  `yaml:"map"`
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
}

type PlayerConfig struct {
	Speed  float64 `yaml:"speed"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ConsoleConfig struct {
	Lines   int  `yaml:"lines"`
	Visible bool `yaml:"visible"`
}

type ScriptConfig struct {
	Dir       string `yaml:"dir"`
	Watch     bool   `yaml:"watch"`
	MaxAllocs int64  `yaml:"max_allocs"`
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	return cfg
}

// Load reads configuration. Search order: customPath -> ./config.yaml -> embedded default.
// Values missing from a file keep their defaults.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config config.yaml: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if _, err := season.FromString(c.Season); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Player.Speed < 0 {
		return fmt.Errorf("config: negative player speed")
	}
	return nil
}

// CurrentSeason returns the configured season; Validate guarantees it parses.
func (c Config) CurrentSeason() season.Season {
	s, _ := season.FromString(c.Season)
	return s
}
