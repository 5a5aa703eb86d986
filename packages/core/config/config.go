package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/core/env"
	"gopkg.in/yaml.v3"
)

// Sequence names accepted in Sequences and on the command line
const (
	SequenceResolve = "resolve"
	SequenceKeyword = "keyword"
	SequenceSearch  = "search"
)

// AllSequences lists every sequence in run order
var AllSequences = []string{SequenceResolve, SequenceKeyword, SequenceSearch}

// ErrNotFound is returned when no config file exists in the searched directory
var ErrNotFound = errors.New("no config file found")

// Config represents the secprobe configuration. Keys are PascalCase so an
// existing appsettings.json loads unchanged.
type Config struct {
	APIURLs     APIURLs       `yaml:"ApiUrls"`
	FilePaths   FilePaths     `yaml:"FilePaths"`
	BearerToken string        `yaml:"BearerToken"`
	Timeout     time.Duration `yaml:"Timeout,omitempty"`
	Sequences   []string      `yaml:"Sequences,omitempty"`
	Proxy       string        `yaml:"Proxy,omitempty"`
	ValidateSSL *bool         `yaml:"ValidateSSL,omitempty"`
	NoColor     *bool         `yaml:"NoColor,omitempty"`

	// Warnings collects non-fatal problems found while loading
	Warnings []string `yaml:"-"`
}

// APIURLs holds the three endpoint families of the service
type APIURLs struct {
	Resolve       string `yaml:"Resolve"`
	SearchKeyword string `yaml:"SearchKeyword"`
	Search        string `yaml:"Search"`
}

// FilePaths holds the identifier file and the log path templates
type FilePaths struct {
	DriverFile              string `yaml:"DriverFile"`
	LogOutFileForResolve    string `yaml:"LogOutFileForResolve"`
	LogOutFileForSearch     string `yaml:"LogOutFileForSearch"`
	LogOutFileForBulkSearch string `yaml:"LogOutFileForBulkSearch,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// Enabled reports whether the named sequence should run
func (c *Config) Enabled(name string) bool {
	for _, s := range c.Sequences {
		if s == name {
			return true
		}
	}
	return false
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	"secprobe.yaml",
	"secprobe.yml",
	".secprobe.yaml",
	"appsettings.json",
}

// LoadConfig loads configuration from the specified path or searches the
// current directory for one of ConfigFilenames.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return nil, fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(ConfigFilenames, ", "))
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes data as YAML (JSON included), expands ${VAR} references in
// values from the environment and applies defaults. Keys match case
// insensitively; unknown top-level keys and unset variables become warnings.
func Parse(data []byte) (*Config, error) {
	return parse(data, nil)
}

func parse(data []byte, lookup env.LookupFunc) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	n := newNormalizer(lookup)
	n.normalize(&doc)

	cfg := &Config{}
	if doc.Kind != 0 {
		if err := doc.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Warnings = append(cfg.Warnings, n.warnings...)
	for _, name := range n.missing {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("environment variable %s is not set", name))
	}

	cfg.applyDefaults()
	return cfg, nil
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
