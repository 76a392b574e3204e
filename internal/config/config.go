// Package config handles the docfetch YAML configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level docfetch configuration.
type Config struct {
	Portal     PortalConfig     `yaml:"portal"`
	Browser    BrowserConfig    `yaml:"browser"`
	Download   DownloadConfig   `yaml:"download"`
	FileSearch FileSearchConfig `yaml:"filesearch"`
	LogLevel   string           `yaml:"log_level"` // debug | info | warn | error
}

// PortalConfig selects the portal and listing defaults.
type PortalConfig struct {
	BaseURL string `yaml:"base_url"`
	Limit   int    `yaml:"limit"`
}

// BrowserConfig controls the attachment to the external Chrome.
type BrowserConfig struct {
	Remote            string        `yaml:"remote"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	NavigationRate    float64       `yaml:"navigation_rate"` // navigations per second
	ResourceBlocking  []string      `yaml:"resource_blocking"`
}

// DownloadConfig controls where artifacts go and the direct transfer.
type DownloadConfig struct {
	Dir       string        `yaml:"dir"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// FileSearchConfig configures the file-search collaborator.
type FileSearchConfig struct {
	Manifest        string `yaml:"manifest"` // .json or .db / .sqlite
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	Bucket          string `yaml:"bucket"`
	Model           string `yaml:"model"`
	CredentialsFile string `yaml:"credentials_file"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = "https://online.budstandart.com"
	}
	if c.Portal.Limit <= 0 {
		c.Portal.Limit = 20
	}
	if c.Browser.Remote == "" {
		c.Browser.Remote = "http://localhost:9222"
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}
	if c.Browser.NavigationRate <= 0 {
		c.Browser.NavigationRate = 2
	}
	if c.Download.Dir == "" {
		c.Download.Dir = "."
	}
	if c.Download.Timeout <= 0 {
		c.Download.Timeout = 2 * time.Minute
	}
	if c.FileSearch.Manifest == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.FileSearch.Manifest = filepath.Join(home, ".docfetch", "stores.json")
		} else {
			c.FileSearch.Manifest = ".docfetch-stores.json"
		}
	}
	if c.FileSearch.Location == "" {
		c.FileSearch.Location = "us-central1"
	}
	if c.FileSearch.Model == "" {
		c.FileSearch.Model = "gemini-2.0-flash"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
