// Package config loads the optional gitbackup.yaml file.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/tklauser/numcpus"
	"gopkg.in/yaml.v3"

	"github.com/NicabarNimble/go-gitbackup/internal/urlutils"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "gitbackup.yaml"

// Lister names.
const (
	ListerGH  = "gh"
	ListerAPI = "api"
)

// Syncer names.
const (
	SyncerGH    = "gh"
	SyncerGit   = "git"
	SyncerGoGit = "go-git"
)

// Config is the on-disk configuration. Zero values are replaced by defaults in
// MergeDefaults, except Limit and Concurrency where zero is meaningful.
type Config struct {
	Organization string `yaml:"organization"`
	Limit        *int   `yaml:"limit,omitempty"`
	Concurrency  int    `yaml:"concurrency,omitempty"`
	Directory    string `yaml:"directory,omitempty"`
	Lister       string `yaml:"lister,omitempty"`
	Syncer       string `yaml:"syncer,omitempty"`
	APIURL       string `yaml:"api_url,omitempty"`
	GitHost      string `yaml:"git_host,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`
	LogFormat    string `yaml:"log_format,omitempty"`
}

// DefaultLimit is the number of repositories listed when none is configured.
const DefaultLimit = 10

// DefaultConfig provides default configuration values
func DefaultConfig() *Config {
	limit := DefaultLimit
	return &Config{
		Limit:     &limit,
		Directory: ".",
		Lister:    ListerGH,
		Syncer:    SyncerGH,
		APIURL:    "https://api.github.com",
		GitHost:   "github.com",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.MergeDefaults()
	return cfg, nil
}

// MergeDefaults merges default values for unset fields
func (c *Config) MergeDefaults() {
	def := DefaultConfig()
	if c.Limit == nil {
		c.Limit = def.Limit
	}
	if c.Directory == "" {
		c.Directory = def.Directory
	}
	if c.Lister == "" {
		c.Lister = def.Lister
	}
	if c.Syncer == "" {
		c.Syncer = def.Syncer
	}
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.GitHost == "" {
		c.GitHost = def.GitHost
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
}

// ListLimit returns the configured limit, or DefaultLimit when unset.
func (c *Config) ListLimit() int {
	if c.Limit == nil {
		return DefaultLimit
	}
	return *c.Limit
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Organization == "" {
		return fmt.Errorf("organization is required")
	}
	if err := urlutils.ValidateOwner(c.Organization); err != nil {
		return fmt.Errorf("invalid organization: %w", err)
	}
	if limit := c.ListLimit(); limit < 0 || limit > math.MaxUint16 {
		return fmt.Errorf("limit must be between 0 and %d, got %d", math.MaxUint16, limit)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	switch c.Lister {
	case ListerGH, ListerAPI:
	default:
		return fmt.Errorf("unknown lister %q (want %s or %s)", c.Lister, ListerGH, ListerAPI)
	}
	switch c.Syncer {
	case SyncerGH, SyncerGit, SyncerGoGit:
	default:
		return fmt.Errorf("unknown syncer %q (want %s)", c.Syncer,
			strings.Join([]string{SyncerGH, SyncerGit, SyncerGoGit}, ", "))
	}
	if c.Lister == ListerAPI {
		if _, err := urlutils.ParseHTTPSURL(c.APIURL); err != nil {
			return fmt.Errorf("invalid api_url: %w", err)
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// EffectiveConcurrency returns the configured bound on simultaneous syncs, or the
// number of online CPUs when unset.
func (c *Config) EffectiveConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return HostParallelism()
}

// HostParallelism reports how many CPUs are online, never less than one.
func HostParallelism() int {
	if n, err := numcpus.GetOnline(); err == nil && n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}
