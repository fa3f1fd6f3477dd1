package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the jobscout configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	Search      SearchConfig      `yaml:"search"`
	Taxonomy    TaxonomyConfig    `yaml:"taxonomy"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	Session     SessionConfig     `yaml:"session"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the Postgres connection settings for listings and the location catalog.
type DatabaseConfig struct {
	DSN              string `yaml:"dsn"`
	MaxConns         int32  `yaml:"max_conns"`
	MinConns         int32  `yaml:"min_conns"`
	ListingsTable    string `yaml:"listings_table"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the location cache settings.
type CacheConfig struct {
	Driver    string   `yaml:"driver"` // redis, none (default: none)
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	TTLSec    int      `yaml:"ttl_sec"`
	KeyPrefix string   `yaml:"key_prefix"`
	// LocalTTLSec enables client-side caching of cache reads. 0 disables it.
	LocalTTLSec int `yaml:"local_ttl_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != CacheDriverNone }

// SearchConfig holds paging and candidate batch settings.
type SearchConfig struct {
	DefaultPageSize    int `yaml:"default_page_size"`
	MaxPageSize        int `yaml:"max_page_size"`
	CandidateBatchSize int `yaml:"candidate_batch_size"`
}

// TaxonomyConfig holds location catalog settings.
type TaxonomyConfig struct {
	Source      string `yaml:"source"`    // postgres, seed (default: postgres)
	SeedFile    string `yaml:"seed_file"` // required for source=seed
	PageLimit   int    `yaml:"page_limit"`
	MaxChildren int    `yaml:"max_children"`
}

// GeolocationConfig holds "near me" settings.
type GeolocationConfig struct {
	Provider      string `yaml:"provider"` // none, ipapi (default: none)
	BaseURL       string `yaml:"base_url"`
	TimeoutMS     int    `yaml:"timeout_ms"`
	RatePerMinute int    `yaml:"rate_per_minute"`
}

// SessionConfig holds interactive session settings.
type SessionConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Accepted enum values.
const (
	CacheDriverRedis = "redis"
	CacheDriverNone  = "none"

	TaxonomySourcePostgres = "postgres"
	TaxonomySourceSeed     = "seed"

	GeolocationNone  = "none"
	GeolocationIPAPI = "ipapi"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.ListingsTable == "" {
		c.Database.ListingsTable = "job_listings"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverNone
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "jobscout:loc:"
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.CandidateBatchSize <= 0 {
		c.Search.CandidateBatchSize = 500
	}
	if c.Taxonomy.Source == "" {
		c.Taxonomy.Source = TaxonomySourcePostgres
	}
	if c.Taxonomy.PageLimit <= 0 {
		c.Taxonomy.PageLimit = 100
	}
	if c.Taxonomy.MaxChildren <= 0 {
		c.Taxonomy.MaxChildren = 1000
	}
	if c.Geolocation.Provider == "" {
		c.Geolocation.Provider = GeolocationNone
	}
	if c.Geolocation.TimeoutMS <= 0 {
		c.Geolocation.TimeoutMS = 5000
	}
	if c.Geolocation.RatePerMinute <= 0 {
		c.Geolocation.RatePerMinute = 45
	}
	if c.Session.DebounceMS <= 0 {
		c.Session.DebounceMS = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	switch c.Cache.Driver {
	case CacheDriverNone:
	case CacheDriverRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"redis\" or \"none\", got %q", c.Cache.Driver)
	}
	if c.Cache.LocalTTLSec < 0 || c.Cache.LocalTTLSec > c.Cache.TTLSec {
		return fmt.Errorf("cache.local_ttl_sec must be between 0 and ttl_sec (%d), got %d",
			c.Cache.TTLSec, c.Cache.LocalTTLSec)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	switch c.Taxonomy.Source {
	case TaxonomySourcePostgres:
	case TaxonomySourceSeed:
		if c.Taxonomy.SeedFile == "" {
			return fmt.Errorf("taxonomy.seed_file is required for source %q", c.Taxonomy.Source)
		}
	default:
		return fmt.Errorf("taxonomy.source must be \"postgres\" or \"seed\", got %q", c.Taxonomy.Source)
	}
	switch c.Geolocation.Provider {
	case GeolocationNone, GeolocationIPAPI:
	default:
		return fmt.Errorf("geolocation.provider must be \"ipapi\" or \"none\", got %q", c.Geolocation.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
