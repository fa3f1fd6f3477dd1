package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "postgres://localhost:5432/jobs"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn is required"},
		{"min above max conns", func(c *Config) { c.Database.MinConns = 20 }, "database.min_conns"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, `cache.driver must be "redis" or "none", got "memcached"`},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = CacheDriverRedis }, "cache.addrs is required"},
		{"local ttl above ttl", func(c *Config) { c.Cache.LocalTTLSec = 3600 }, "cache.local_ttl_sec"},
		{"negative local ttl", func(c *Config) { c.Cache.LocalTTLSec = -1 }, "cache.local_ttl_sec"},
		{"default above max page", func(c *Config) { c.Search.DefaultPageSize = 500 }, "search.default_page_size"},
		{"seed without file", func(c *Config) { c.Taxonomy.Source = TaxonomySourceSeed }, "taxonomy.seed_file is required"},
		{"unknown taxonomy source", func(c *Config) { c.Taxonomy.Source = "csv" }, "taxonomy.source"},
		{"unknown geolocation provider", func(c *Config) { c.Geolocation.Provider = "gps" }, "geolocation.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_RedisWithAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheDriverRedis
	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Cache.Enabled() {
		t.Error("expected cache to be enabled")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.MaxConns != 10 || cfg.Database.ListingsTable != "job_listings" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Cache.Driver != CacheDriverNone || cfg.Cache.Enabled() {
		t.Errorf("expected cache disabled by default, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 600 || cfg.Cache.KeyPrefix != "jobscout:loc:" {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Search.DefaultPageSize != 20 || cfg.Search.MaxPageSize != 100 || cfg.Search.CandidateBatchSize != 500 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Taxonomy.Source != TaxonomySourcePostgres || cfg.Taxonomy.PageLimit != 100 || cfg.Taxonomy.MaxChildren != 1000 {
		t.Errorf("unexpected taxonomy defaults: %+v", cfg.Taxonomy)
	}
	if cfg.Geolocation.Provider != GeolocationNone || cfg.Geolocation.TimeoutMS != 5000 {
		t.Errorf("unexpected geolocation defaults: %+v", cfg.Geolocation)
	}
	if cfg.Session.DebounceMS != 300 {
		t.Errorf("expected DebounceMS=300, got %d", cfg.Session.DebounceMS)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache:    CacheConfig{KeyPrefix: "custom:", TTLSec: 60},
		Search:   SearchConfig{CandidateBatchSize: 200},
		Session:  SessionConfig{DebounceMS: 150},
		Database: DatabaseConfig{ListingsTable: "public.jobs"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "custom:" || cfg.Cache.TTLSec != 60 {
		t.Errorf("cache settings overridden: %+v", cfg.Cache)
	}
	if cfg.Search.CandidateBatchSize != 200 {
		t.Errorf("expected CandidateBatchSize=200, got %d", cfg.Search.CandidateBatchSize)
	}
	if cfg.Session.DebounceMS != 150 {
		t.Errorf("expected DebounceMS=150, got %d", cfg.Session.DebounceMS)
	}
	if cfg.Database.ListingsTable != "public.jobs" {
		t.Errorf("expected ListingsTable=public.jobs, got %q", cfg.Database.ListingsTable)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_DSN", "postgres://db/jobs")
	t.Setenv("JOBSCOUT_TEST_EMPTY", "")

	got := string(expandEnvVars([]byte("a: ${JOBSCOUT_TEST_DSN}\nb: ${JOBSCOUT_TEST_EMPTY:-fallback}\nc: ${JOBSCOUT_TEST_UNSET}")))
	want := "a: postgres://db/jobs\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yml := `
http:
  port: ${JOBSCOUT_TEST_PORT:-9090}
database:
  dsn: postgres://localhost/jobs
cache:
  driver: redis
  addrs: ["localhost:6379"]
geolocation:
  provider: ipapi
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if !cfg.Cache.Enabled() || cfg.Geolocation.Provider != GeolocationIPAPI {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Search.CandidateBatchSize != 500 {
		t.Errorf("defaults not applied: %+v", cfg.Search)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config")
	}
}
