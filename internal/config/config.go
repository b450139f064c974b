package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docsearch configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// FieldSet names a group of fields searched by terms without an explicit field.
type FieldSet struct {
	Key    string   `yaml:"key"`
	Fields []string `yaml:"fields"`
}

// SearchConfig holds the defaults of a search session.
type SearchConfig struct {
	DefaultIndex    string     `yaml:"default_index"`
	DefaultSize     int        `yaml:"default_size"`
	MaxSize         int        `yaml:"max_size"`
	DefaultSort     string     `yaml:"default_sort"`
	DefaultField    string     `yaml:"default_field"`
	Fields          []FieldSet `yaml:"fields"`
	PollIntervalSec int        `yaml:"poll_interval_sec"`
	// ResetExcluded lists the state keys kept across a reset.
	ResetExcluded []string `yaml:"reset_excluded"`
	// DownloadIndices lists the indices whose documents may be downloaded.
	DownloadIndices []string `yaml:"download_indices"`
}

// FieldSet returns the fields of a field set.
func (s SearchConfig) FieldSet(key string) ([]string, bool) {
	i := slices.IndexFunc(s.Fields, func(f FieldSet) bool { return f.Key == key })
	if i < 0 {
		return nil, false
	}
	return s.Fields[i].Fields, true
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then
// applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docsearch:"
	}
	c.Search.applyDefaults()
}

func (s *SearchConfig) applyDefaults() {
	if s.DefaultIndex == "" {
		s.DefaultIndex = "local-datashare"
	}
	if s.DefaultSize <= 0 {
		s.DefaultSize = 25
	}
	if s.MaxSize <= 0 {
		s.MaxSize = 1000
	}
	if s.DefaultSort == "" {
		s.DefaultSort = "relevance"
	}
	if len(s.Fields) == 0 {
		s.Fields = []FieldSet{
			{Key: "all", Fields: []string{"content", "path", "tags", "metadata"}},
			{Key: "name", Fields: []string{"path"}},
			{Key: "content", Fields: []string{"content"}},
			{Key: "path", Fields: []string{"path", "dirname"}},
			{Key: "tags", Fields: []string{"tags"}},
		}
	}
	if s.DefaultField == "" {
		s.DefaultField = s.Fields[0].Key
	}
	if s.PollIntervalSec <= 0 {
		s.PollIntervalSec = 5
	}
	if s.ResetExcluded == nil {
		s.ResetExcluded = []string{"index", "showFilters", "layout", "size", "sort"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.DefaultSize > c.Search.MaxSize {
		return fmt.Errorf("search.default_size (%d) exceeds search.max_size (%d)",
			c.Search.DefaultSize, c.Search.MaxSize)
	}
	for i, fs := range c.Search.Fields {
		if fs.Key == "" || len(fs.Fields) == 0 {
			return fmt.Errorf("search.fields[%d] requires a key and at least one field", i)
		}
	}
	if _, ok := c.Search.FieldSet(c.Search.DefaultField); !ok {
		return fmt.Errorf("search.default_field %q names no field set", c.Search.DefaultField)
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
