package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceAPI      = "api"
	SourceSupabase = "supabase"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	API        APIConfig        `json:"api" yaml:"api"`
	Source     SourceConfig     `json:"source" yaml:"source"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Filters    FiltersConfig    `json:"filters" yaml:"filters"`
	Apply      ApplyConfig      `json:"apply" yaml:"apply"`
	Auth       AuthConfig       `json:"auth" yaml:"auth"`
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// APIConfig holds the remote job portal endpoints
type APIConfig struct {
	JobsURL        string        `json:"jobs_url" yaml:"jobs_url"`
	JobsField      string        `json:"jobs_field" yaml:"jobs_field"`
	ApplyURL       string        `json:"apply_url" yaml:"apply_url"`
	AuthURL        string        `json:"auth_url" yaml:"auth_url"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// SourceConfig selects where the job collection comes from
type SourceConfig struct {
	Kind          string `json:"kind" yaml:"kind"`
	SupabaseURL   string `json:"supabase_url" yaml:"supabase_url"`
	SupabaseKey   string `json:"supabase_key" yaml:"supabase_key"`
	SupabaseTable string `json:"supabase_table" yaml:"supabase_table"`
}

// CacheConfig holds the Redis snapshot cache configuration
type CacheConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	RedisURL string        `json:"redis_url" yaml:"redis_url"`
	Key      string        `json:"key" yaml:"key"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

// FiltersConfig holds input surface configuration
type FiltersConfig struct {
	DebounceDelay time.Duration `json:"debounce_delay" yaml:"debounce_delay"`
}

// ApplyConfig holds application submission configuration
type ApplyConfig struct {
	MaxResumeBytes int `json:"max_resume_bytes" yaml:"max_resume_bytes"`
	RateLimit      int `json:"rate_limit" yaml:"rate_limit"`
}

// AuthConfig holds session configuration
type AuthConfig struct {
	TokenFile string `json:"token_file" yaml:"token_file"`
	RateLimit int    `json:"rate_limit" yaml:"rate_limit"`
}

// MonitoringConfig holds logging configuration
type MonitoringConfig struct {
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envInt("PORT", 8080),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		API: APIConfig{
			JobsURL:        envString("JOBS_URL", "https://jobportalassignmentbackend.onrender.com/api/alljobs"),
			JobsField:      "jobsdata",
			ApplyURL:       envString("APPLY_URL", "https://jobportalassignmentbackend.onrender.com/api/applyjobs"),
			AuthURL:        envString("AUTH_URL", "https://jobportalassignmentbackend-1.onrender.com/api"),
			RequestTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			Kind:          envString("JOB_SOURCE", SourceAPI),
			SupabaseURL:   os.Getenv("SUPABASE_URL"),
			SupabaseKey:   os.Getenv("SUPABASE_KEY"),
			SupabaseTable: "jobs",
		},
		Cache: CacheConfig{
			Enabled:  os.Getenv("REDIS_URL") != "",
			RedisURL: os.Getenv("REDIS_URL"),
			Key:      "jobboard:jobs",
			TTL:      10 * time.Minute,
		},
		Filters: FiltersConfig{
			DebounceDelay: 500 * time.Millisecond,
		},
		Apply: ApplyConfig{
			MaxResumeBytes: 5 * 1024 * 1024,
			RateLimit:      10,
		},
		Auth: AuthConfig{
			TokenFile: envString("TOKEN_FILE", defaultTokenFile()),
			RateLimit: 20,
		},
		Monitoring: MonitoringConfig{
			LogLevel: "info",
			LogFile:  "logs/jobboard.log",
		},
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobboard/token.json"
	}
	return filepath.Join(home, ".jobboard", "token.json")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads configuration from a JSON or YAML file
func LoadConfig(filename string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a JSON or YAML file
func (c *Config) SaveConfig(filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch c.Source.Kind {
	case SourceAPI:
		if err := requireURL("jobs URL", c.API.JobsURL); err != nil {
			return err
		}
	case SourceSupabase:
		if c.Source.SupabaseURL == "" {
			return fmt.Errorf("supabase URL is required")
		}
		if c.Source.SupabaseKey == "" {
			return fmt.Errorf("supabase key is required")
		}
	default:
		return fmt.Errorf("unknown job source %q", c.Source.Kind)
	}

	if err := requireURL("apply URL", c.API.ApplyURL); err != nil {
		return err
	}
	if err := requireURL("auth URL", c.API.AuthURL); err != nil {
		return err
	}

	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the cache is enabled")
	}

	if c.Filters.DebounceDelay < 0 {
		return fmt.Errorf("debounce delay cannot be negative")
	}

	if c.Apply.MaxResumeBytes <= 0 {
		return fmt.Errorf("max resume size must be positive")
	}

	if c.Auth.TokenFile == "" {
		return fmt.Errorf("token file is required")
	}

	return nil
}

func requireURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", name, raw)
	}
	return nil
}
