package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "VKBACKUP_"

// Placeholder values written by `config init` that must be replaced before a run
const (
	PlaceholderVKToken   = "YOUR_VK_TOKEN"
	PlaceholderDiskToken = "YOUR_DISK_TOKEN"
)

// Config holds all configuration options for the backup tool
type Config struct {
	// Photo source credentials
	VK VKConfig `yaml:"vk" json:"vk"`

	// Cloud destination
	Disk DiskConfig `yaml:"disk" json:"disk"`

	// Which photos to pick
	Selection SelectionConfig `yaml:"selection" json:"selection"`

	// Local file naming
	Naming NamingConfig `yaml:"naming" json:"naming"`

	// Local staging and results file
	Storage StorageConfig `yaml:"storage" json:"storage"`

	HTTP  HTTPConfig  `yaml:"http" json:"http"`
	Retry RetryConfig `yaml:"retry" json:"retry"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
}

// VKConfig holds photo-source settings
type VKConfig struct {
	Token      string `yaml:"token" json:"token"`
	UserID     int64  `yaml:"user_id" json:"user_id"`
	APIVersion string `yaml:"api_version" json:"api_version"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
}

// DiskConfig holds destination settings
type DiskConfig struct {
	// Backend is "yadisk" (default) or "s3"
	Backend   string   `yaml:"backend" json:"backend"`
	Token     string   `yaml:"token" json:"token"`
	Folder    string   `yaml:"folder" json:"folder"`
	BaseURL   string   `yaml:"base_url" json:"base_url"`
	Overwrite bool     `yaml:"overwrite" json:"overwrite"`
	S3        S3Config `yaml:"s3" json:"s3"`
}

// S3Config holds settings for an S3-compatible destination bucket
type S3Config struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Region    string `yaml:"region" json:"region"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// SelectionConfig holds photo selection settings
type SelectionConfig struct {
	Limit int `yaml:"limit" json:"limit"`
}

// NamingConfig controls local and remote file names
type NamingConfig struct {
	Prefix         string `yaml:"prefix" json:"prefix"`
	IncludePhotoID bool   `yaml:"include_photo_id" json:"include_photo_id"`
}

// StorageConfig controls where downloaded photos are staged
type StorageConfig struct {
	KeepLocal  bool   `yaml:"keep_local" json:"keep_local"`
	LocalDir   string `yaml:"local_dir" json:"local_dir"`
	ReportFile string `yaml:"report_file" json:"report_file"`
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RetryConfig holds retry settings. MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	Progress      bool `yaml:"progress" json:"progress"`
	TUI           bool `yaml:"tui" json:"tui"`
	Color         bool `yaml:"color" json:"color"`
	Notifications bool `yaml:"notifications" json:"notifications"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		VK: VKConfig{
			APIVersion: "5.199",
			BaseURL:    "https://api.vk.com",
		},
		Disk: DiskConfig{
			Backend:   "yadisk",
			Folder:    "vk_photos",
			BaseURL:   "https://cloud-api.yandex.net",
			Overwrite: true,
			S3: S3Config{
				Region: "us-east-1",
				UseSSL: true,
			},
		},
		Selection: SelectionConfig{
			Limit: 5,
		},
		Naming: NamingConfig{
			Prefix: "photo",
		},
		Storage: StorageConfig{
			KeepLocal:  false,
			LocalDir:   ".",
			ReportFile: "photos_info.json",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Progress:      true,
			Color:         true,
			Notifications: false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "VK_TOKEN"); v != "" {
		c.VK.Token = v
	}
	if v := os.Getenv(EnvPrefix + "VK_USER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sVK_USER_ID: %w", EnvPrefix, err))
		} else {
			c.VK.UserID = id
		}
	}
	if v := os.Getenv(EnvPrefix + "VK_API_VERSION"); v != "" {
		c.VK.APIVersion = v
	}

	if v := os.Getenv(EnvPrefix + "DISK_TOKEN"); v != "" {
		c.Disk.Token = v
	}
	if v := os.Getenv(EnvPrefix + "DISK_FOLDER"); v != "" {
		c.Disk.Folder = v
	}
	if v := os.Getenv(EnvPrefix + "DISK_BACKEND"); v != "" {
		c.Disk.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "S3_ACCESS_KEY"); v != "" {
		c.Disk.S3.AccessKey = v
	}
	if v := os.Getenv(EnvPrefix + "S3_SECRET_KEY"); v != "" {
		c.Disk.S3.SecretKey = v
	}

	if v := os.Getenv(EnvPrefix + "LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLIMIT: %w", EnvPrefix, err))
		} else {
			c.Selection.Limit = n
		}
	}

	if v := os.Getenv(EnvPrefix + "KEEP_LOCAL"); v != "" {
		c.Storage.KeepLocal = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"vkbackup.yaml",
		".vkbackup.yaml",
		".vkbackup.yml",
		filepath.Join(home, ".config", "vkbackup", "config.yaml"),
		filepath.Join(home, ".vkbackup.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is internally consistent. Missing
// credentials are reported by ValidateCredentials so that `config show` works
// before tokens are configured.
func (c *Config) Validate() error {
	var errs []error

	if c.VK.APIVersion == "" {
		errs = append(errs, errors.New("vk api version is required"))
	}
	if c.VK.BaseURL == "" {
		errs = append(errs, errors.New("vk base url is required"))
	}

	switch c.Disk.Backend {
	case "yadisk":
		if c.Disk.BaseURL == "" {
			errs = append(errs, errors.New("disk base url is required"))
		}
	case "s3":
		if c.Disk.S3.Endpoint == "" {
			errs = append(errs, errors.New("s3 endpoint is required"))
		}
		if c.Disk.S3.Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown disk backend %q", c.Disk.Backend))
	}
	if strings.TrimSpace(c.Disk.Folder) == "" {
		errs = append(errs, errors.New("destination folder is required"))
	}

	if c.Selection.Limit <= 0 {
		errs = append(errs, errors.New("selection limit must be positive"))
	}
	if c.Naming.Prefix == "" {
		errs = append(errs, errors.New("file name prefix is required"))
	}
	if strings.ContainsAny(c.Naming.Prefix, `/\`) {
		errs = append(errs, errors.New("file name prefix must not contain path separators"))
	}
	if c.Storage.KeepLocal && c.Storage.LocalDir == "" {
		errs = append(errs, errors.New("local dir is required when keep_local is set"))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		errs = append(errs, errors.New("retry max attempts must be between 1 and 10"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if f := strings.ToLower(c.Logging.Format); f != "" && f != "text" && f != "json" {
		errs = append(errs, errors.New("log format must be text or json"))
	}

	return errors.Join(errs...)
}

// ValidateCredentials reports missing or placeholder tokens needed for a run
func (c *Config) ValidateCredentials() error {
	var errs []error

	if c.VK.Token == "" || c.VK.Token == PlaceholderVKToken {
		errs = append(errs, errors.New("vk access token is required"))
	}
	if c.VK.UserID == 0 {
		errs = append(errs, errors.New("vk user id is required"))
	}

	switch c.Disk.Backend {
	case "s3":
		if c.Disk.S3.AccessKey == "" || c.Disk.S3.SecretKey == "" {
			errs = append(errs, errors.New("s3 access and secret keys are required"))
		}
	default:
		if c.Disk.Token == "" || c.Disk.Token == PlaceholderDiskToken {
			errs = append(errs, errors.New("disk oauth token is required"))
		}
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["vk-token"].(string); ok && v != "" {
		c.VK.Token = v
	}
	if v, ok := flags["user-id"].(int64); ok && v != 0 {
		c.VK.UserID = v
	}
	if v, ok := flags["disk-token"].(string); ok && v != "" {
		c.Disk.Token = v
	}
	if v, ok := flags["folder"].(string); ok && v != "" {
		c.Disk.Folder = v
	}
	if v, ok := flags["backend"].(string); ok && v != "" {
		c.Disk.Backend = strings.ToLower(v)
	}
	if v, ok := flags["limit"].(int); ok && v > 0 {
		c.Selection.Limit = v
	}
	if v, ok := flags["keep-local"].(bool); ok {
		c.Storage.KeepLocal = v
	}
	if v, ok := flags["local-dir"].(string); ok && v != "" {
		c.Storage.LocalDir = v
	}
	if v, ok := flags["report"].(string); ok && v != "" {
		c.Storage.ReportFile = v
	}
	if v, ok := flags["max-attempts"].(int); ok && v > 0 {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.HTTP.Timeout = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["tui"].(bool); ok {
		c.UI.TUI = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.UI.Notifications = v
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.UI.Color = false
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vkbackup.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
