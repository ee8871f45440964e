package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendS3    = "s3"
	BackendLocal = "local"
)

// Config represents the application configuration
type Config struct {
	ImagesBucket   string        `yaml:"images_bucket"`
	PagesBucket    string        `yaml:"pages_bucket"`
	Region         string        `yaml:"region"`
	CDNBaseURL     string        `yaml:"cloudfront_url"`
	ProfileBaseURL string        `yaml:"profile_base_url"`
	ClubName       string        `yaml:"club_name"`
	SignedURLTTL   time.Duration `yaml:"signed_url_ttl"`

	PhotosDir string `yaml:"photos_dir"`
	OutputDir string `yaml:"output_dir"`
	MaxWidth  int    `yaml:"max_width"`

	Roster  RosterConfig  `yaml:"roster"`
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Log     LogConfig     `yaml:"log"`
}

type RosterConfig struct {
	File       string `yaml:"file"`
	ImagesDir  string `yaml:"images_dir"`
	QRCodesDir string `yaml:"qrcodes_dir"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	LocalRoot string `yaml:"local_root"`
	LocalURL  string `yaml:"local_url"`
}

type LedgerConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// envBindings maps environment variables onto config fields. The environment wins over the
// YAML file.
var envBindings = []struct {
	key   string
	field func(*Config) *string
}{
	{"IMAGES_BUCKET", func(c *Config) *string { return &c.ImagesBucket }},
	{"PAGES_BUCKET", func(c *Config) *string { return &c.PagesBucket }},
	{"REGION", func(c *Config) *string { return &c.Region }},
	{"CLOUDFRONT_URL", func(c *Config) *string { return &c.CDNBaseURL }},
	{"PROFILE_BASE_URL", func(c *Config) *string { return &c.ProfileBaseURL }},
	{"CLUB_NAME", func(c *Config) *string { return &c.ClubName }},
	{"PHOTOS_DIR", func(c *Config) *string { return &c.PhotosDir }},
	{"OUTPUT_DIR", func(c *Config) *string { return &c.OutputDir }},
	{"ROSTER_FILE", func(c *Config) *string { return &c.Roster.File }},
	{"STORAGE_BACKEND", func(c *Config) *string { return &c.Storage.Backend }},
	{"LOCAL_STORAGE_ROOT", func(c *Config) *string { return &c.Storage.LocalRoot }},
	{"LOCAL_STORAGE_URL", func(c *Config) *string { return &c.Storage.LocalURL }},
	{"LEDGER_PATH", func(c *Config) *string { return &c.Ledger.Path }},
	{"LOG_LEVEL", func(c *Config) *string { return &c.Log.Level }},
}

// Load reads .env (if present), the optional YAML file at path and the environment, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	for _, b := range envBindings {
		if v := strings.TrimSpace(os.Getenv(b.key)); v != "" {
			*b.field(c) = v
		}
	}
}

func (c *Config) setDefaults() {
	if c.ClubName == "" {
		c.ClubName = "Big Backs Club"
	}
	if c.SignedURLTTL == 0 {
		c.SignedURLTTL = 365 * 24 * time.Hour
	}
	if c.PhotosDir == "" {
		c.PhotosDir = "./images"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.Roster.File == "" {
		c.Roster.File = "members.json"
	}
	if c.Roster.ImagesDir == "" {
		c.Roster.ImagesDir = "images"
	}
	if c.Roster.QRCodesDir == "" {
		c.Roster.QRCodesDir = "qrcodes"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendS3
	}
	if c.Storage.LocalRoot == "" {
		c.Storage.LocalRoot = "./bucket"
	}
	if c.Storage.LocalURL == "" {
		c.Storage.LocalURL = "http://localhost:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.CDNBaseURL = strings.TrimRight(c.CDNBaseURL, "/")
	c.ProfileBaseURL = strings.TrimRight(c.ProfileBaseURL, "/")
}

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendS3, BackendLocal:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendS3, BackendLocal, c.Storage.Backend)
	}
	if c.SignedURLTTL < 0 {
		return fmt.Errorf("signed_url_ttl must be positive")
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max_width must not be negative")
	}
	return nil
}

// ValidatePublish checks the fields a publish run needs
func (c *Config) ValidatePublish() error {
	if c.ImagesBucket == "" {
		return fmt.Errorf("IMAGES_BUCKET is required")
	}
	if c.PagesBucket == "" {
		return fmt.Errorf("PAGES_BUCKET is required")
	}
	if c.CDNBaseURL == "" {
		return fmt.Errorf("CLOUDFRONT_URL is required")
	}
	if c.Storage.Backend == BackendS3 && c.Region == "" {
		return fmt.Errorf("REGION is required for the s3 backend")
	}
	return nil
}
