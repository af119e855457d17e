package common

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig      `yaml:"ocr"`
	Identity IdentityConfig `yaml:"identity"`
	Cache    CacheConfig    `yaml:"cache"`
	Batch    BatchConfig    `yaml:"batch"`
	Log      LogConfig      `yaml:"log"`
}

// OCRConfig holds OCR-related configuration. OCR is only used when Enabled.
type OCRConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Tesseract   string        `yaml:"tesseract"`
	Pdftoppm    string        `yaml:"pdftoppm"`
	Language    string        `yaml:"language"`
	TessdataDir string        `yaml:"tessdata_dir"`
	DPI         int           `yaml:"dpi"`
	PSM         int           `yaml:"psm"`
	OEM         int           `yaml:"oem"`
	Retries     int           `yaml:"retries"`
	Timeout     time.Duration `yaml:"timeout"`
}

// IdentityConfig holds identifier prefixes.
type IdentityConfig struct {
	Prefix          string `yaml:"prefix"`
	UniversalPrefix string `yaml:"universal_prefix"`
}

// CacheConfig holds the byte-identical memo cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

// BatchConfig holds directory batch settings.
type BatchConfig struct {
	Workers    int           `yaml:"workers"`
	Timeout    time.Duration `yaml:"timeout"`
	SkipHidden bool          `yaml:"skip_hidden"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Enabled:   false,
			Tesseract: "tesseract",
			Pdftoppm:  "pdftoppm",
			Language:  "pol+eng",
			DPI:       300,
			PSM:       6,
			OEM:       1,
			Timeout:   2 * time.Minute,
		},
		Identity: IdentityConfig{
			Prefix:          "DOC",
			UniversalPrefix: "UNIV",
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    1024,
		},
		Batch: BatchConfig{
			Workers:    runtime.NumCPU(),
			Timeout:    5 * time.Minute,
			SkipHidden: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig layers defaults, an optional YAML file and environment variables.
// When path is empty DOCID_CONFIG is consulted.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("DOCID_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			e := NewAppError(CodeConfig, fmt.Sprintf("read config %q", path), ErrConfig)
			e.Cause = err
			return nil, e
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			e := NewAppError(CodeConfig, fmt.Sprintf("parse config %q", path), ErrConfig)
			e.Cause = err
			return nil, e
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OCR.Enabled = getEnvAsBool("DOCID_OCR_ENABLED", c.OCR.Enabled)
	c.OCR.Tesseract = getEnv("DOCID_TESSERACT", c.OCR.Tesseract)
	c.OCR.Pdftoppm = getEnv("DOCID_PDFTOPPM", c.OCR.Pdftoppm)
	c.OCR.Language = getEnv("DOCID_OCR_LANG", c.OCR.Language)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.DPI = getEnvAsInt("DOCID_OCR_DPI", c.OCR.DPI)
	c.OCR.PSM = getEnvAsInt("DOCID_OCR_PSM", c.OCR.PSM)
	c.OCR.OEM = getEnvAsInt("DOCID_OCR_OEM", c.OCR.OEM)
	c.OCR.Retries = getEnvAsInt("DOCID_OCR_RETRIES", c.OCR.Retries)
	c.OCR.Timeout = getEnvAsDuration("DOCID_OCR_TIMEOUT", c.OCR.Timeout)

	c.Identity.Prefix = getEnv("DOCID_PREFIX", c.Identity.Prefix)
	c.Identity.UniversalPrefix = getEnv("DOCID_UNIVERSAL_PREFIX", c.Identity.UniversalPrefix)

	c.Cache.Enabled = getEnvAsBool("DOCID_CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.Size = getEnvAsInt("DOCID_CACHE_SIZE", c.Cache.Size)

	c.Batch.Workers = getEnvAsInt("DOCID_BATCH_WORKERS", c.Batch.Workers)
	c.Batch.Timeout = getEnvAsDuration("DOCID_BATCH_TIMEOUT", c.Batch.Timeout)

	c.Log.Level = getEnv("DOCID_LOG_LEVEL", c.Log.Level)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

var prefixRe = regexp.MustCompile(`^[A-Z0-9]+$`)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if !prefixRe.MatchString(c.Identity.Prefix) {
		return NewAppError(CodeConfig, "identity prefix must be upper-case alphanumeric", ErrConfig)
	}
	if !prefixRe.MatchString(c.Identity.UniversalPrefix) {
		return NewAppError(CodeConfig, "universal prefix must be upper-case alphanumeric", ErrConfig)
	}
	if c.Identity.Prefix == c.Identity.UniversalPrefix {
		return NewAppError(CodeConfig, "business and universal prefixes must differ", ErrConfig)
	}
	if c.OCR.Enabled {
		if c.OCR.Tesseract == "" {
			return NewAppError(CodeConfig, "tesseract binary is required when OCR is enabled", ErrConfig)
		}
		if c.OCR.DPI <= 0 {
			return NewAppError(CodeConfig, "OCR DPI must be positive", ErrConfig)
		}
	}
	if c.OCR.Retries < 0 {
		return NewAppError(CodeConfig, "OCR retries must not be negative", ErrConfig)
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return NewAppError(CodeConfig, "cache size must be positive", ErrConfig)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError(CodeConfig, "batch workers must be positive", ErrConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		e := NewAppError(CodeConfig, "invalid log level", ErrConfig)
		e.Cause = err
		return e
	}
	return nil
}

// ParseLogLevel maps debug/info/warn/error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
