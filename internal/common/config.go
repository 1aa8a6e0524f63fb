package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig      `mapstructure:"ocr"`
	Database DatabaseConfig `mapstructure:"database"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
}

// OCRConfig locates the external rendering toolkit and recognition engine.
type OCRConfig struct {
	PopplerPath  string `mapstructure:"poppler_path"`  // directory holding pdftoppm (or the binary itself)
	TesseractCmd string `mapstructure:"tesseract_cmd"` // tesseract executable
	Lang         string `mapstructure:"lang"`
	TessdataDir  string `mapstructure:"tessdata_dir"`
	DPI          int    `mapstructure:"dpi"`
	PSM          int    `mapstructure:"psm"`
	MaxPages     int    `mapstructure:"max_pages"`
}

// DatabaseConfig holds the optional result store configuration
type DatabaseConfig struct {
	DSN         string        `mapstructure:"dsn"`
	MaxConns    int32         `mapstructure:"max_conns"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// BatchConfig controls multi-document runs
type BatchConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Debounce  time.Duration `mapstructure:"debounce"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the environment variables consulted, in order.
var envBindings = map[string][]string{
	"ocr.poppler_path":      {"POPPLER_PATH", "POPPLER_BIN"},
	"ocr.tesseract_cmd":     {"TESSERACT_CMD"},
	"ocr.lang":              {"TESSERACT_LANG"},
	"ocr.tessdata_dir":      {"TESSDATA_PREFIX"},
	"ocr.dpi":               {"INVOICE_OCR_DPI"},
	"ocr.psm":               {"INVOICE_OCR_PSM"},
	"ocr.max_pages":         {"INVOICE_OCR_MAX_PAGES"},
	"database.dsn":          {"DB_URL"},
	"database.max_conns":    {"DB_MAX_CONNS"},
	"database.dial_timeout": {"DB_DIAL_TIMEOUT"},
	"batch.workers":         {"INVOICE_WORKERS"},
	"batch.queue_size":      {"INVOICE_QUEUE_SIZE"},
	"batch.timeout":         {"INVOICE_TIMEOUT"},
	"batch.debounce":        {"INVOICE_WATCH_DEBOUNCE"},
	"log.level":             {"LOG_LEVEL"},
}

// LoadConfig resolves configuration from defaults, an optional YAML file and the environment.
// An empty cfgFile means no file is read.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.queue_size", 256)
	v.SetDefault("batch.timeout", 3*time.Minute)
	v.SetDefault("batch.debounce", 500*time.Millisecond)
	v.SetDefault("log.level", "")

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	return &cfg, nil
}

// Validate checks the values a multi-document run depends on.
func (c *Config) Validate() error {
	if c.OCR.DPI <= 0 {
		return NewAppError(CodeConfig, "ocr dpi must be positive", ErrInvalidInput)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError(CodeConfig, "INVOICE_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Batch.Timeout < 0 {
		return NewAppError(CodeConfig, "INVOICE_TIMEOUT must not be negative", ErrInvalidInput)
	}
	return nil
}
