// Package config handles autoquiz configuration
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/ocr"
	"github.com/GriffinCanCode/autoquiz/internal/screen"
	"github.com/GriffinCanCode/autoquiz/internal/translate"
)

// EnvPrefix is prepended to every environment variable, e.g.
// AUTOQUIZ_QUESTION_REGION_X.
const EnvPrefix = "AUTOQUIZ"

// Backend names accepted by Validate.
var (
	FingerprintModes = []string{"grid", "phash"}
	Translators      = []string{"google", "gemini", "static"}
	OCRBackends      = []string{"tesseract", "grpc"}
	Clickers         = []string{"robotgo", "serial"}
)

type Config struct {
	QuestionRegion screen.Region `mapstructure:"question_region"`
	OptionsRegion  screen.Region `mapstructure:"options_region"`
	Slots          int           `mapstructure:"slots"`

	StuckTimeout    time.Duration `mapstructure:"stuck_timeout"`
	NoiseThreshold  float64       `mapstructure:"noise_threshold"`
	FingerprintMode string        `mapstructure:"fingerprint_mode"`
	MaxHashDistance int           `mapstructure:"max_hash_distance"`
	AcceptScore     int           `mapstructure:"accept_score"`
	ClickDelay      time.Duration `mapstructure:"click_delay"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`

	CacheSize        int           `mapstructure:"cache_size"`
	Translator       string        `mapstructure:"translator"`
	TranslateTimeout time.Duration `mapstructure:"translate_timeout"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"`
	GeminiModel      string        `mapstructure:"gemini_model"`

	OCRBackend   string   `mapstructure:"ocr_backend"`
	OCRAddr      string   `mapstructure:"ocr_addr"`
	OCRLanguages []string `mapstructure:"ocr_languages"`

	Clicker    string `mapstructure:"clicker"`
	SerialPort string `mapstructure:"serial_port"`
	SerialBaud int    `mapstructure:"serial_baud"`

	StatusAddr string `mapstructure:"status_addr"`
	LogLevel   string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"question_region.x":      345,
	"question_region.y":      584,
	"question_region.width":  591,
	"question_region.height": 195,
	"options_region.x":       327,
	"options_region.y":       837,
	"options_region.width":   637,
	"options_region.height":  672,
	"slots":                  4,

	"stuck_timeout":     5 * time.Second,
	"noise_threshold":   3.0,
	"fingerprint_mode":  "grid",
	"max_hash_distance": 4,
	"accept_score":      15,
	"click_delay":       400 * time.Millisecond,
	"retry_delay":       10 * time.Millisecond,

	"cache_size":        1024,
	"translator":        "google",
	"translate_timeout": 3 * time.Second,
	"gemini_api_key":    "",
	"gemini_model":      translate.DefaultGeminiModel,

	"ocr_backend":   "tesseract",
	"ocr_addr":      "localhost:50051",
	"ocr_languages": []string{}, // filled per ocr_backend when unset

	"clicker":     "robotgo",
	"serial_port": "",
	"serial_baud": 9600,

	"status_addr": "",
	"log_level":   "info",
}

// Load reads configuration from the environment on top of the built-in
// defaults. There is no config file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "decode config")
	}
	cfg.OCRLanguages = splitList(cfg.OCRLanguages)
	if len(cfg.OCRLanguages) == 0 {
		cfg.OCRLanguages = ocr.DefaultLanguages(cfg.OCRBackend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the loop cannot run with.
func (c *Config) Validate() error {
	for name, r := range map[string]screen.Region{"question_region": c.QuestionRegion, "options_region": c.OptionsRegion} {
		if r.Width <= 0 || r.Height <= 0 {
			return apperrors.Newf(apperrors.ConfigInvalid, "%s must have positive size", name).
				WithMetadata("region", r.String())
		}
	}
	if c.Slots < 1 {
		return apperrors.Newf(apperrors.ConfigInvalid, "slots must be >= 1, got %d", c.Slots)
	}
	if c.CacheSize < 1 {
		return apperrors.Newf(apperrors.ConfigInvalid, "cache_size must be >= 1, got %d", c.CacheSize)
	}
	checks := []struct {
		key, val string
		allowed  []string
	}{
		{"fingerprint_mode", c.FingerprintMode, FingerprintModes},
		{"translator", c.Translator, Translators},
		{"ocr_backend", c.OCRBackend, OCRBackends},
		{"clicker", c.Clicker, Clickers},
	}
	for _, ch := range checks {
		if !contains(ch.allowed, ch.val) {
			return apperrors.Newf(apperrors.ConfigInvalid, "unknown %s %q", ch.key, ch.val).
				WithMetadata("allowed", strings.Join(ch.allowed, ","))
		}
	}
	if c.Clicker == "serial" && c.SerialPort == "" {
		return apperrors.New(apperrors.ConfigInvalid, "serial clicker needs serial_port")
	}
	if c.Translator == "gemini" && c.GeminiAPIKey == "" {
		return apperrors.New(apperrors.ConfigInvalid, "gemini translator needs gemini_api_key")
	}
	return nil
}

// splitList accepts both a real list and a single comma-separated env value.
func splitList(in []string) []string {
	result := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
	}
	return result
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
