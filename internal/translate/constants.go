package translate

import "time"

// Cache and post-processing defaults
const (
	DefaultCacheSize = 1024
	DefaultTimeout   = 3 * time.Second

	// MaxRunes bounds a normalized translation.
	MaxRunes = 4
)

// Google Translate public endpoint
const (
	DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"
	SourceLanguage        = "en"
	TargetLanguage        = "zh-CN"

	maxResponseBytes = 64 << 10
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Han range kept in normalized translations
const (
	hanFirst = '\u4e00'
	hanLast  = '\u9fa5'
)
