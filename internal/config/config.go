package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sheetqa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	QA      QAConfig
	Upload  UploadConfig
	Session SessionConfig
	Logging LoggingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	DefaultLanguage string
	PreviewRows     int
}

// LLMConfig holds settings for the OpenAI-compatible model endpoint
type LLMConfig struct {
	BaseURL          string
	Model            string
	APIKey           string
	Timeout          time.Duration
	Temperature      float64
	MaxTokens        int
	StructuredOutput bool
	ProbeTTL         time.Duration
}

// QAConfig holds question answering settings
type QAConfig struct {
	Engine           string // "sql" or "jq"
	MaxResultRows    int
	PromptSampleRows int
	PromptsDir       string // empty means the embedded prompts
}

// UploadConfig holds workbook upload limits
type UploadConfig struct {
	MaxBytes int64
}

// SessionConfig holds browser session settings
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	MaxEntries int
}

// LoggingConfig holds logging output settings
type LoggingConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Supported QA engines
const (
	EngineSQL = "sql"
	EngineJQ  = "jq"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		LLM:     *loadLLMConfig(),
		QA:      *loadQAConfig(),
		Upload:  *loadUploadConfig(),
		Session: *loadSessionConfig(),
		Logging: *loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8501"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		DefaultLanguage: strings.ToLower(getEnvOrDefault("DEFAULT_LANGUAGE", "en")),
		PreviewRows:     getEnvIntOrDefault("PREVIEW_ROWS", 5),
	}
}

func loadLLMConfig() *LLMConfig {
	return &LLMConfig{
		BaseURL:          strings.TrimRight(getEnvOrDefault("LLM_BASE_URL", "http://localhost:11434/v1"), "/"),
		Model:            getEnvOrDefault("LLM_MODEL", "deepseek-coder-v2"),
		APIKey:           os.Getenv("LLM_API_KEY"),
		Timeout:          time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		Temperature:      getEnvFloatOrDefault("LLM_TEMPERATURE", 0),
		MaxTokens:        getEnvIntOrDefault("LLM_MAX_TOKENS", 1024),
		StructuredOutput: getEnvBoolOrDefault("LLM_STRUCTURED_OUTPUT", true),
		ProbeTTL:         time.Duration(getEnvIntOrDefault("LLM_PROBE_TTL_SECONDS", 30)) * time.Second,
	}
}

func loadQAConfig() *QAConfig {
	return &QAConfig{
		Engine:           strings.ToLower(getEnvOrDefault("QA_ENGINE", EngineSQL)),
		MaxResultRows:    getEnvIntOrDefault("MAX_RESULT_ROWS", 1000),
		PromptSampleRows: getEnvIntOrDefault("PROMPT_SAMPLE_ROWS", 5),
		PromptsDir:       os.Getenv("PROMPTS_DIR"),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 200)) * 1024 * 1024,
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		Secret:     os.Getenv("SESSION_SECRET"),
		TTL:        time.Duration(getEnvIntOrDefault("SESSION_TTL_MINUTES", 60)) * time.Minute,
		MaxEntries: getEnvIntOrDefault("SESSION_MAX", 256),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		FilePath:   os.Getenv("LOG_FILE"),
		MaxSizeMB:  getEnvIntOrDefault("LOG_MAX_SIZE_MB", 10),
		MaxBackups: getEnvIntOrDefault("LOG_MAX_BACKUPS", 3),
		MaxAgeDays: getEnvIntOrDefault("LOG_MAX_AGE_DAYS", 28),
		Compress:   getEnvBoolOrDefault("LOG_COMPRESS", true),
	}
}

func validateConfig(config *Config) error {
	if config.LLM.BaseURL == "" {
		return errors.ConfigInvalid("LLM_BASE_URL is required")
	}
	if u, err := url.Parse(config.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("LLM_BASE_URL must be an absolute URL")
	}
	if config.LLM.Model == "" {
		return errors.ConfigInvalid("LLM_MODEL is required")
	}
	if config.LLM.Timeout <= 0 {
		return errors.ConfigInvalid("LLM_TIMEOUT_SECONDS must be positive")
	}
	switch config.QA.Engine {
	case EngineSQL, EngineJQ:
	default:
		return errors.ConfigInvalid("QA_ENGINE must be sql or jq")
	}
	if config.Server.PreviewRows <= 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be positive")
	}
	if config.QA.MaxResultRows <= 0 {
		return errors.ConfigInvalid("MAX_RESULT_ROWS must be positive")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Session.MaxEntries <= 0 {
		return errors.ConfigInvalid("SESSION_MAX must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
