package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguages      []string
	OCRWorkers        int
	MaxFileSize       int64

	LogLevel  string
	LogFormat string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	GeminiAPIKey string
	GeminiModel  string

	OracleTimeout time.Duration
	RulesFile     string
}

// LoadConfig reads the environment, after an optional .env file in the
// working directory.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		OCRLanguages:      getEnvAsList("OCR_LANGUAGES", []string{"spa", "eng"}),
		OCRWorkers:        getEnvAsInt("OCR_WORKERS", 4),
		MaxFileSize:       int64(getEnvAsInt("MAX_FILE_SIZE", 10*1024*1024)), // 10 MB

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		OracleTimeout: getEnvAsDuration("ORACLE_TIMEOUT", 20*time.Second),
		RulesFile:     os.Getenv("RULES_FILE"),
	}
}

// OracleEnabled reports whether at least one LLM key is configured
func (c *Config) OracleEnabled() bool {
	return c.GroqAPIKey != "" || c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	out := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '+' || r == ' ' })
	if len(out) == 0 {
		return fallback
	}
	return out
}
