package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramToken string
	WebhookURL    string
	Port          string

	ClientSecretFile string
	TokenFile        string
	RootFolder       string

	TaxonomyFile string
	MenuChunk    int

	DatabaseURL string

	GeminiAPIKey string
	GeminiModel  string

	LogLevel  string
	LogFormat string
}

// MissingEnvError names a required variable that is not set.
type MissingEnvError struct{ Key string }

func (e *MissingEnvError) Error() string { return "missing required env " + e.Key }

func mustEnv(k string) (string, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return "", &MissingEnvError{Key: k}
	}
	return v, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("env %s: want a positive integer, got %q", k, v)
	}
	return n, nil
}

// Load reads everything the bot needs to serve.
func Load() (*Config, error) {
	token, err := mustEnv("TELEGRAM_TOKEN")
	if err != nil {
		return nil, err
	}
	chunk, err := getInt("MENU_CHUNK", 4000)
	if err != nil {
		return nil, err
	}
	return &Config{
		TelegramToken: token,
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		Port:          getEnv("PORT", "8080"),

		ClientSecretFile: getEnv("GOOGLE_CLIENT_SECRET", "client_secret.json"),
		TokenFile:        getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		RootFolder:       getEnv("DRIVE_ROOT_FOLDER", "SoruBankasi"),

		TaxonomyFile: getEnv("TAXONOMY_FILE", "config.json"),
		MenuChunk:    chunk,

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}, nil
}

// LoadAuth reads only what the one-time authorization step needs.
func LoadAuth() *Config {
	return &Config{
		ClientSecretFile: getEnv("GOOGLE_CLIENT_SECRET", "client_secret.json"),
		TokenFile:        getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}
}
