package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP        HTTPConfig
	Predictions PredictionsConfig
	DBPath      string
	LogLevel    string
}

type HTTPConfig struct {
	Port int
}

type PredictionsConfig struct {
	BaseURL          string
	FetchTimeout     time.Duration
	DebounceInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		HTTP: HTTPConfig{
			Port: getEnvAsInt("HTTP_PORT", 8080),
		},
		Predictions: PredictionsConfig{
			BaseURL:          getEnv("PREDICTIONS_URL", "http://localhost:8081"),
			FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT", 5*time.Second),
			DebounceInterval: getEnvAsDuration("DEBOUNCE_INTERVAL", 300*time.Millisecond),
		},
		DBPath:   getEnv("DB_PATH", "congestion_pulse.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
