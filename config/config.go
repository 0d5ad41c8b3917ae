package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL   string
	WebsocketURL string
	TokenPath    string
	LogMode      string

	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration

	// Simulator settings, unused by the client itself.
	SimulatorPort      string
	SimulatorJWTSecret string
	SimulatorJWTExpiry int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8000"),
		WebsocketURL:       getEnv("WS_URL", "ws://localhost:8000/ws"),
		TokenPath:          getEnv("TOKEN_PATH", defaultTokenPath()),
		LogMode:            getEnv("LOG_MODE", "development"),
		ReconnectMinDelay:  getEnvAsDuration("RECONNECT_MIN_DELAY", time.Second),
		ReconnectMaxDelay:  getEnvAsDuration("RECONNECT_MAX_DELAY", 30*time.Second),
		SimulatorPort:      getEnv("SIMULATOR_PORT", "8000"),
		SimulatorJWTSecret: getEnv("SIMULATOR_JWT_SECRET", "change-me"),
		SimulatorJWTExpiry: getEnvAsInt("SIMULATOR_JWT_EXPIRY_MIN", 60),
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linguacall-token"
	}
	return filepath.Join(home, ".linguacall", "token")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
