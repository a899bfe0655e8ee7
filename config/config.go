package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port         string
	GinMode      string
	FrontendURLs []string

	// Amadeus
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusBaseURL      string

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	SiteURL           string

	// Database (optional)
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Sessions and limits
	SessionIdle time.Duration
	LookupRate  float64
	LookupBurst int
}

// Load loads configuration from environment variables
func Load() *Config {
	// .env is optional; production sets env vars directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      os.Getenv("GIN_MODE"),
		FrontendURLs: frontendURLs(os.Getenv("FRONTEND_URL")),

		AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		AmadeusBaseURL:      amadeusBaseURL(os.Getenv("AMADEUS_ENV")),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-oss-120b:free"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SiteURL:           getEnv("SITE_URL", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "flightdeck"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		SessionIdle: time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
		LookupRate:  getEnvFloat("LOOKUP_RATE_PER_SEC", 5),
		LookupBurst: getEnvInt("LOOKUP_BURST", 10),
	}

	if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
		log.Println("WARNING: AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set — flight search will use estimated data")
	}
	if cfg.OpenRouterAPIKey == "" {
		log.Println("WARNING: OPENROUTER_API_KEY not set — AI intent extraction disabled")
	}

	return cfg
}

// DatabaseEnabled reports whether search history should be persisted.
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != "" || c.DBHost != ""
}

func amadeusBaseURL(env string) string {
	if env == "production" {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

func frontendURLs(raw string) []string {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			origins = append(origins, u)
		}
	}
	return origins
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
