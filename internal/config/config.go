package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool
	DevMode        bool

	Shots int    // shots per analysis run
	Seed  uint64 // simulator seed, 0 draws a fresh seed per run
	P1    float64
	P2    float64
	PMeas float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvAsInt("QVIZ_PORT", 8000),
		AllowedOrigins: getEnvAsList("QVIZ_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		Shots:          getEnvAsInt("QVIZ_SHOTS", 1000),
		Seed:           getEnvAsUint("QVIZ_SEED", 0),
		P1:             getEnvAsFloat("QVIZ_P1", 0.001),
		P2:             getEnvAsFloat("QVIZ_P2", 0.01),
		PMeas:          getEnvAsFloat("QVIZ_P_MEAS", 0.02),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configured values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("QVIZ_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Shots <= 0 {
		return fmt.Errorf("QVIZ_SHOTS must be positive, got %d", c.Shots)
	}
	for name, p := range map[string]float64{"QVIZ_P1": c.P1, "QVIZ_P2": c.P2, "QVIZ_P_MEAS": c.PMeas} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be a probability, got %g", name, p)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Helper functions
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

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
