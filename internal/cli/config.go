package cli

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Output    string
	LogFormat string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("MATCHCLIENT_SERVER", "http://localhost:8080"),
		Timeout:   getDurationOrDefault("MATCHCLIENT_TIMEOUT", 30*time.Second),
		Output:    getEnvOrDefault("MATCHCLIENT_OUTPUT", "text"),
		LogFormat: "text",
		Verbose:   false,
	}
}

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set in the environment
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // No env file is fine
		}
		return err
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
