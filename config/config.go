package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config func to get env value from key
func Config(key string) string {
	// Load .env file if present, environment wins otherwise
	godotenv.Load(".env")
	return os.Getenv(key)
}
