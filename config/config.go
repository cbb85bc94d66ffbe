package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from its environment.
type Config struct {
	Addr        string
	DatabaseURL string
}

// LoadFromEnv reads configuration from the environment, consulting a .env
// file first when one is present.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("SHOP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
