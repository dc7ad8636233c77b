package confs

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings, all overridable via environment
// variables (optionally from a .env file).
type Config struct {
	Listen  string // MEDBOX_LISTEN
	DataDir string // MEDBOX_DATA_DIR
	Debug   bool   // MEDBOX_DEBUG
}

// LoadConfig loads environment variables from a .env file if present and
// applies defaults suitable for a LAN deployment.
func LoadConfig() (Config, error) {
	// Load .env if it exists; a missing file is not an error at runtime.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	cfg := Config{
		Listen:  getEnv("MEDBOX_LISTEN", "0.0.0.0:8000"),
		DataDir: getEnv("MEDBOX_DATA_DIR", "./data"),
		Debug:   os.Getenv("MEDBOX_DEBUG") == "1",
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
