package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// dotEnvPath is the .env file consulted at startup.
var dotEnvPath = ".env"

// loadDotEnv exports the variables of the .env file that are not already
// set in the environment. A missing file is not an error.
func loadDotEnv() {
	err := godotenv.Load(dotEnvPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// apiURLVars are checked in order; the last one matches the variable read by
// the web frontend.
var apiURLVars = []string{"CARBUYER_API_URL", "API_URL", "NEXT_PUBLIC_API_URL"}

func parseEnv(cfg *Config) {
	for _, name := range apiURLVars {
		if v := os.Getenv(name); v != "" {
			cfg.APIURL = v
			break
		}
	}
	if v := os.Getenv("CARBUYER_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("CARBUYER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
