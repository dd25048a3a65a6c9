package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// Config holds runtime settings of the carbuyer CLI.
type Config struct {
	// APIURL is the base of the REST API, including the /api/v1 prefix.
	APIURL string
	// DatabasePath is the sqlite file holding the session token. ":memory:"
	// keeps the session for the lifetime of the process only.
	DatabasePath        string
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds each API request; zero disables the bound.
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8080/api/v1"
	c.DatabasePath = "carbuyer.db"
	c.OnlineCheckInterval = 30 * time.Second
	c.RequestTimeout = 0
	c.LogLevel = "info"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) url", c.APIURL)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadConfig builds a Config from defaults, the .env file, the environment,
// an optional config file and command-line flags, later sources taking
// precedence. It panics on an unreadable config file or malformed flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv()
	parseEnv(cfg)
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
