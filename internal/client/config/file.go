package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/carbuyer/internal/flagx"
	"github.com/dmitrijs2005/carbuyer/internal/timex"
)

// FileConfig is the on-disk shape of a config file. Intervals use
// timex.Duration, so "30s" and integer nanoseconds are both accepted.
// Absent fields leave the current value untouched.
type FileConfig struct {
	APIURL              string          `json:"api_url" yaml:"api_url"`
	DatabasePath        string          `json:"database_path" yaml:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel            string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(fmt.Errorf("config file %s: %w", path, err))
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
