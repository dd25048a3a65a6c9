package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/flagx"
)

// parseFlags populates Config fields from command-line flags:
//
//	-a string   API base url
//	-d string   local database path
//	-i int      online check interval in seconds
//	-l string   log level
//
// Unknown flags are filtered out first so other components can own them.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("carbuyer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "API base url")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
