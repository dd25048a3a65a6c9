package devserver

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/flagx"
)

// Config holds the settings of the development backend.
type Config struct {
	Addr        string
	Secret      string
	TokenTTL    time.Duration
	InboxDomain string
	SMSNumber   string
}

// LoadDefaults sets development defaults. They are not meant for anything
// but local runs.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.Secret = "dev-secret"
	c.TokenTTL = 24 * time.Hour
	c.InboxDomain = "inbox.carbuyer.local"
	c.SMSNumber = "+15550100100"
}

// LoadConfig applies defaults, then DEVSERVER_ADDR and DEVSERVER_SECRET,
// then the -a, -s and -t (token lifetime in minutes) flags.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if v := os.Getenv("DEVSERVER_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DEVSERVER_SECRET"); v != "" {
		cfg.Secret = v
	}
	parseFlags(cfg, args)
	return cfg
}

func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t"})

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to listen on")
	fs.StringVar(&cfg.Secret, "s", cfg.Secret, "JWT signing secret")
	ttl := fs.Int("t", int(cfg.TokenTTL.Minutes()), "token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	cfg.TokenTTL = time.Duration(*ttl) * time.Minute
}
