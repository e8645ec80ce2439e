package main

import (
	"flag"
	"os"
	"strconv"
)

// runConfig holds the command-line parameters of the runner.
type runConfig struct {
	ConfigPath string
	ShopPath   string
	DBPath     string
	Player     string
	Port       int
	AdminKey   string
	Seed       int64
	Workers    int
	MaxTicks   uint64
	Speed      float64
	Fast       bool
	Debug      bool
}

// newRunConfig returns defaults, with environment overrides applied.
func newRunConfig() *runConfig {
	return &runConfig{
		ConfigPath: os.Getenv("CYTO_CONFIG"),
		ShopPath:   os.Getenv("CYTO_SHOP"),
		DBPath:     envOrDefault("CYTO_DB", "data/cytogenesis.db"),
		Player:     os.Getenv("CYTO_PLAYER"),
		Port:       envIntOrDefault("CYTO_PORT", 8080),
		AdminKey:   os.Getenv("CYTO_ADMIN_KEY"),
		Seed:       int64(envIntOrDefault("CYTO_SEED", 0)),
		Workers:    1,
		MaxTicks:   100000,
		Speed:      1,
		Debug:      os.Getenv("CYTO_DEBUG") == "1",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *runConfig) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML parameter overlay")
	fs.StringVar(&c.ShopPath, "shop", c.ShopPath, "YAML shop item catalogue (default: built-in)")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path (empty disables persistence)")
	fs.StringVar(&c.Player, "player", c.Player, "player name for the high-score table")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP API port (0 disables the API)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed (0 = random)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "goroutines for the nutrient exchange")
	fs.Uint64Var(&c.MaxTicks, "max-ticks", c.MaxTicks, "tick bound per round in -fast mode (0 = none)")
	fs.Float64Var(&c.Speed, "speed", c.Speed, "frame speed multiplier")
	fs.BoolVar(&c.Fast, "fast", c.Fast, "run every round to completion without frame pacing")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
