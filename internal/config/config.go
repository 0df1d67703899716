package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr            string
	AllowedOrigins  []string
	DataDir         string
	InMemoryArchive bool
	ClockSeconds    int
	GameMode        int
	MatchInterval   time.Duration
}

func Default() Config {
	return Config{
		Addr:           ":3000",
		AllowedOrigins: []string{"http://localhost:5173"},
		DataDir:        "./data",
		ClockSeconds:   600,
		GameMode:       0,
		MatchInterval:  time.Second,
	}
}

// FromEnv applies CHESS_* variables on top of the defaults. lookup is
// os.LookupEnv outside of tests.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("CHESS_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("CHESS_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("CHESS_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup("CHESS_IN_MEMORY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("CHESS_IN_MEMORY: %w", err)
		}
		cfg.InMemoryArchive = b
	}
	if v, ok := lookup("CHESS_CLOCK_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CHESS_CLOCK_SECONDS: %w", err)
		}
		cfg.ClockSeconds = n
	}
	if v, ok := lookup("CHESS_GAME_MODE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CHESS_GAME_MODE: %w", err)
		}
		cfg.GameMode = n
	}
	if v, ok := lookup("CHESS_MATCH_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("CHESS_MATCH_INTERVAL: %w", err)
		}
		cfg.MatchInterval = d
	}
	return cfg, cfg.Validate()
}

// Load reads the environment, then the command line flags in args.
func Load(args []string) (Config, error) {
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	origins := fs.String("origins", strings.Join(cfg.AllowedOrigins, ","), "comma separated CORS origins")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "archive directory")
	fs.BoolVar(&cfg.InMemoryArchive, "in-memory", cfg.InMemoryArchive, "keep the archive in memory")
	fs.IntVar(&cfg.ClockSeconds, "clock", cfg.ClockSeconds, "seconds on each clock")
	fs.IntVar(&cfg.GameMode, "mode", cfg.GameMode, "board orientation, 0 or 1")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", cfg.MatchInterval, "matchmaking tick")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.AllowedOrigins = splitList(*origins)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.GameMode != 0 && c.GameMode != 1 {
		return fmt.Errorf("game mode must be 0 or 1, got %d", c.GameMode)
	}
	if c.ClockSeconds <= 0 {
		return fmt.Errorf("clock must be positive, got %d", c.ClockSeconds)
	}
	if !c.InMemoryArchive && c.DataDir == "" {
		return fmt.Errorf("data directory required unless the archive is in memory")
	}
	return nil
}

func (c Config) ClockTime() time.Duration {
	return time.Duration(c.ClockSeconds) * time.Second
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
