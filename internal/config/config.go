package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the engine's environment. A .env file in the working directory
// is loaded first when present; real environment variables win.
type Config struct {
	ServerURL string `env:"RELAY_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	MatchID   string `env:"RELAY_MATCH_ID,required"`
	UserID    string `env:"RELAY_USER_ID,required"`
	PartyID   string `env:"RELAY_PARTY_ID"`

	ListenAddr   string `env:"RELAY_LISTEN_ADDR" envDefault:"127.0.0.1:7331"`
	SnapshotPath string `env:"RELAY_SNAPSHOT_DB" envDefault:"relay-snapshots.db"`
	LogLevel     string `env:"RELAY_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
