package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var (
	ErrMissingToken   = errors.New("TOKEN is required (headless host token)")
	ErrMissingHostURL = errors.New("HOST_URL is required")
)

type Config struct {
	RoomName          string        `env:"ROOM_NAME" envDefault:"XLball MVP Stats"`
	RoomPassword      string        `env:"ROOM_PASSWORD"`
	MaxPlayers        int           `env:"MAX_PLAYERS" envDefault:"12"`
	PublicRoom        bool          `env:"PUBLIC_ROOM" envDefault:"false"`
	PlayerName        string        `env:"PLAYER_NAME" envDefault:"StatsBot"`
	Token             string        `env:"TOKEN"`
	CustomStadiumPath string        `env:"CUSTOM_STADIUM_PATH" envDefault:"maps/mvp_arena.hbs"`
	StatsPath         string        `env:"STATS_PATH" envDefault:"data/stats.json"`
	PersistDelay      time.Duration `env:"PERSIST_DELAY" envDefault:"700ms"`
	HostURL           string        `env:"HOST_URL"`
	ServerPort        string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may be set directly
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.HostURL == "" {
		return nil, ErrMissingHostURL
	}
	if cfg.PersistDelay <= 0 {
		return nil, fmt.Errorf("PERSIST_DELAY must be positive, got %s", cfg.PersistDelay)
	}
	return &cfg, nil
}

// LogSummary logs the effective settings; secrets are left out.
func (c *Config) LogSummary(logger zerolog.Logger) {
	logger.Info().
		Str("room_name", c.RoomName).
		Int("max_players", c.MaxPlayers).
		Bool("public_room", c.PublicRoom).
		Str("stats_path", c.StatsPath).
		Str("stadium_path", c.CustomStadiumPath).
		Str("host_url", c.HostURL).
		Str("server_port", c.ServerPort).
		Str("log_level", c.LogLevel).
		Dur("persist_delay", c.PersistDelay).
		Msg("configuration loaded")
}

var Module = fx.Provide(Load)
