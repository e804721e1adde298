// Package config reads the server and historian settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/sirupsen/logrus"
)

// Config holds every environment setting. Zero values for the optional
// backends (Redis, PostgreSQL) disable them.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	TickRateHz          int           `env:"TICK_RATE_HZ" envDefault:"10"`
	MaxPlayersPerGame   int           `env:"MAX_PLAYERS_PER_GAME" envDefault:"10"`
	MaxGameNameLength   int           `env:"MAX_GAME_NAME_LENGTH" envDefault:"40"`
	MaxPlayerNameLength int           `env:"MAX_PLAYER_NAME_LENGTH" envDefault:"40"`
	MinCardsToStart     int           `env:"MIN_CARDS_REQUIRED_TO_START" envDefault:"10"`
	MinHandSize         int           `env:"MIN_HAND_SIZE" envDefault:"5"`
	MaxHandSize         int           `env:"MAX_HAND_SIZE" envDefault:"50"`
	DefaultHandSize     int           `env:"DEFAULT_HAND_SIZE" envDefault:"10"`
	DefaultWinScore     int           `env:"DEFAULT_WIN_SCORE" envDefault:"10"`
	DefaultRoundTimeSec int           `env:"DEFAULT_ROUND_TIME_SEC" envDefault:"60"`
	WinnerDelay         time.Duration `env:"WINNER_DELAY" envDefault:"4s"`
	DefaultDeck         string        `env:"DEFAULT_DECK" envDefault:"base"`
	DecksPath           string        `env:"DECKS_PATH"`

	RedisAddr          string `env:"REDIS_ADDR"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	HistorianQueueName string `env:"HISTORIAN_QUEUE_NAME" envDefault:"blanks_actions"`

	DatabaseURL        string `env:"DATABASE_URL"`
	HistorianBatchSize int    `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushMs   int    `env:"HISTORIAN_FLUSH_MS" envDefault:"500"`
}

// Load parses the environment into a Config and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the game limits for consistency.
func (c Config) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("TICK_RATE_HZ must be positive")
	}
	if c.MaxPlayersPerGame < game.MinPlayersToStart {
		return fmt.Errorf("MAX_PLAYERS_PER_GAME must be at least %d", game.MinPlayersToStart)
	}
	if c.MinHandSize < 1 || c.MinHandSize > c.MaxHandSize {
		return fmt.Errorf("hand size bounds %d..%d are invalid", c.MinHandSize, c.MaxHandSize)
	}
	if c.MaxGameNameLength < 1 || c.MaxPlayerNameLength < 1 {
		return fmt.Errorf("name lengths must be positive")
	}
	limits := c.Limits()
	if err := limits.DefaultSettings.Validate(limits); err != nil {
		return fmt.Errorf("default game settings: %w", err)
	}
	return nil
}

// Limits converts the config into the game limits.
func (c Config) Limits() game.Limits {
	return game.Limits{
		MaxPlayersPerGame:   c.MaxPlayersPerGame,
		MaxGameNameLength:   c.MaxGameNameLength,
		MaxPlayerNameLength: c.MaxPlayerNameLength,
		MinCardsToStart:     c.MinCardsToStart,
		MinHandSize:         c.MinHandSize,
		MaxHandSize:         c.MaxHandSize,
		TickRate:            c.TickRateHz,
		WinnerDelay:         c.WinnerDelay,
		DefaultDeck:         c.DefaultDeck,
		DefaultSettings: game.Settings{
			HandSize:     c.DefaultHandSize,
			WinScore:     c.DefaultWinScore,
			RoundTimeSec: c.DefaultRoundTimeSec,
			MaxPlayers:   c.MaxPlayersPerGame,
		},
	}
}

// HistorianFlushInterval is HISTORIAN_FLUSH_MS as a duration.
func (c Config) HistorianFlushInterval() time.Duration {
	return time.Duration(c.HistorianFlushMs) * time.Millisecond
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
