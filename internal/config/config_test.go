package config

import (
	"testing"
	"time"

	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.TickRateHz)
	assert.Equal(t, 4*time.Second, cfg.WinnerDelay)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlushInterval())

	assert.Equal(t, game.DefaultLimits(), cfg.Limits())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TICK_RATE_HZ", "20")
	t.Setenv("WINNER_DELAY", "1500ms")
	t.Setenv("DEFAULT_HAND_SIZE", "7")
	t.Setenv("MAX_PLAYERS_PER_GAME", "6")
	t.Setenv("DEFAULT_DECK", "doubles")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	limits := cfg.Limits()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 20, limits.TickRate)
	assert.Equal(t, 1500*time.Millisecond, limits.WinnerDelay)
	assert.Equal(t, 7, limits.DefaultSettings.HandSize)
	assert.Equal(t, 6, limits.DefaultSettings.MaxPlayers)
	assert.Equal(t, "doubles", limits.DefaultDeck)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"not a number":      {"TICK_RATE_HZ", "fast"},
		"zero tick rate":    {"TICK_RATE_HZ", "0"},
		"too few players":   {"MAX_PLAYERS_PER_GAME", "2"},
		"hand out of range": {"DEFAULT_HAND_SIZE", "60"},
		"bad duration":      {"WINNER_DELAY", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "json"}
	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg = Config{LogLevel: "nonsense"}
	assert.Equal(t, logrus.InfoLevel, cfg.NewLogger().GetLevel())
}
