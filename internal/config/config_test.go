package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "test_password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://site.api.espn.com/apis/site/v2/sports/football/nfl", cfg.ESPNBaseURL)
	assert.Equal(t, 18, cfg.MaxWeek)
	assert.Equal(t, 50, cfg.MinPassAttempts)
	assert.Equal(t, 100, cfg.UpsertBatchSize)
	assert.Equal(t, 16, cfg.DefaultDefRank)
	assert.Equal(t, 0.5, cfg.DefaultWinPct)
	assert.Equal(t, 0, cfg.RankLagWeeks)
	assert.False(t, cfg.EnableScheduler)
	assert.True(t, cfg.RunOnStart)

	seasons, err := cfg.SeasonList()
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024, 2023}, seasons)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "test_password")
	t.Setenv("SEASONS", "2024, 2023")
	t.Setenv("RANK_LAG_WEEKS", "1")
	t.Setenv("MIN_PASS_ATTEMPTS", "40")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.RankLagWeeks)
	assert.Equal(t, 40, cfg.MinPassAttempts)

	seasons, err := cfg.SeasonList()
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023}, seasons, "Whitespace around years is tolerated")
}

func TestLoadRequiresDatabasePassword(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_PASSWORD")
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabasePassword: "x",
			Seasons:          "2025",
			UpsertBatchSize:  100,
			DefaultWinPct:    0.5,
		}
	}

	cfg := base()
	cfg.Seasons = "twenty25"
	assert.Error(t, cfg.Validate(), "Non-numeric season should fail")

	cfg = base()
	cfg.Seasons = " , "
	assert.Error(t, cfg.Validate(), "Empty season list should fail")

	cfg = base()
	cfg.UpsertBatchSize = 0
	assert.Error(t, cfg.Validate(), "Zero batch size should fail")

	cfg = base()
	cfg.RankLagWeeks = -1
	assert.Error(t, cfg.Validate(), "Negative lag should fail")

	cfg = base()
	cfg.DefaultWinPct = 1.5
	assert.Error(t, cfg.Validate(), "Out-of-range win pct should fail")

	assert.NoError(t, base().Validate(), "Base config should validate")
}

func TestDSNAndAddrHelpers(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "svc",
		DatabasePassword: "secret",
		DatabaseName:     "nflqb",
		DatabaseSSLMode:  "require",
		RedisHost:        "cache.internal",
		RedisPort:        6380,
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=secret dbname=nflqb sslmode=require",
		cfg.DatabaseDSN())
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
