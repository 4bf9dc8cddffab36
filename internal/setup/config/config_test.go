package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonToml = `
version = 1

[debug]
log_level = "debug"
max_logs_to_keep = 5
max_log_lines = 1000

[postgresql]
host = "localhost"
port = 5432
user = "postgres"
db_name = "embedder"

[cache]
enabled = true
server_ttl = 60

[integrations.bluesky]
enabled = true
base_url = "https://public.api.bsky.app"
`

func writeConfigs(t *testing.T, dir, common, bot, worker string) {
	t.Helper()

	files := map[string]string{
		"common.toml": common,
		"bot.toml":    bot,
		"worker.toml": worker,
	}

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func TestLoadConfigFrom(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigs(t, dir, commonToml,
		"version = 1\n[discord]\ntoken = \"abc\"\nadmin_ids = [1, 2]\n",
		"version = 1\n[purge]\nolder_than = \"30d\"\nbatch_size = 100\n")

	cfg, used, err := config.LoadConfigFrom(filepath.Join(dir, "missing"), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, used)
	assert.Equal(t, "localhost", cfg.Common.PostgreSQL.Host)
	assert.True(t, cfg.Common.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Common.Cache.ServerTTLDuration())
	assert.Equal(t, 2*time.Hour, cfg.Common.Cache.PostCountTTLDuration())
	assert.True(t, cfg.Common.Integrations["bluesky"].Enabled)
	assert.Equal(t, "abc", cfg.Bot.Discord.Token)
	assert.Equal(t, []uint64{1, 2}, cfg.Bot.Discord.AdminIDs)
	assert.Equal(t, "30d", cfg.Worker.Purge.OlderThan)
	assert.Equal(t, 100, cfg.Worker.Purge.BatchSize)
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := config.LoadConfigFrom(t.TempDir())
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func TestLoadConfigFromVersionChecks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigs(t, dir, commonToml, "version = 2\n", "version = 1\n")

	_, _, err := config.LoadConfigFrom(dir)
	require.ErrorIs(t, err, config.ErrConfigVersionMismatch)

	dir = t.TempDir()
	writeConfigs(t, dir, commonToml, "version = 1\n", "[purge]\nbatch_size = 1\n")

	_, _, err = config.LoadConfigFrom(dir)
	require.ErrorIs(t, err, config.ErrConfigVersionMissing)
}
