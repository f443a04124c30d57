package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emb-protocol/issuance/pkg/log"
)

func setupConfigDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, deploymentFileName), []byte(testDeploymentYAML), 0644))
	t.Setenv(configDirPathEnv, dir)
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := setupConfigDir(t)
	t.Setenv("EMB_DATABASE_URL", "file:"+filepath.Join(dir, "emb.db"))
	t.Setenv("EMB_AUTHORITY_PRIVATE_KEY", testAuthorityKey)
	t.Setenv("EMB_METRICS_PUSHGATEWAY_URL", "http://localhost:9091")

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, config.mode)
	assert.Equal(t, dir, config.configDirPath)
	assert.Equal(t, "sqlite", config.dbConf.Driver)
	assert.Equal(t, filepath.Join(dir, "emb.db"), config.dbConf.Name)
	assert.Equal(t, testAuthorityKey, config.authorityKeyHex)
	assert.Empty(t, config.ownerKeyHex)
	assert.Equal(t, "http://localhost:9091", config.metricsConf.PushgatewayURL)
	assert.Equal(t, "emb_issuance", config.metricsConf.Job)
	assert.Equal(t, uint64(31337), config.deployment.Protocol.ChainID)
}

func TestLoadConfig_DatabaseEnv(t *testing.T) {
	setupConfigDir(t)
	t.Setenv("EMB_DATABASE_DRIVER", "postgres")
	t.Setenv("EMB_DATABASE_HOST", "db")
	t.Setenv("EMB_DATABASE_NAME", "issuance")

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, "postgres", config.dbConf.Driver)
	assert.Equal(t, "db", config.dbConf.Host)
	assert.Equal(t, "issuance", config.dbConf.Name)
	assert.Equal(t, "5432", config.dbConf.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("invalid mode", func(t *testing.T) {
		setupConfigDir(t)
		t.Setenv("EMB_MODE", "staging")

		_, err := LoadConfig(log.NewNoopLogger())
		assert.ErrorContains(t, err, "EMB_MODE")
	})

	t.Run("missing deployment", func(t *testing.T) {
		t.Setenv(configDirPathEnv, t.TempDir())

		_, err := LoadConfig(log.NewNoopLogger())
		assert.Error(t, err)
	})

	t.Run("bad database url", func(t *testing.T) {
		setupConfigDir(t)
		t.Setenv("EMB_DATABASE_URL", "mysql://localhost/emb")

		_, err := LoadConfig(log.NewNoopLogger())
		assert.ErrorContains(t, err, "unsupported scheme")
	})

	t.Run("in-memory database outside test mode", func(t *testing.T) {
		setupConfigDir(t)
		t.Setenv("EMB_DATABASE_URL", "file::memory:")

		_, err := LoadConfig(log.NewNoopLogger())
		assert.ErrorContains(t, err, "only allowed in test mode")
	})
}

func TestLoadConfig_TestModeInMemoryDatabase(t *testing.T) {
	setupConfigDir(t)
	t.Setenv("EMB_MODE", "test")
	t.Setenv("EMB_DATABASE_URL", "file:")

	config, err := LoadConfig(log.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, ModeTest, config.mode)
	assert.True(t, config.dbConf.InMemory())
}

func TestLoadLogConfig(t *testing.T) {
	t.Setenv("EMB_LOG_LEVEL", "debug")
	t.Setenv("EMB_LOG_FORMAT", "json")

	conf, err := LoadLogConfig()
	require.NoError(t, err)
	assert.Equal(t, log.LevelDebug, conf.Level)
	assert.Equal(t, "json", conf.Format)
	assert.Equal(t, "stderr", conf.Output)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirPathEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EMB_TEST_DOTENV_VALUE=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("EMB_TEST_DOTENV_VALUE") })

	path, err := loadDotEnv()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env"), path)
	assert.Equal(t, "loaded", os.Getenv("EMB_TEST_DOTENV_VALUE"))
}
