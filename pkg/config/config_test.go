package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.Server.HttpPort)
	assert.Equal(t, "m/44'/626'/0'/0/0", cfg.Oracle.DefaultPath)
	assert.Equal(t, 60*time.Second, cfg.Oracle.AwaitTimeout)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "oracle.yaml")
	data := []byte(`
app:
  env: production
oracle:
  await_timeout: 5s
cache:
  type: redis
  addr: redis:6379
`)
	require.NoError(t, os.WriteFile(file, data, 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 5*time.Second, cfg.Oracle.AwaitTimeout)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	// 未覆盖的字段保留默认值
	assert.Equal(t, "8080", cfg.Server.HttpPort)
}

func TestLoadRejectsUnknownCache(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "oracle.yaml")
	require.NoError(t, os.WriteFile(file, []byte("cache:\n  type: memcached\n"), 0o600))

	_, err := Load(file)
	assert.Error(t, err)
}

func TestLoadRejectsForeignDefaultPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "oracle.yaml")
	require.NoError(t, os.WriteFile(file, []byte("oracle:\n  default_path: \"m/44'/60'/0'/0/0\"\n"), 0o600))

	_, err := Load(file)
	assert.ErrorContains(t, err, "oracle.default_path")
}
