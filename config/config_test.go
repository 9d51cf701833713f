package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	c := loadConfig()

	assert.Equal(t, "5000", c.Server.Port)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.Equal(t, "https://api.grsai.com", c.Upstream.Host)
	assert.Equal(t, 3, c.Security.MaxReferenceImages)
	assert.Equal(t, 5*1024*1024, c.Security.MaxReferenceImageBytes)
	assert.Equal(t, 2*time.Second, c.Poll.Interval)
	assert.Equal(t, 150, c.Poll.MaxAttempts)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9000"
upstream:
  host: https://file.example.com/
  api_key: file-key
security:
  max_reference_images: 5
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("NANO_BANANA_API_KEY", "env-key")
	t.Setenv("MAX_REFERENCE_IMAGE_BYTES", "1024")
	t.Setenv("DB_PATH", "/tmp/banana.db")

	c := loadConfig()

	assert.Equal(t, "9000", c.Server.Port)
	assert.Equal(t, "env-key", c.Upstream.APIKey, "环境变量应覆盖配置文件")
	assert.Equal(t, 5, c.Security.MaxReferenceImages)
	assert.Equal(t, 1024, c.Security.MaxReferenceImageBytes)
	assert.Equal(t, "/tmp/banana.db", c.Database.DSN)
}

func TestLoadConfigMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"9000\"\nupstream: [unclosed\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "")
	t.Setenv("NANO_BANANA_HOST", "https://env.example.com")

	c := loadConfig()

	assert.Equal(t, "5000", c.Server.Port, "解析失败的配置文件不应部分生效")
	assert.Equal(t, "https://env.example.com", c.Upstream.Host, "环境变量仍然生效")
}

func TestEndpoints(t *testing.T) {
	c := Default()
	c.Upstream.Host = "https://api.example.com/"

	assert.Equal(t, "https://api.example.com/v1/draw/nano-banana", c.DrawEndpoint())
	assert.Equal(t, "https://api.example.com/v1/draw/result", c.ResultEndpoint())
	assert.Equal(t, "https://api.example.com/v1/chat/completions", c.ChatEndpoint())
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_REFERENCE_IMAGES", "lots")
	_, ok := envInt("MAX_REFERENCE_IMAGES")
	assert.False(t, ok)
}
