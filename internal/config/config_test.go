package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Server.RequestTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1920, cfg.Upload.MaxDimension)
	assert.Equal(t, "auto", cfg.Preview.Protocol)
}

func TestLoadFileAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
base_url = "http://nas.local:9000"
timeout = 15

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path, map[string]interface{}{"server.base_url": "https://override.example"})
	require.NoError(t, err)

	assert.Equal(t, "https://override.example", cfg.Server.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("MINAS_SERVER_URL", "http://env.example:8080")
	path := writeConfig(t, "")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:8080", cfg.Server.BaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend: BackendHTTP,
			Server:  ServerConfig{BaseURL: "http://localhost:8000"},
			S3:      S3Config{PresignExpiry: 60},
			Log:     LogConfig{Level: "info", Format: "text"},
			Upload:  UploadConfig{MaxDimension: 1920},
			Preview: PreviewConfig{Protocol: "auto", MaxBytes: 1024},
		}
	}

	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "ftp" }, "invalid backend"},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, "base_url is required"},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }, "http or https"},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -1 }, "timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad compress", func(c *Config) { c.Upload.Compress = "ultra" }, "invalid compress level"},
		{"bad protocol", func(c *Config) { c.Preview.Protocol = "vt100" }, "invalid protocol"},
		{"s3 missing bucket", func(c *Config) {
			c.Backend = BackendS3
			c.S3.AccessKeyID = "id"
			c.S3.SecretAccessKey = "secret"
		}, "bucket is required"},
		{"s3 missing account", func(c *Config) {
			c.Backend = BackendS3
			c.S3.AccessKeyID = "id"
			c.S3.SecretAccessKey = "secret"
			c.S3.Bucket = "my-bucket"
			c.S3.Endpoint = "auto"
		}, "account_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := Validate(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsValidBucketName(t *testing.T) {
	assert.True(t, isValidBucketName("my-bucket.data"))
	assert.False(t, isValidBucketName("ab"))
	assert.False(t, isValidBucketName("-bucket"))
	assert.False(t, isValidBucketName("a..b"))
}

func TestUserDataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.data")

	ud := loadUserDataFrom(path)
	assert.Equal(t, "", ud.LastPath("http://nas"))

	require.NoError(t, ud.SetLastPath("http://nas", "docs/2024"))
	require.NoError(t, ud.SetLastUploadDir("/home/me/pics"))

	reloaded := loadUserDataFrom(path)
	assert.Equal(t, "docs/2024", reloaded.LastPath("http://nas"))
	assert.Equal(t, "/home/me/pics", reloaded.LastUploadDir)
	assert.False(t, reloaded.CreatedAt.IsZero())
}

func TestUserDataCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.data")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	ud := loadUserDataFrom(path)
	assert.NotNil(t, ud.LastPaths)
	assert.Empty(t, ud.LastPaths)
}
