package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Backend names accepted in the "backend" setting.
const (
	BackendHTTP = "http"
	BackendS3   = "s3"
)

// AppName is used for config, data and log directories.
const AppName = "minas-cli"

// Config holds the complete application configuration
type Config struct {
	Backend string        `mapstructure:"backend"`
	Server  ServerConfig  `mapstructure:"server"`
	S3      S3Config      `mapstructure:"s3"`
	Log     LogConfig     `mapstructure:"log"`
	Upload  UploadConfig  `mapstructure:"upload"`
	UI      UIConfig      `mapstructure:"ui"`
	Preview PreviewConfig `mapstructure:"preview"`
}

// ServerConfig describes the REST file server.
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout in seconds applied to every request; 0 disables it.
	Timeout int `mapstructure:"timeout"`
}

// S3Config holds settings for an S3-compatible bucket backend (R2 by default).
type S3Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	PresignExpiry   int    `mapstructure:"presign_expiry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// UploadConfig holds upload-specific configuration
type UploadConfig struct {
	Compress          string `mapstructure:"compress"`
	MaxDimension      int    `mapstructure:"max_dimension"`
	ProgressThreshold int64  `mapstructure:"progress_threshold"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	ShowSize    bool   `mapstructure:"show_size"`
	DownloadDir string `mapstructure:"download_dir"`
}

// PreviewConfig controls terminal media preview.
type PreviewConfig struct {
	CacheDir   string `mapstructure:"cache_dir"`
	MaxCacheMB int64  `mapstructure:"max_cache_mb"`
	MaxBytes   int64  `mapstructure:"max_bytes"`
	Protocol   string `mapstructure:"protocol"`
}

// RequestTimeout returns the server timeout as a duration.
func (c *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// PresignTTL returns how long presigned S3 URLs stay valid.
func (c *S3Config) PresignTTL() time.Duration {
	return time.Duration(c.PresignExpiry) * time.Second
}

// Load loads configuration from multiple sources with priority:
// 1. Overrides (command line flags, highest)
// 2. Environment variables, including a .env file in the working directory
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Debugf("Skipping .env file: %v", err)
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MINAS")
	v.AutomaticEnv()

	v.BindEnv("backend", "MINAS_BACKEND")
	v.BindEnv("server.base_url", "MINAS_SERVER_URL")
	v.BindEnv("server.timeout", "MINAS_SERVER_TIMEOUT")
	v.BindEnv("s3.account_id", "MINAS_S3_ACCOUNT_ID")
	v.BindEnv("s3.access_key_id", "MINAS_S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secret_access_key", "MINAS_S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.bucket", "MINAS_S3_BUCKET")
	v.BindEnv("s3.endpoint", "MINAS_S3_ENDPOINT")
	v.BindEnv("s3.region", "MINAS_S3_REGION")
	v.BindEnv("log.level", "MINAS_LOG_LEVEL")
	v.BindEnv("log.format", "MINAS_LOG_FORMAT")
	v.BindEnv("log.file", "MINAS_LOG_FILE")
	v.BindEnv("upload.compress", "MINAS_UPLOAD_COMPRESS")
	v.BindEnv("ui.download_dir", "MINAS_DOWNLOAD_DIR")
	v.BindEnv("preview.protocol", "MINAS_PREVIEW_PROTOCOL")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + AppName)
		v.AddConfigPath("/etc/" + AppName + "/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendHTTP)

	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timeout", 0)

	v.SetDefault("s3.endpoint", "auto")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), AppName, "app.log"))

	v.SetDefault("upload.compress", "")
	v.SetDefault("upload.max_dimension", 1920)
	v.SetDefault("upload.progress_threshold", 100*1024)

	v.SetDefault("ui.show_size", true)
	v.SetDefault("ui.download_dir", "")

	v.SetDefault("preview.cache_dir", "")
	v.SetDefault("preview.max_cache_mb", 100)
	v.SetDefault("preview.max_bytes", 20*1024*1024)
	v.SetDefault("preview.protocol", "auto")
}

// GetConfigDir returns the per-user configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "."+AppName)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(GetConfigDir(), 0700)
}

// ResolveDownloadDir returns the configured download directory or ~/Downloads.
func (c *UIConfig) ResolveDownloadDir() (string, error) {
	if c.DownloadDir != "" {
		return c.DownloadDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// ResolveCacheDir returns the configured preview cache directory or a
// directory under the user cache root.
func (c *PreviewConfig) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName, "preview")
	}
	return filepath.Join(os.TempDir(), AppName, "preview")
}
