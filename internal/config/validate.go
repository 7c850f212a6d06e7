package config

import (
	"fmt"
	"net/url"
	"strings"
)

// CompressionQuality maps upload.compress levels to JPEG quality.
var CompressionQuality = map[string]int{
	"high":   95,
	"fine":   85,
	"normal": 75,
	"low":    60,
}

// ValidateCompression checks an upload.compress level. Empty and "none"
// disable compression.
func ValidateCompression(level string) error {
	level = strings.ToLower(level)
	if level == "" || level == "none" {
		return nil
	}
	if _, ok := CompressionQuality[level]; !ok {
		return fmt.Errorf("invalid compress level: %s (valid: none, low, normal, fine, high)", level)
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	switch strings.ToLower(config.Backend) {
	case BackendHTTP:
		if err := validateServerConfig(&config.Server); err != nil {
			return fmt.Errorf("server config validation failed: %w", err)
		}
	case BackendS3:
		if err := validateS3Config(&config.S3); err != nil {
			return fmt.Errorf("s3 config validation failed: %w", err)
		}
	default:
		return fmt.Errorf("invalid backend: %s (valid: http, s3)", config.Backend)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateUploadConfig(&config.Upload); err != nil {
		return fmt.Errorf("upload config validation failed: %w", err)
	}

	if err := validatePreviewConfig(&config.Preview); err != nil {
		return fmt.Errorf("preview config validation failed: %w", err)
	}

	return nil
}

// validateServerConfig validates the REST server settings
func validateServerConfig(config *ServerConfig) error {
	if strings.TrimSpace(config.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host: %q", config.BaseURL)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got: %d", config.Timeout)
	}

	return nil
}

// validateS3Config validates the bucket backend settings
func validateS3Config(config *S3Config) error {
	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.SecretAccessKey) == "" {
		return fmt.Errorf("secret_access_key is required")
	}

	if strings.TrimSpace(config.Bucket) == "" {
		return fmt.Errorf("bucket is required")
	}

	if !isValidBucketName(config.Bucket) {
		return fmt.Errorf("invalid bucket format: %s", config.Bucket)
	}

	if (config.Endpoint == "" || config.Endpoint == "auto") && strings.TrimSpace(config.AccountID) == "" {
		return fmt.Errorf("account_id is required when endpoint is auto")
	}

	if config.PresignExpiry <= 0 {
		return fmt.Errorf("presign_expiry must be positive, got: %d", config.PresignExpiry)
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateUploadConfig validates upload configuration
func validateUploadConfig(config *UploadConfig) error {
	if err := ValidateCompression(config.Compress); err != nil {
		return err
	}

	if config.MaxDimension <= 0 {
		return fmt.Errorf("max_dimension must be positive, got: %d", config.MaxDimension)
	}

	if config.ProgressThreshold < 0 {
		return fmt.Errorf("progress_threshold must be non-negative, got: %d", config.ProgressThreshold)
	}

	return nil
}

// validatePreviewConfig validates preview configuration
func validatePreviewConfig(config *PreviewConfig) error {
	validProtocols := map[string]bool{
		"auto":  true,
		"kitty": true,
		"iterm": true,
		"sixel": true,
		"ansi":  true,
	}
	if !validProtocols[strings.ToLower(config.Protocol)] {
		return fmt.Errorf("invalid protocol: %s (valid: auto, kitty, iterm, sixel, ansi)", config.Protocol)
	}

	if config.MaxCacheMB < 0 {
		return fmt.Errorf("max_cache_mb must be non-negative, got: %d", config.MaxCacheMB)
	}

	if config.MaxBytes <= 0 {
		return fmt.Errorf("max_bytes must be positive, got: %d", config.MaxBytes)
	}

	return nil
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i, char := range name {
		if !isAlphaNum(byte(char)) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
