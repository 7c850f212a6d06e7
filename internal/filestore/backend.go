package filestore

import (
	"fmt"
	"strings"

	appconfig "github.com/HaiFongPan/minas-cli/internal/config"
)

// New returns the backend selected by cfg.Backend.
func New(cfg *appconfig.Config) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case appconfig.BackendS3:
		store, err := NewS3Store(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 backend: %w", err)
		}
		return store, nil
	case appconfig.BackendHTTP, "":
		client, err := NewClient(&cfg.Server)
		if err != nil {
			return nil, fmt.Errorf("failed to create file server client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
