package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Entry is one child of a listed directory.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	// Size is nil for directories and for servers that do not report it.
	Size *int64 `json:"size,omitempty"`
}

// Store is the set of remote operations the listing controller relies on.
type Store interface {
	List(ctx context.Context, path string) ([]Entry, error)
	Upload(ctx context.Context, dir, name string, r io.Reader, size int64) error
	Delete(ctx context.Context, filePath string) error
	// DeleteDir removes a directory and all of its descendants.
	DeleteDir(ctx context.Context, dirPath string) error
	Mkdir(ctx context.Context, parent, name string) error
	Rename(ctx context.Context, path, newName string) error
	DownloadURL(path string) string
	StreamURL(path string) string
}

// Backend is a Store plus the extras used by the command line and preview.
type Backend interface {
	Store
	// Ping checks that the remote side is reachable.
	Ping(ctx context.Context) error
	// Open fetches a URL produced by DownloadURL or StreamURL. The size is -1
	// when unknown.
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
	// Name identifies the remote, e.g. its base URL.
	Name() string
}

// ServerError is a non-2xx answer from the file store.
type ServerError struct {
	StatusCode int
	Body       string
}

// Error returns the response body verbatim so it can be shown to the user
// as-is.
func (e *ServerError) Error() string {
	if strings.TrimSpace(e.Body) != "" {
		return e.Body
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Detail extracts the "detail" field of a JSON error body, falling back to
// the full body text.
func (e *ServerError) Detail() string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return e.Error()
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the store (existing entry,
// non-empty directory).
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

func statusOf(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
