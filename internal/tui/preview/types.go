package preview

import (
	"errors"
	"fmt"
	"time"
)

// ErrTooLarge is returned when an image exceeds preview.max_bytes.
var ErrTooLarge = errors.New("image too large to preview")

// Image is a rendered preview.
type Image struct {
	Path     string
	Width    int
	Height   int
	Format   string
	Rendered string
	CacheHit bool
	LoadTime time.Duration
}

// RenderError 渲染错误类型
type RenderError struct {
	Protocol Protocol
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error with %s protocol: %v", e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// CacheError 缓存错误类型
type CacheError struct {
	Operation string
	Path      string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s operation on %s: %v", e.Operation, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
