// Package preview renders remote images inside the terminal for the
// preview overlay.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Opener fetches a stream URL.
type Opener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

// Loader fetches, caches and renders preview images.
type Loader struct {
	opener   Opener
	cache    *Cache
	renderer *Renderer
	maxBytes int64
}

// NewLoader creates a loader. cache may be nil to disable caching.
func NewLoader(opener Opener, cache *Cache, renderer *Renderer, maxBytes int64) *Loader {
	return &Loader{
		opener:   opener,
		cache:    cache,
		renderer: renderer,
		maxBytes: maxBytes,
	}
}

// Renderer returns the renderer in use.
func (l *Loader) Renderer() *Renderer {
	return l.renderer
}

// Load returns the image at src, keyed by the remote path, rendered into
// cols x rows cells. force bypasses the cache.
func (l *Loader) Load(ctx context.Context, path, src string, cols, rows int, force bool) (*Image, error) {
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"path": path, "force": force})

	data, hit, err := l.fetch(ctx, path, src, force)
	if err != nil {
		return nil, err
	}

	img, format, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	rendered, err := l.renderer.Render(img, cols, rows)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	result := &Image{
		Path:     path,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		Rendered: rendered,
		CacheHit: hit,
		LoadTime: time.Since(start),
	}
	log.WithFields(logrus.Fields{
		"cache_hit": hit,
		"load_ms":   result.LoadTime.Milliseconds(),
	}).Info("Image preview generated")
	return result, nil
}

func (l *Loader) fetch(ctx context.Context, path, src string, force bool) ([]byte, bool, error) {
	if l.cache != nil {
		if force {
			l.cache.Delete(path)
		} else if cached, ok := l.cache.Get(path); ok {
			data, err := os.ReadFile(cached)
			if err == nil {
				return data, true, nil
			}
			l.cache.Delete(path)
		}
	}

	body, size, err := l.opener.Open(ctx, src)
	if err != nil {
		return nil, false, err
	}
	defer body.Close()

	if l.maxBytes > 0 && size > l.maxBytes {
		return nil, false, ErrTooLarge
	}

	var reader io.Reader = body
	if l.maxBytes > 0 {
		reader = io.LimitReader(body, l.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read image: %w", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, false, ErrTooLarge
	}

	if l.cache != nil {
		ext := strings.ToLower(filepath.Ext(path))
		if _, err := l.cache.Put(path, bytes.NewReader(data), ext); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("Failed to cache preview image")
		}
	}
	return data, false, nil
}

func decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}
