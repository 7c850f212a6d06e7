package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Opener fetches a download or stream URL.
type Opener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

// FileDownloader saves remote files into a local directory.
type FileDownloader struct {
	opener Opener
	dir    string
}

// NewFileDownloader creates a downloader writing into dir.
func NewFileDownloader(opener Opener, dir string) *FileDownloader {
	return &FileDownloader{opener: opener, dir: dir}
}

// Dir returns the target directory.
func (d *FileDownloader) Dir() string {
	return d.dir
}

// Download fetches rawURL and stores it as name in the target directory,
// picking "name (n).ext" when the file already exists. It returns the local
// path written. callback may be nil.
func (d *FileDownloader) Download(ctx context.Context, rawURL, name string, callback ProgressCallback) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	body, size, err := d.opener.Open(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	localPath := ResolveFileNameConflict(filepath.Join(d.dir, filepath.Base(name)))
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}

	var src io.Reader = body
	if callback != nil {
		src = NewProgressReader(body, size, callback)
	}

	if _, err := io.Copy(file, src); err != nil {
		file.Close()
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	logrus.Infof("File downloaded successfully to: %s", localPath)
	return localPath, nil
}

// ResolveFileNameConflict returns originalPath when it is free, otherwise
// the first free "base (n).ext".
func ResolveFileNameConflict(originalPath string) string {
	if _, err := os.Stat(originalPath); os.IsNotExist(err) {
		return originalPath
	}

	ext := filepath.Ext(originalPath)
	baseName := originalPath[:len(originalPath)-len(ext)]

	for i := 1; i < 1000; i++ {
		newPath := fmt.Sprintf("%s (%d)%s", baseName, i, ext)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	return fmt.Sprintf("%s_%d%s", baseName, os.Getpid(), ext)
}
