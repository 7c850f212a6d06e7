package utils

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/media"
)

// UploadOptions controls how a local file is prepared for upload.
type UploadOptions struct {
	// Name overrides the remote leaf name; defaults to the local base name.
	Name string
	// Compress is a config.CompressionQuality level; empty disables it.
	Compress     string
	MaxDimension int
}

// OptionsFromConfig builds UploadOptions from the upload config section.
func OptionsFromConfig(cfg *config.UploadConfig) UploadOptions {
	return UploadOptions{
		Compress:     cfg.Compress,
		MaxDimension: cfg.MaxDimension,
	}
}

// UploadSource is a local file ready to be streamed to the store.
type UploadSource struct {
	Name         string
	Size         int64
	OriginalSize int64
	ContentType  string
	Compressed   bool

	body   io.Reader
	closer io.Closer
}

// Reader returns the upload body.
func (s *UploadSource) Reader() io.Reader {
	return s.body
}

// Close releases the local file.
func (s *UploadSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// uploadError wraps errors raised while preparing an upload
type uploadError struct {
	operation string
	path      string
	err       error
}

func (e *uploadError) Error() string {
	return fmt.Sprintf("upload %s failed for %s: %v", e.operation, e.path, e.err)
}

func (e *uploadError) Unwrap() error {
	return e.err
}

// OpenUpload opens localPath and applies image compression when requested.
// Compressed output that is not smaller than the original is discarded.
func OpenUpload(localPath string, opts UploadOptions) (*UploadSource, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, &uploadError{operation: "open file", path: localPath, err: err}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &uploadError{operation: "get file info", path: localPath, err: err}
	}
	if info.IsDir() {
		file.Close()
		return nil, &uploadError{operation: "open file", path: localPath, err: fmt.Errorf("is a directory")}
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(localPath)
	}

	contentType, err := media.ContentType(name, file)
	if err != nil {
		logrus.Warnf("Failed to detect content type: %v", err)
		contentType = "application/octet-stream"
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, &uploadError{operation: "seek file", path: localPath, err: err}
	}

	src := &UploadSource{
		Name:         name,
		Size:         info.Size(),
		OriginalSize: info.Size(),
		ContentType:  contentType,
		body:         file,
		closer:       file,
	}

	if opts.Compress == "" || strings.EqualFold(opts.Compress, "none") || !media.IsCompressible(name) {
		return src, nil
	}

	data, err := CompressImage(file, name, opts.Compress, opts.MaxDimension)
	if err != nil {
		file.Close()
		return nil, &uploadError{operation: "compress image", path: localPath, err: err}
	}
	if int64(len(data)) >= info.Size() {
		logrus.Debugf("Compression did not shrink %s, uploading original", localPath)
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, &uploadError{operation: "seek file", path: localPath, err: err}
		}
		return src, nil
	}

	file.Close()
	logrus.Infof("Compressed image from %d bytes to %d bytes (%.1f%% reduction)",
		info.Size(), len(data), float64(info.Size()-int64(len(data)))/float64(info.Size())*100)

	src.body = bytes.NewReader(data)
	src.closer = nil
	src.Size = int64(len(data))
	src.Compressed = true
	return src, nil
}

// CompressImage re-encodes an image, fitting it into maxDimension pixels on
// its longest side. JPEGs are re-encoded at the level's quality; PNGs keep
// their format and use the best zlib compression.
func CompressImage(r io.Reader, name, level string, maxDimension int) ([]byte, error) {
	quality, ok := config.CompressionQuality[strings.ToLower(level)]
	if !ok {
		return nil, fmt.Errorf("invalid compression level: %s (use: high, fine, normal, low)", level)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > maxDimension || b.Dy() > maxDimension {
			img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	switch media.Extension(name) {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode compressed image: %w", err)
	}
	return buf.Bytes(), nil
}

// FileUploader sends local files into a remote directory.
type FileUploader struct {
	store   filestore.Store
	options UploadOptions
}

// NewFileUploader creates an uploader with default options.
func NewFileUploader(store filestore.Store, options UploadOptions) *FileUploader {
	return &FileUploader{store: store, options: options}
}

// UploadFile uploads localPath into dir. callback may be nil.
func (fu *FileUploader) UploadFile(ctx context.Context, localPath, dir string, callback ProgressCallback) (*UploadSource, error) {
	src, err := OpenUpload(localPath, fu.options)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var body io.Reader = src.Reader()
	if callback != nil {
		body = NewProgressReader(body, src.Size, callback)
	}

	logrus.Infof("Uploading %s (%d bytes) to /%s", localPath, src.Size, dir)
	if err := fu.store.Upload(ctx, dir, src.Name, body, src.Size); err != nil {
		return src, err
	}

	logrus.Infof("Successfully uploaded %s as %s", localPath, src.Name)
	return src, nil
}
