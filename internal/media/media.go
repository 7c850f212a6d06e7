// Package media decides how a remote file should be previewed and which
// content type it is uploaded with.
package media

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Kind is the preview category of a file.
type Kind int

const (
	Other Kind = iota
	Image
	Video
	Audio
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "other"
	}
}

// Lookup order matters: "ogg" appears in both video and audio and the first
// table that contains the extension wins.
var kindTables = []struct {
	kind Kind
	exts map[string]struct{}
}{
	{Image, set("png", "jpg", "jpeg", "gif", "webp", "bmp")},
	{Video, set("mp4", "webm", "ogg", "mov")},
	{Audio, set("mp3", "wav", "ogg", "m4a")},
}

func set(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Classify maps a file name to its preview kind by extension.
func Classify(name string) Kind {
	ext := Extension(name)
	if ext == "" {
		return Other
	}
	for _, t := range kindTables {
		if _, ok := t.exts[ext]; ok {
			return t.kind
		}
	}
	return Other
}

// IsCompressible reports whether an upload of name can be re-encoded by the
// image compressor.
func IsCompressible(name string) bool {
	switch Extension(name) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

var commonTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".json": "application/json",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

// ContentType detects the MIME type for an upload. The extension is tried
// first, then the first 512 bytes of head when given.
func ContentType(name string, head io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := commonTypes[ext]; ok {
		return ct, nil
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct, nil
	}

	if head != nil {
		buffer := make([]byte, 512)
		n, err := head.Read(buffer)
		if err != nil && err != io.EOF {
			return "", err
		}
		if ct := http.DetectContentType(buffer[:n]); ct != "application/octet-stream" {
			return ct, nil
		}
	}

	return "application/octet-stream", nil
}

// Icon is the glyph used for a listing row.
func Icon(name string, isDir bool) string {
	if isDir {
		return "📁"
	}
	switch Classify(name) {
	case Image:
		return "🖼"
	case Video:
		return "🎞"
	case Audio:
		return "🎵"
	}
	return "📄"
}
