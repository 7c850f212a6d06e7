// Package vpath handles virtual paths on the remote file store.
//
// A virtual path is a "/"-delimited string with no leading slash; the empty
// string is the root. Segments never contain "/".
package vpath

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Separator is the hierarchy delimiter of a virtual path.
const Separator = "/"

var (
	// ErrSeparator is returned for names that contain the separator.
	ErrSeparator = errors.New("name cannot contain '/'")
	// ErrEmptyName is returned for empty or whitespace-only names.
	ErrEmptyName = errors.New("name cannot be empty")
)

const upperhex = "0123456789ABCDEF"

// unreserved reports whether c is left as-is by encodeURIComponent.
func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// Encode percent-encodes every segment of path while keeping "/" as the
// hierarchy separator. The result never contains "%2F".
func Encode(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' || unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Decode reverses Encode, decoding each segment independently.
func Decode(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	segments := strings.Split(encoded, Separator)
	for i, seg := range segments {
		dec, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("failed to decode segment %q: %w", seg, err)
		}
		segments[i] = dec
	}
	return strings.Join(segments, Separator), nil
}

// Parent returns all segments of path but the last. It is empty for the
// root and for single-segment paths.
func Parent(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// Child joins name below path.
func Child(path, name string) string {
	if path == "" {
		return name
	}
	return path + Separator + name
}

// Base returns the last segment of path.
func Base(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// Clean normalizes a user-typed path: leading and trailing separators are
// dropped and empty segments collapsed. "/" and "" both mean root.
func Clean(path string) string {
	parts := strings.Split(path, Separator)
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator)
}

// ValidName checks a single leaf name typed by the user.
func ValidName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, Separator) {
		return ErrSeparator
	}
	return nil
}
