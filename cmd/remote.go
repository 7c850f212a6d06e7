package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// remoteError wraps a store failure, reducing JSON error bodies to their
// detail message.
func remoteError(action, path string, err error) error {
	var se *filestore.ServerError
	if errors.As(err, &se) {
		return fmt.Errorf("failed to %s /%s: %s", action, path, se.Detail())
	}
	return fmt.Errorf("failed to %s /%s: %w", action, path, err)
}

// remotePath cleans a path typed on the command line and rejects the root.
func remotePath(arg string) (string, error) {
	path := vpath.Clean(arg)
	if path == "" {
		return "", fmt.Errorf("the root folder cannot be changed")
	}
	return path, nil
}

// confirm asks a yes/no question on stdin; anything but y/yes declines.
func confirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	var response string
	fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// findEntry looks path up in its parent listing.
func findEntry(ctx context.Context, store filestore.Store, path string) (*filestore.Entry, error) {
	parent := vpath.Parent(path)
	entries, err := store.List(ctx, parent)
	if err != nil {
		return nil, remoteError("list", parent, err)
	}
	name := vpath.Base(path)
	for i := range entries {
		if entries[i].Name == name {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("/%s does not exist", path)
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, vpath.Separator)
}

func hasDir(entries []filestore.Entry, name string) bool {
	for _, e := range entries {
		if e.Name == name && e.IsDir {
			return true
		}
	}
	return false
}
