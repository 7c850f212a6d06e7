package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

var mkdirParents bool

// mkdirCmd represents the mkdir command
var mkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-path>",
	Short: "Create a folder on the file server",
	Long: `Create a folder. The parent must exist unless --parents is given.

Examples:
  minas-cli mkdir photos             # Create photos in the root folder
  minas-cli mkdir photos/2024/trip -p # Create missing parents too`,
	Args: cobra.ExactArgs(1),
	RunE: makeDir,
}

func init() {
	rootCmd.AddCommand(mkdirCmd)

	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "create missing parent folders")
}

func makeDir(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}
	path, err := remotePath(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if !mkdirParents {
		if err := backend.Mkdir(ctx, vpath.Parent(path), vpath.Base(path)); err != nil {
			return remoteError("create", path, err)
		}
		logrus.Infof("Created folder: /%s", path)
	} else if err := makeParents(ctx, backend, path); err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("/%s\n", path)
	}
	return nil
}

func makeParents(ctx context.Context, store filestore.Store, path string) error {
	parent := ""
	for _, name := range splitPath(path) {
		current := vpath.Child(parent, name)
		entries, err := store.List(ctx, parent)
		if err != nil {
			return remoteError("list", parent, err)
		}
		if !hasDir(entries, name) {
			if err := store.Mkdir(ctx, parent, name); err != nil {
				return remoteError("create", current, err)
			}
			logrus.Infof("Created folder: /%s", current)
		}
		parent = current
	}
	return nil
}
