package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// renameCmd represents the rename command
var renameCmd = &cobra.Command{
	Use:   "rename <remote-path> <new-name>",
	Short: "Rename a file or folder in place",
	Long: `Rename a file or folder. The new name is a leaf name; the entry stays in
the same parent folder.

Examples:
  minas-cli rename photos/img_001.jpg cat.jpg
  minas-cli rename photos/2019 archive-2019`,
	Args: cobra.ExactArgs(2),
	RunE: renameEntry,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func renameEntry(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}
	path, err := remotePath(args[0])
	if err != nil {
		return err
	}

	name := args[1]
	if err := vpath.ValidName(name); err != nil {
		return fmt.Errorf("invalid name %q: %w", name, err)
	}
	if name == vpath.Base(path) {
		return nil
	}

	if err := backend.Rename(context.Background(), path, name); err != nil {
		return remoteError("rename", path, err)
	}

	target := vpath.Child(vpath.Parent(path), name)
	logrus.Infof("Renamed /%s to /%s", path, target)
	if !quiet {
		fmt.Printf("/%s\n", target)
	}
	return nil
}
