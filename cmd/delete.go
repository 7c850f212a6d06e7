package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	deleteForce     bool
	deleteRecursive bool
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <remote-path>",
	Short: "Delete a file or folder on the file server",
	Long: `Delete a file, or a folder with all of its content.

Examples:
  minas-cli delete image.jpg                 # Delete a single file
  minas-cli delete photos/old-image.jpg      # Delete a nested file
  minas-cli delete photos/2019 --recursive   # Delete a folder and its content
  minas-cli delete image.jpg --force         # Delete without confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: deleteFile,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "force delete without confirmation")
	deleteCmd.Flags().BoolVarP(&deleteRecursive, "recursive", "r", false, "delete a folder with all of its content")
}

func deleteFile(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}
	path, err := remotePath(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	entry, err := findEntry(ctx, backend, path)
	if err != nil {
		return err
	}

	if entry.IsDir {
		if !deleteRecursive {
			return fmt.Errorf("/%s is a folder (use --recursive to delete it with its content)", path)
		}
		if !deleteForce && !confirm(fmt.Sprintf("Delete folder /%s? This will remove all of its content.", path)) {
			fmt.Println("Delete cancelled.")
			return nil
		}
		logrus.Infof("Deleting folder: /%s", path)
		if err := backend.DeleteDir(ctx, path); err != nil {
			return remoteError("delete", path, err)
		}
		logrus.Infof("Successfully deleted folder: /%s", path)
		return nil
	}

	if !deleteForce && !confirm(fmt.Sprintf("Are you sure you want to delete '/%s'?", path)) {
		fmt.Println("Delete cancelled.")
		return nil
	}

	logrus.Infof("Deleting file: /%s", path)
	if err := backend.Delete(ctx, path); err != nil {
		return remoteError("delete", path, err)
	}

	logrus.Infof("Successfully deleted: /%s", path)
	return nil
}
