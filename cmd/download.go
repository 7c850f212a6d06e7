package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/utils"
)

var (
	downloadDir        string
	downloadNoProgress bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <remote-path>",
	Short: "Download a file from the file server",
	Long: `Download a file into the download directory. Existing local files are
kept; the new file gets a "name (1).ext" style name instead.

Examples:
  minas-cli download photos/cat.jpg           # Save to ui.download_dir
  minas-cli download report.pdf -o ~/Desktop  # Save to another folder`,
	Args: cobra.ExactArgs(1),
	RunE: downloadFile,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&downloadDir, "output", "o", "", "local directory (overrides ui.download_dir)")
	downloadCmd.Flags().BoolVar(&downloadNoProgress, "no-progress", false, "disable progress bar")
}

func downloadFile(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	backend, err := newBackend()
	if err != nil {
		return err
	}
	path, err := remotePath(args[0])
	if err != nil {
		return err
	}

	dir := downloadDir
	if dir == "" {
		if dir, err = cfg.UI.ResolveDownloadDir(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	entry, err := findEntry(ctx, backend, path)
	if err != nil {
		return err
	}
	if entry.IsDir {
		return fmt.Errorf("/%s is a folder", path)
	}

	var callback utils.ProgressCallback
	size := int64(-1)
	if entry.Size != nil {
		size = *entry.Size
	}
	if !downloadNoProgress && utils.ShowProgress(size, cfg.Upload.ProgressThreshold, quiet) {
		bar := utils.NewCLIProgress(size, fmt.Sprintf("Downloading %s", entry.Name))
		defer bar.Finish()
		callback = bar.Callback()
	}

	downloader := utils.NewFileDownloader(backend, dir)
	localPath, err := downloader.Download(ctx, backend.DownloadURL(path), entry.Name, callback)
	if err != nil {
		return remoteError("download", path, err)
	}

	if !quiet {
		fmt.Printf("Saved /%s to %s\n", path, localPath)
	}
	return nil
}
