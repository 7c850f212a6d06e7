package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/utils"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

var (
	uploadName       string
	uploadOverwrite  bool
	uploadCompress   string
	uploadNoProgress bool
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <file-path>... [remote-folder]",
	Short: "Upload files to a folder on the file server",
	Long: `Upload one or more local files into a remote folder. The last argument
is the destination folder when more than one argument is given.

Examples:
  minas-cli upload image.jpg                   # Upload to the root folder
  minas-cli upload image.jpg photos            # Upload into photos
  minas-cli upload image.jpg photos --as a.jpg # Upload under another name
  minas-cli upload image.jpg --compress high   # Compress before upload
  minas-cli upload a.jpg b.jpg photos          # Upload multiple files`,
	Args: cobra.MinimumNArgs(1),
	RunE: uploadFiles,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadName, "as", "", "remote file name (single file only)")
	uploadCmd.Flags().BoolVar(&uploadOverwrite, "overwrite", false, "replace existing files")
	uploadCmd.Flags().StringVarP(&uploadCompress, "compress", "z", "", "image compression level (none, low, normal, fine, high)")
	uploadCmd.Flags().BoolVar(&uploadNoProgress, "no-progress", false, "disable progress bar")
}

func uploadFiles(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	backend, err := newBackend()
	if err != nil {
		return err
	}

	files := args
	dir := ""
	if len(args) > 1 {
		files = args[:len(args)-1]
		dir = vpath.Clean(args[len(args)-1])
	}
	if uploadName != "" && len(files) > 1 {
		return fmt.Errorf("--as can only be used with a single file")
	}

	// Compression level: CLI flag > config
	options := utils.OptionsFromConfig(&cfg.Upload)
	if cmd.Flags().Changed("compress") {
		if err := config.ValidateCompression(uploadCompress); err != nil {
			return err
		}
		options.Compress = uploadCompress
	}
	options.Name = uploadName

	ctx := context.Background()
	existing := map[string]bool{}
	if !uploadOverwrite {
		entries, err := backend.List(ctx, dir)
		if err != nil {
			return remoteError("list", dir, err)
		}
		for _, e := range entries {
			existing[e.Name] = true
		}
	}

	uploader := utils.NewFileUploader(backend, options)
	for _, file := range files {
		name := filepath.Base(file)
		if uploadName != "" {
			name = uploadName
		}
		if existing[name] {
			return fmt.Errorf("/%s already exists (use --overwrite to replace)", vpath.Child(dir, name))
		}

		if err := uploadOne(ctx, uploader, file, dir, cfg.Upload.ProgressThreshold); err != nil {
			return err
		}
	}
	return nil
}

func uploadOne(ctx context.Context, uploader *utils.FileUploader, file, dir string, threshold int64) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", file, err)
	}

	var callback utils.ProgressCallback
	if !uploadNoProgress && utils.ShowProgress(info.Size(), threshold, quiet) {
		bar := utils.NewCLIProgress(info.Size(), fmt.Sprintf("Uploading %s", filepath.Base(file)))
		defer bar.Finish()
		callback = bar.Callback()
	}

	src, err := uploader.UploadFile(ctx, file, dir, callback)
	if err != nil {
		if src != nil {
			return remoteError("upload", vpath.Child(dir, src.Name), err)
		}
		return err
	}

	logrus.Debugf("Upload of %s finished (compressed=%t)", file, src.Compressed)
	if !quiet {
		fmt.Printf("Uploaded %s to /%s (%s)\n", file, vpath.Child(dir, src.Name), utils.FormatBytes(src.Size))
	}
	return nil
}
