package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/utils"
)

var (
	urlStream bool
	urlCopy   bool
)

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url <remote-path>",
	Short: "Print the download or stream URL of a file",
	Long: `Print the URL that downloads a file, or with --stream the URL that serves
it inline for players and browsers.

Examples:
  minas-cli url movies/trip.mp4 --stream | xargs mpv
  minas-cli url docs/report.pdf --copy`,
	Args: cobra.ExactArgs(1),
	RunE: printURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)

	urlCmd.Flags().BoolVarP(&urlStream, "stream", "s", false, "print the inline stream URL")
	urlCmd.Flags().BoolVar(&urlCopy, "copy", false, "copy the URL to the clipboard")
}

func printURL(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}
	path, err := remotePath(args[0])
	if err != nil {
		return err
	}

	link := backend.DownloadURL(path)
	if urlStream {
		link = backend.StreamURL(path)
	}
	fmt.Println(link)

	if urlCopy {
		if err := utils.CopyToClipboard(link); err != nil {
			return err
		}
		logrus.Info("URL copied to clipboard")
	}
	return nil
}
