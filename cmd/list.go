package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/media"
	"github.com/HaiFongPan/minas-cli/internal/utils"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

var (
	showSize bool
	showURL  bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List a folder on the file server",
	Long: `List the entries of a folder in server order.

Examples:
  minas-cli list              # List the root folder
  minas-cli list photos/2024  # List a nested folder
  minas-cli list docs --url   # Include download links`,
	Args: cobra.MaximumNArgs(1),
	RunE: listFiles,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&showSize, "size", true, "show file sizes")
	listCmd.Flags().BoolVar(&showURL, "url", false, "show download URLs")
}

func listFiles(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = vpath.Clean(args[0])
	}

	logrus.Debugf("Listing /%s on %s", path, backend.Name())
	entries, err := backend.List(context.Background(), path)
	if err != nil {
		return remoteError("list", path, err)
	}

	return outputTable(backend, path, entries)
}

func outputTable(links filestore.Store, dir string, entries []filestore.Entry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := "TYPE\tNAME"
	if showSize {
		header += "\tSIZE"
	}
	if showURL {
		header += "\tURL"
	}
	fmt.Fprintln(w, header)

	for _, e := range entries {
		kind := "DIR"
		name := e.Name + "/"
		if !e.IsDir {
			kind = strings.ToUpper(media.Classify(e.Name).String())
			name = e.Name
		}
		line := kind + "\t" + name

		if showSize {
			size := "-"
			if e.Size != nil {
				size = utils.FormatBytes(*e.Size)
			}
			line += "\t" + size
		}
		if showURL {
			link := "-"
			if !e.IsDir {
				link = links.DownloadURL(vpath.Child(dir, e.Name))
			}
			line += "\t" + link
		}
		fmt.Fprintln(w, line)
	}

	return w.Flush()
}
