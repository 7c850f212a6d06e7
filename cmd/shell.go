package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/shell"
)

var shellResume bool

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Line-based interactive shell",
	Long: `Start a line-based shell with ls, cd, mkdir, rename, rm, put, get,
preview and url commands. Commands can also be piped in:

  printf 'cd photos\nls\n' | minas-cli shell`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().BoolVar(&shellResume, "resume", false, "start in the folder visited last time in the browser")
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	setupLogging(true)

	backend, err := newBackend()
	if err != nil {
		return err
	}

	start := ""
	if shellResume {
		if userData, err := config.LoadUserData(); err == nil {
			start = userData.LastPath(backend.Name())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh, err := shell.New(shell.Options{
		Backend:   backend,
		Config:    cfg,
		Lines:     shell.NewLineReader(os.Stdin, os.Stdout),
		Out:       os.Stdout,
		StartPath: start,
		Quiet:     quiet,
		Size: func() (int, int) {
			w, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				return 80, 24
			}
			return w, h
		},
	})
	if err != nil {
		return err
	}
	return sh.Run(ctx)
}
