package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/tui"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	serverURL    string
	backendName  string
	resume       bool
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minas-cli",
	Short: "Browse and manage files on a Mini NAS server",
	Long: `minas-cli is a terminal client for a Mini NAS file server.
It browses folders, uploads, downloads, renames and deletes files, and
previews images in the terminal. Configuration comes from TOML files,
MINAS_* environment variables and CLI flags.

Example usage:
  minas-cli                          # Interactive file browser
  minas-cli --server http://nas:8000 # Browse another server
  minas-cli list photos
  minas-cli upload image.jpg photos
  minas-cli shell`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowser()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.minas-cli/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "file server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "storage backend: http or s3 (overrides config)")

	rootCmd.Flags().BoolVar(&resume, "resume", true, "start in the folder visited last time")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	overrides := map[string]interface{}{}
	if serverURL != "" {
		overrides["server.base_url"] = serverURL
	}
	if backendName != "" {
		overrides["backend"] = backendName
	}

	var err error
	globalConfig, err = config.Load(cfgFile, overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(false)
	return nil
}

// setupLogging configures the global logger based on config and flags.
// Full-screen and interactive modes send logs to a file so they do not
// draw over the terminal.
func setupLogging(toFile bool) {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.SetOutput(os.Stderr)

	logFile := globalConfig.Log.File
	if toFile && logFile == "" {
		logFile = filepath.Join(os.TempDir(), config.AppName, "app.log")
	}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			logrus.Warnf("Failed to create log directory %s: %v", filepath.Dir(logFile), err)
		} else if file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

func newBackend() (filestore.Backend, error) {
	return filestore.New(GetConfig())
}

// runBrowser runs the interactive file browser.
func runBrowser() error {
	cfg := GetConfig()
	setupLogging(true)

	backend, err := newBackend()
	if err != nil {
		return err
	}

	userData, err := config.LoadUserData()
	if err != nil {
		logrus.WithError(err).Warn("User data unavailable")
		userData = nil
	}

	start := ""
	if resume && userData != nil {
		start = userData.LastPath(backend.Name())
	}

	return tui.Run(tui.Options{
		Backend:   backend,
		Config:    cfg,
		UserData:  userData,
		StartPath: start,
	})
}
