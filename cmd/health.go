package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the file server is reachable",
	Args:  cobra.NoArgs,
	RunE:  checkHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "how long to wait for an answer")
}

func checkHealth(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	start := time.Now()
	if err := backend.Ping(ctx); err != nil {
		return fmt.Errorf("%s is unreachable: %w", backend.Name(), err)
	}
	fmt.Printf("%s is up (%s)\n", backend.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}
