package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/job-seekers/harvest/internal/app"
	"github.com/job-seekers/harvest/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Extract job postings from a heavily scripted careers site",
	Long: `Harvest drives a real browser through the careers site's search flow with
human pacing, resolves page elements through layered selector fallbacks, and
exports the extracted postings as CSV and JSON.`,
	Version: "0.1.0",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize the application lazily so -h/--help never starts anything.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if App() != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := App()
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Close(ctx)
		SetApp(nil)
	}
}
