package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/job-seekers/harvest/internal/config"
	"github.com/job-seekers/harvest/internal/engine"
	"github.com/job-seekers/harvest/internal/pacing"
	"github.com/job-seekers/harvest/internal/sink"
	"github.com/job-seekers/harvest/internal/ui"
	"github.com/job-seekers/harvest/pkg/models"
)

var (
	jobTitle   string
	jobLoc     string
	maxJobs    int
	headless   bool
	outputDir  string
	filePrefix string
	noSave     bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search the careers site and extract job listings",
	Long: `Opens the careers site in a real browser, submits a job search with human
pacing, and extracts the result listings. Results are written as timestamped
CSV and JSON files.

The browser is visible by default; the target treats headless fingerprints
more aggressively. Use --headless for unattended runs.`,
	Example: `  # Default search ("AI" near Seattle, up to 50 jobs)
  harvest scrape

  # Custom search
  harvest scrape --title "Machine Learning" --location Redmond --max-jobs 20

  # Unattended run with JSON logs
  harvest scrape --headless --json`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&jobTitle, "title", "t", config.DefaultJobTitle, "Job title or keyword to search for")
	scrapeCmd.Flags().StringVarP(&jobLoc, "location", "l", config.DefaultLocation, "Location to search near")
	scrapeCmd.Flags().IntVarP(&maxJobs, "max-jobs", "n", config.DefaultMaxJobs, "Maximum number of jobs to extract")
	scrapeCmd.Flags().BoolVar(&headless, "headless", config.DefaultHeadless, "Run the browser without a window")
	scrapeCmd.Flags().StringVarP(&outputDir, "out-dir", "o", "", "Directory for result files")
	scrapeCmd.Flags().StringVar(&filePrefix, "prefix", "", "Result filename prefix")
	scrapeCmd.Flags().BoolVar(&noSave, "no-save", false, "Print results without writing files")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := App()
	cfg := a.Config
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if filePrefix != "" {
		cfg.FilePrefix = filePrefix
	}
	cfg.Headless = headless

	if maxJobs < 0 {
		return fmt.Errorf("--max-jobs must not be negative")
	}
	params := models.ScrapeParams{
		JobTitle: jobTitle,
		Location: jobLoc,
		MaxJobs:  maxJobs,
		Headless: headless,
	}

	ctx := cmd.Context()

	fmt.Printf("%s %q near %q (up to %d jobs)\n", ui.Bold("Searching:"), params.JobTitle, params.Location, params.MaxJobs)

	browser, err := a.LaunchBrowser(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrBrowserNotFound) {
			return fmt.Errorf("no Chrome installation found; install Chrome or set CHROME_PATH")
		}
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer browser.Close()

	session := engine.NewSession(browser.Page(), engine.Options{
		BaseURL:     cfg.BaseURL,
		Source:      cfg.Source,
		Timing:      cfg.Timing,
		Selectors:   cfg.Selectors,
		NavRetry:    engine.NavPolicy(cfg.Retry),
		SearchRetry: engine.SearchPolicy(cfg.Retry),
	}, pacing.New(), a.RateLimiter)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scraping"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = bar.Add(1)
			}
		}
	}()

	result, err := session.Run(ctx, params)
	close(done)
	_ = bar.Finish()

	if err != nil {
		if path := saveFailureShot(cfg, result); path != "" {
			fmt.Println(ui.Error("Scrape failed; screenshot saved to " + path))
		}
		log.Debug().Str("trace", result.Trace.Summary()).Msg("Session trace")
		return fmt.Errorf("scrape failed in state %s: %w", result.State, err)
	}

	records := result.Records
	fmt.Println(ui.Success(fmt.Sprintf("Extracted %d jobs", len(records))))

	if !noSave && len(records) > 0 {
		csvPath, err := sink.NewCSV(cfg.OutputDir, cfg.FilePrefix).Write(records)
		if err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		jsonPath, err := sink.NewJSON(cfg.OutputDir, cfg.FilePrefix).Write(records)
		if err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		fmt.Printf("  %s\n  %s\n", csvPath, jsonPath)
	}

	printSummary(records)
	return nil
}

// saveFailureShot writes the failure screenshot, if the session captured
// one, and returns its path.
func saveFailureShot(cfg *config.Config, result *engine.Result) string {
	if result == nil || len(result.FailureShot) == 0 {
		return ""
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create output directory for screenshot")
		return ""
	}
	path := filepath.Join(cfg.OutputDir, "failure_"+time.Now().Format("20060102_150405")+".png")
	if err := os.WriteFile(path, result.FailureShot, 0644); err != nil {
		log.Warn().Err(err).Msg("Failed to save failure screenshot")
		return ""
	}
	return path
}

func printSummary(records []models.JobRecord) {
	for i, rec := range records {
		if i == 3 {
			fmt.Printf("  ... and %d more\n", len(records)-i)
			break
		}
		fmt.Printf("  %d. %s - %s\n     %s\n", i+1, ui.Bold(rec.Title.String()), rec.Location, rec.URL)
	}
}
