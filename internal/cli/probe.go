package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/job-seekers/harvest/internal/inspect"
	"github.com/job-seekers/harvest/internal/ui"
	"github.com/job-seekers/harvest/internal/urlutil"
)

var (
	probeJSON bool
	probeRole string
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Audit the selector cascades against a fetched page",
	Long: `Fetches a page over plain HTTP and reports, for every selector cascade,
which candidates match and how many elements each one hits.

The probe sees only the server-rendered document. Roles that exist solely in
the scripted page legitimately report zero matches here; a role that used to
match statically and stopped is the signal that the markup drifted.`,
	Example: `  # Audit the configured landing page
  harvest probe

  # Audit a specific page, machine-readable
  harvest probe https://careers.microsoft.com/v2/global/en/search --report-json

  # Audit a single role
  harvest probe --role job_listings`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().BoolVar(&probeJSON, "report-json", false, "Emit the audit as JSON")
	probeCmd.Flags().StringVar(&probeRole, "role", "", "Audit only the named role")
}

func runProbe(cmd *cobra.Command, args []string) error {
	a := App()

	url := a.Config.BaseURL
	if len(args) == 1 {
		url = args[0]
	}
	if err := urlutil.ValidateURL(url); err != nil {
		return err
	}

	doc, err := a.Prober.Fetch(cmd.Context(), url)
	if err != nil {
		return err
	}

	roles := a.Config.Selectors.Roles()
	if probeRole != "" {
		kept := roles[:0]
		for _, set := range roles {
			if set.Role == probeRole {
				kept = append(kept, set)
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("unknown role: %s", probeRole)
		}
		roles = kept
	}

	reports := inspect.Audit(doc, roles)

	if probeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	fmt.Printf("%s %s\n\n", ui.Bold("Probed:"), url)
	for _, report := range reports {
		status := ui.Error("unresolved")
		if report.Resolved {
			status = ui.Success("resolved")
		}
		fmt.Printf("%s  [%s]\n", ui.Bold(report.Role), status)
		for _, c := range report.Candidates {
			marker := " "
			if c.Matches > 0 {
				marker = "*"
			}
			line := fmt.Sprintf("  %s %-50s %d", marker, c.Selector, c.Matches)
			if c.Sample != "" {
				line += "  " + strings.TrimSpace(c.Sample)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
	return nil
}
