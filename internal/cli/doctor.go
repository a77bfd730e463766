package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JustJay7/court-fetcher/internal/config"
	"github.com/JustJay7/court-fetcher/internal/database"
)

const (
	statusOK   = "✓"
	statusWarn = "⚠"
	statusFail = "✗"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, database and storage",
		Long: `Environment health check for court-fetcher.

Validates:
- Configuration from the environment and .env
- Database connectivity and schema
- Uploads directory is writable
- Frontend bundle when STATIC_DIR is set
- Tracing exporter settings

Examples:
  court-fetcher doctor           # Run full health check
  court-fetcher doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				results := []CheckResult{{Name: "Configuration", Status: statusFail, Details: "  " + err.Error()}}
				if !quiet {
					printResults(cmd.OutOrStdout(), results)
				}
				return fmt.Errorf("environment validation failed")
			}

			results := runChecks(cfg)
			if !quiet {
				printResults(cmd.OutOrStdout(), results)
			}

			if hasFailures(results) {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func runChecks(cfg *config.Config) []CheckResult {
	return []CheckResult{
		{Name: "Configuration", Status: statusOK},
		checkDatabase(cfg),
		checkUploadsDir(cfg.UploadsDir),
		checkStaticDir(cfg.StaticDir),
		checkTracing(cfg),
	}
}

func hasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == statusFail {
			return true
		}
	}
	return false
}

func printResults(w io.Writer, results []CheckResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check              Status")
	fmt.Fprintln(w, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(w, "%-18s %s\n", r.Name, colorStatus(r.Status))
	}
	fmt.Fprintln(w)

	hasDetails := false
	for _, r := range results {
		if r.Status != statusOK && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(w, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(w, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasFailures(results) {
		fmt.Fprintln(w, color.New(color.FgRed).Sprint("\nIssues found."))
	} else {
		fmt.Fprintln(w, "All checks passed.")
	}
}

func colorStatus(status string) string {
	switch status {
	case statusOK:
		return color.New(color.FgGreen).Sprint(status)
	case statusWarn:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgRed).Sprint(status)
	}
}

// checkDatabase connects and verifies the schema exists. A missing SQLite
// file is reported, not created.
func checkDatabase(cfg *config.Config) CheckResult {
	if cfg.DatabaseDriver != database.DriverPostgres {
		if _, err := os.Stat(cfg.DatabasePath); os.IsNotExist(err) {
			return CheckResult{
				Name:    "Database",
				Status:  statusWarn,
				Details: fmt.Sprintf("  %s not created yet\n  Run: court-fetcher migrate", cfg.DatabasePath),
			}
		}
	}

	db, err := database.Open(dbOptions(cfg))
	if err != nil {
		return CheckResult{Name: "Database", Status: statusFail, Details: "  " + err.Error()}
	}
	defer database.Close(db)

	if err := database.Ping(db); err != nil {
		return CheckResult{Name: "Database", Status: statusFail, Details: "  " + err.Error()}
	}

	if missing := database.MissingTables(db); len(missing) > 0 {
		return CheckResult{
			Name:    "Database",
			Status:  statusWarn,
			Details: "  Missing tables: " + strings.Join(missing, ", ") + "\n  Run: court-fetcher migrate",
		}
	}

	return CheckResult{Name: "Database", Status: statusOK}
}

// checkUploadsDir verifies files can be written to the uploads directory
func checkUploadsDir(dir string) CheckResult {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return CheckResult{Name: "Uploads", Status: statusFail, Details: "  " + err.Error()}
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return CheckResult{Name: "Uploads", Status: statusFail, Details: fmt.Sprintf("  %s is not writable: %v", dir, err)}
	}
	f.Close()
	os.Remove(f.Name())

	return CheckResult{Name: "Uploads", Status: statusOK}
}

// checkStaticDir verifies the frontend bundle when one is configured
func checkStaticDir(dir string) CheckResult {
	if dir == "" {
		return CheckResult{Name: "Frontend", Status: statusOK}
	}

	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return CheckResult{
			Name:    "Frontend",
			Status:  statusWarn,
			Details: fmt.Sprintf("  %s has no index.html", dir),
		}
	}

	return CheckResult{Name: "Frontend", Status: statusOK}
}

func checkTracing(cfg *config.Config) CheckResult {
	if cfg.TracingEnabled && cfg.TracingExporter == "otlp" && cfg.OTLPEndpoint == "" {
		return CheckResult{
			Name:    "Tracing",
			Status:  statusWarn,
			Details: "  OTEL_EXPORTER_OTLP_ENDPOINT not set, using the exporter default",
		}
	}
	return CheckResult{Name: "Tracing", Status: statusOK}
}
