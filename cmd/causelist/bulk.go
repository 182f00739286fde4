package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/bundle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/observability"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/schemas"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// defaultBundleLabel names the bundle of a selectors file without complex_name.
const defaultBundleLabel = "courts"

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Download the cause lists of every court in a complex",
	Long: `Downloads one PDF per court, in parallel, and bundles them into a ZIP archive.

Courts come either from a complex resolved by name:
  causelist bulk --state Maharashtra --district Pune --complex "Pune District Court" --date 07-03-2025

or from a JSON selectors file:
  causelist bulk --selectors courts.json`,
	Args: cobra.NoArgs,
	RunE: runBulk,
}

var (
	bulkState       string
	bulkDistrict    string
	bulkComplex     string
	bulkDate        string
	bulkSelectors   string
	bulkBundleName  string
	bulkSummaryJSON string
	bulkClean       bool
)

func init() {
	bulkCmd.Flags().StringVar(&bulkState, "state", "", "State name")
	bulkCmd.Flags().StringVar(&bulkDistrict, "district", "", "District name")
	bulkCmd.Flags().StringVar(&bulkComplex, "complex", "", "Court complex name")
	bulkCmd.Flags().StringVarP(&bulkDate, "date", "d", "", "Cause-list date as dd-mm-yyyy (default today)")
	bulkCmd.Flags().StringVarP(&bulkSelectors, "selectors", "s", "", "JSON file listing the courts to fetch")
	bulkCmd.Flags().StringVar(&bulkBundleName, "bundle-name", "", "ZIP file name (default ecourts_<complex>_<yyyymmdd>.zip)")
	bulkCmd.Flags().StringVar(&bulkSummaryJSON, "summary-json", "", "Write the run summary as JSON to this path")
	bulkCmd.Flags().BoolVar(&bulkClean, "clean", false, "Delete old PDFs and ZIPs in the output directory first")

	bulkCmd.MarkFlagsMutuallyExclusive("selectors", "complex")
	bulkCmd.MarkFlagsMutuallyExclusive("selectors", "date")
	bulkCmd.MarkFlagsRequiredTogether("state", "district", "complex")

	rootCmd.AddCommand(bulkCmd)
}

// bulkPlan is what a bulk run needs before any court is fetched.
type bulkPlan struct {
	Selectors   []types.LocationSelector
	ComplexName string
	Date        time.Time
}

func runBulk(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	factory := newFactory(settings)

	plan, err := planBulk(ctx, factory, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if bulkClean || settings.Clean {
		removed, err := bundle.Clean(settings.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to clean %s: %w", settings.OutputDir, err)
		}
		_, _ = fmt.Fprintf(out, "Removed %d old file(s) from %s\n", removed, settings.OutputDir)
	}

	orch, release, err := buildOrchestrator(ctx, factory, settings)
	if err != nil {
		return err
	}
	defer release()

	printer := observability.NewPrinter(out)
	opts := settings.RunOptions()
	opts.BundleName = bundleName(bulkBundleName, plan)
	opts.Progress = printer.Progress

	_, _ = fmt.Fprintf(out, "Fetching %d court(s) for %s\n", len(plan.Selectors), plan.Date.Format(types.DateLayout))
	summary := orch.Run(ctx, plan.Selectors, opts)

	printer.PrintSummary(summary)
	printer.PrintFailures(summary)

	if bulkSummaryJSON != "" {
		if err := writeSummary(bulkSummaryJSON, summary); err != nil {
			return err
		}
		logger.Debug("summary written", zap.String("path", bulkSummaryJSON))
	}

	if summary.Succeeded == 0 {
		return fmt.Errorf("no cause lists downloaded")
	}
	return nil
}

// planBulk builds the selectors from either the selectors file or the named complex.
func planBulk(ctx context.Context, factory browser.Factory, now time.Time) (*bulkPlan, error) {
	if bulkSelectors != "" {
		return planFromFile(bulkSelectors, now)
	}
	if bulkComplex == "" {
		return nil, fmt.Errorf("either --selectors or --state/--district/--complex is required")
	}

	date, err := parseDate(bulkDate, now)
	if err != nil {
		return nil, err
	}
	loc, err := lookup(ctx, factory, settings, bulkState, bulkDistrict, bulkComplex)
	if err != nil {
		return nil, err
	}
	selectors := loc.Selectors(date, navigation.SortedNames(loc.Courts))
	if len(selectors) == 0 {
		return nil, fmt.Errorf("complex %q lists no courts", bulkComplex)
	}
	return &bulkPlan{Selectors: selectors, ComplexName: loc.ComplexName, Date: date}, nil
}

func planFromFile(path string, now time.Time) (*bulkPlan, error) {
	file, selectors, err := schemas.LoadSelectors(path)
	if err != nil {
		return nil, err
	}
	date := selectors[0].Date
	if err := checkDateWindow(date, now); err != nil {
		return nil, err
	}
	name := file.ComplexName
	if name == "" {
		name = defaultBundleLabel
	}
	return &bulkPlan{Selectors: selectors, ComplexName: name, Date: date}, nil
}

func bundleName(override string, plan *bulkPlan) string {
	if override != "" {
		return filepath.Base(override)
	}
	return bundle.Name(plan.ComplexName, plan.Date)
}

// writeSummary serializes the summary, checks it against the published schema and
// writes it to path.
func writeSummary(path string, summary *types.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := schemas.ValidateSummary(data); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
