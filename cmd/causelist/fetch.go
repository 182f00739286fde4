package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/observability"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the cause list of one court",
	Long:  "Resolves one court by name, then downloads its civil and criminal cause lists for the date into a single PDF.",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

var (
	fetchState    string
	fetchDistrict string
	fetchComplex  string
	fetchCourt    string
	fetchDate     string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchState, "state", "", "State name (required)")
	fetchCmd.Flags().StringVar(&fetchDistrict, "district", "", "District name (required)")
	fetchCmd.Flags().StringVar(&fetchComplex, "complex", "", "Court complex name (required)")
	fetchCmd.Flags().StringVar(&fetchCourt, "court", "", "Court name as listed by 'causelist list' (required)")
	fetchCmd.Flags().StringVarP(&fetchDate, "date", "d", "", "Cause-list date as dd-mm-yyyy (default today)")

	_ = fetchCmd.MarkFlagRequired("state")
	_ = fetchCmd.MarkFlagRequired("district")
	_ = fetchCmd.MarkFlagRequired("complex")
	_ = fetchCmd.MarkFlagRequired("court")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	date, err := parseDate(fetchDate, time.Now())
	if err != nil {
		return err
	}

	factory := newFactory(settings)
	loc, err := lookup(ctx, factory, settings, fetchState, fetchDistrict, fetchComplex)
	if err != nil {
		return err
	}
	selectors := loc.Selectors(date, []string{fetchCourt})
	if len(selectors) == 0 {
		return &navigation.NotFoundError{Level: types.LevelCourt, Name: fetchCourt}
	}

	orch, release, err := buildOrchestrator(ctx, factory, settings)
	if err != nil {
		return err
	}
	defer release()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	opts := settings.RunOptions()
	opts.Progress = printer.Progress
	summary := orch.Run(ctx, selectors, opts)

	outcome := summary.Outcomes[0]
	if !outcome.Succeeded() {
		return fmt.Errorf("%s: %s", outcome.CourtName, outcome.Message)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", outcome.ArtifactPath)
	return nil
}
