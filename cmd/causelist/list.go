package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/observability"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List states, districts, complexes or courts",
	Long: `Walks the location dropdowns by display name and prints the next level down.

  causelist list                                   # states
  causelist list --state Maharashtra               # districts
  causelist list --state Maharashtra --district Pune
  causelist list --state Maharashtra --district Pune --complex "Pune District Court"`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listState    string
	listDistrict string
	listComplex  string
)

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "State name")
	listCmd.Flags().StringVar(&listDistrict, "district", "", "District name (requires --state)")
	listCmd.Flags().StringVar(&listComplex, "complex", "", "Court complex name (requires --district)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	seq, session, err := openSequencer(ctx, newFactory(settings), settings)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	return describe(ctx, seq, observability.NewPrinter(cmd.OutOrStdout()), listState, listDistrict, listComplex)
}

// describe prints the level below the deepest name given. Names must be given in
// cascade order.
func describe(ctx context.Context, seq *navigation.Sequencer, printer *observability.Printer, state, district, complexName string) error {
	switch {
	case state == "" && (district != "" || complexName != ""):
		return fmt.Errorf("--district and --complex require --state")
	case district == "" && complexName != "":
		return fmt.Errorf("--complex requires --district")
	case complexName != "":
		loc, err := seq.ResolvePath(ctx, state, district, complexName)
		if err != nil {
			return err
		}
		printer.PrintLocation(loc)
		return nil
	}

	level, parent := types.LevelState, ""
	for _, step := range []struct {
		name  string
		child types.Level
	}{
		{state, types.LevelDistrict},
		{district, types.LevelComplex},
	} {
		if step.name == "" {
			break
		}
		options, err := seq.Resolve(ctx, level, parent)
		if err != nil {
			return err
		}
		code, ok := options[step.name]
		if !ok {
			return &navigation.NotFoundError{Level: level, Name: step.name}
		}
		level, parent = step.child, code
	}

	options, err := seq.Resolve(ctx, level, parent)
	if err != nil {
		return err
	}
	printer.PrintOptions(level, options)
	return nil
}
