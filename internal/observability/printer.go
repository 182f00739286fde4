// Package observability formats run progress and results for the terminal.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// maxMessageWidth truncates failure messages in the summary table.
const maxMessageWidth = 60

func okMark() string { return color.New(color.FgGreen).Sprint("✓") }
func failMark() string { return color.New(color.FgRed).Sprint("✗") }

// Printer writes human-readable output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(p.out)
	return t
}

// Progress prints one line per finished task. Its signature matches
// orchestrator.ProgressFunc.
//
//nolint:errcheck // terminal output
func (p *Printer) Progress(done, total int, outcome types.TaskOutcome) {
	if outcome.Succeeded() {
		fmt.Fprintf(p.out, "[%d/%d] %s %s\n", done, total, okMark(), outcome.CourtName)
		return
	}
	fmt.Fprintf(p.out, "[%d/%d] %s %s: %s\n", done, total, failMark(), outcome.CourtName, outcome.Message)
}

// PrintSummary prints the outcome table, the totals and the bundle location.
//
//nolint:errcheck // terminal output
func (p *Printer) PrintSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	fmt.Fprintf(p.out, "Run %s\n", summary.RunID)
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Court", "Status", "Attempts", "Result"})
	for i, o := range summary.Outcomes {
		status, result := okMark(), o.ArtifactPath
		if !o.Succeeded() {
			status, result = failMark(), truncate(o.Message, maxMessageWidth)
		}
		t.AppendRow(table.Row{i + 1, o.CourtName, status, o.Attempts, result})
	}
	t.Render()

	fmt.Fprintf(p.out, "%d court(s): %d succeeded, %d failed\n", summary.Total, summary.Succeeded, summary.Failed)

	switch {
	case summary.BundlePath != "":
		fmt.Fprintf(p.out, "Bundle: %s\n", summary.BundlePath)
	case summary.BundleError != "":
		fmt.Fprintf(p.out, "%s bundle not written: %s\n", failMark(), summary.BundleError)
	}
}

// PrintFailures prints the failure ledger, or nothing when every court succeeded.
//
//nolint:errcheck // terminal output
func (p *Printer) PrintFailures(summary *types.RunSummary) {
	if summary == nil {
		return
	}
	failures := summary.Failures()
	if len(failures) == 0 {
		return
	}

	fmt.Fprintf(p.out, "\n%s\n", color.New(color.FgRed, color.Bold).Sprintf("%d court(s) failed:", len(failures)))
	for _, f := range failures {
		fmt.Fprintf(p.out, "  %s %s (%s)\n", failMark(), f.CourtName, f.Selector.Key())
		fmt.Fprintf(p.out, "      %s\n", f.Message)
	}
}

// PrintOptions prints a resolved dropdown as a name/code table in name order.
// Titles go on their own line; go-pretty wraps a title wider than the table.
//
//nolint:errcheck // terminal output
func (p *Printer) PrintOptions(level types.Level, options map[string]string) {
	fmt.Fprintf(p.out, "%s options\n", strings.ToUpper(string(level)[:1])+string(level)[1:])
	t := p.newTable()
	t.AppendHeader(table.Row{"Name", "Code"})
	for _, name := range navigation.SortedNames(options) {
		t.AppendRow(table.Row{name, options[name]})
	}
	t.Render()
}

// PrintLocation prints the codes of a resolved complex followed by its courts.
//
//nolint:errcheck // terminal output
func (p *Printer) PrintLocation(loc *types.Location) {
	if loc == nil {
		return
	}
	fmt.Fprintf(p.out, "State:    %s (%s)\n", loc.StateName, loc.StateCode)
	fmt.Fprintf(p.out, "District: %s (%s)\n", loc.DistrictName, loc.DistrictCode)
	fmt.Fprintf(p.out, "Complex:  %s (%s)\n", loc.ComplexName, loc.ComplexCode)
	p.PrintOptions(types.LevelCourt, loc.Courts)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
