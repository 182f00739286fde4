// Package rendering turns cause-list results into PDF documents through a LaTeX
// template compiled with pdflatex.
package rendering

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Columns is the fixed column count of the rendered table.
const Columns = 4

//go:embed templates/causelist.tex
var defaultTemplate string

// TemplateData represents the data structure passed to the LaTeX template
type TemplateData struct {
	Title    string
	Sections []SectionData
}

// SectionData is one category page. Heading is nil when the category has no document.
type SectionData struct {
	Label      string
	Lower      string
	Heading    *types.Heading
	HasTable   bool
	ColumnHead []string
	Rows       []RowData
}

// RowData is a table row with exactly Columns cells, or a spanning header.
type RowData struct {
	Header bool
	Label  string
	Cells  []string
}

// RenderLaTeX fills the template with result. An empty templatePath selects the
// built-in template.
func RenderLaTeX(result *types.CaseListingResult, title, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}

	data := BuildTemplateData(result, title)

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return out.String(), nil
}

func parseTemplate(templatePath string) (*template.Template, error) {
	content := defaultTemplate
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &TemplateError{
					Message: fmt.Sprintf("template file not found: %s", templatePath),
					Cause:   err,
				}
			}
			return nil, &TemplateError{
				Message: fmt.Sprintf("failed to read template file: %s", templatePath),
				Cause:   err,
			}
		}
		content = string(raw)
	}

	tmpl, err := template.New("causelist").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// BuildTemplateData lays out the civil page then the criminal page. All text is
// escaped here so templates never see raw portal content.
func BuildTemplateData(result *types.CaseListingResult, title string) *TemplateData {
	if result == nil {
		result = &types.CaseListingResult{}
	}
	data := &TemplateData{Title: EscapeLaTeX(title)}
	for _, cat := range []types.Category{types.CategoryCivil, types.CategoryCriminal} {
		data.Sections = append(data.Sections, buildSection(cat, result.For(cat)))
	}
	return data
}

func buildSection(cat types.Category, doc *types.CaseListingDocument) SectionData {
	section := SectionData{
		Label: cat.Label(),
		Lower: strings.ToLower(cat.Label()),
	}
	if doc == nil {
		return section
	}

	section.Heading = &types.Heading{
		CourtName:   EscapeLaTeX(doc.Heading.CourtName),
		JudgeInfo:   EscapeLaTeX(doc.Heading.JudgeInfo),
		Designation: EscapeLaTeX(doc.Heading.Designation),
		PeriodLabel: EscapeLaTeX(doc.Heading.PeriodLabel),
	}

	// A lone row is the column caption of an empty list.
	if len(doc.Rows) <= 1 {
		return section
	}
	section.HasTable = true

	rows := doc.Rows
	if !rows[0].IsHeader() {
		section.ColumnHead = fitCells(rows[0].Cells)
		rows = rows[1:]
	}
	for _, r := range rows {
		if r.IsHeader() {
			section.Rows = append(section.Rows, RowData{Header: true, Label: EscapeLaTeX(r.Label)})
			continue
		}
		section.Rows = append(section.Rows, RowData{Cells: fitCells(r.Cells)})
	}
	return section
}

// fitCells escapes, truncates and pads cells to Columns.
func fitCells(cells []string) []string {
	out := make([]string, Columns)
	for i := 0; i < Columns && i < len(cells); i++ {
		out[i] = EscapeLaTeX(cells[i])
	}
	return out
}
