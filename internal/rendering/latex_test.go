package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

func sampleResult() *types.CaseListingResult {
	return &types.CaseListingResult{
		Civil: &types.CaseListingDocument{
			Heading: types.Heading{
				CourtName:   "Pune District Courts",
				JudgeInfo:   "Shri A. B. Kulkarni",
				Designation: "CIVIL JUDGE SENIOR DIVISION",
				PeriodLabel: "Civil Cases Listed on 07-03-2025",
			},
			Rows: []types.Row{
				types.DataRow("Sr No", "Cases", "Party Name", "Advocate"),
				types.HeaderRow("Evidence"),
				types.DataRow("1", "RCS/120/2019", "Patil & Ors vs Jadhav"),
				types.DataRow("2", "SCS/77/2021", "Shinde vs State", "Adv. More", "extra"),
			},
		},
	}
}

func TestBuildTemplateData_Sections(t *testing.T) {
	data := BuildTemplateData(sampleResult(), "1-Principal_District Judge")

	assert.Equal(t, `1-Principal\_District Judge`, data.Title)
	require.Len(t, data.Sections, 2)

	civil := data.Sections[0]
	assert.Equal(t, "CIVIL CASES", civil.Label)
	require.NotNil(t, civil.Heading)
	assert.Equal(t, "Shri A. B. Kulkarni", civil.Heading.JudgeInfo)
	assert.True(t, civil.HasTable)
	assert.Equal(t, []string{"Sr No", "Cases", "Party Name", "Advocate"}, civil.ColumnHead)
	assert.Equal(t, []RowData{
		{Header: true, Label: "Evidence"},
		{Cells: []string{"1", "RCS/120/2019", `Patil \& Ors vs Jadhav`, ""}},
		{Cells: []string{"2", "SCS/77/2021", "Shinde vs State", "Adv. More"}},
	}, civil.Rows)

	criminal := data.Sections[1]
	assert.Equal(t, "CRIMINAL CASES", criminal.Label)
	assert.Equal(t, "criminal cases", criminal.Lower)
	assert.Nil(t, criminal.Heading)
	assert.False(t, criminal.HasTable)
}

func TestBuildTemplateData_SingleRowIsNoTable(t *testing.T) {
	result := &types.CaseListingResult{
		Criminal: &types.CaseListingDocument{
			Rows: []types.Row{types.DataRow("Sr No", "Cases", "Party Name", "Advocate")},
		},
	}

	data := BuildTemplateData(result, "court")
	criminal := data.Sections[1]
	assert.NotNil(t, criminal.Heading)
	assert.False(t, criminal.HasTable)
}

func TestBuildTemplateData_LeadingSectionHeader(t *testing.T) {
	result := &types.CaseListingResult{
		Civil: &types.CaseListingDocument{
			Rows: []types.Row{types.HeaderRow("Orders"), types.DataRow("1", "A")},
		},
	}

	civil := BuildTemplateData(result, "court").Sections[0]
	assert.Nil(t, civil.ColumnHead)
	assert.Len(t, civil.Rows, 2)
}

func TestBuildTemplateData_NilResult(t *testing.T) {
	data := BuildTemplateData(nil, "court")
	require.Len(t, data.Sections, 2)
	assert.Nil(t, data.Sections[0].Heading)
	assert.Nil(t, data.Sections[1].Heading)
}

func TestRenderLaTeX_DefaultTemplate(t *testing.T) {
	tex, err := RenderLaTeX(sampleResult(), "Court #1", "")
	require.NoError(t, err)

	assert.Contains(t, tex, `\documentclass`)
	assert.Contains(t, tex, `landscape`)
	assert.Contains(t, tex, `eCourts Case List - Court \#1`)
	assert.Contains(t, tex, `In the court of: Shri A. B. Kulkarni`)
	assert.Contains(t, tex, `\multicolumn{4}{|l|}{\cellcolor{sectionbg}\textcolor{sectionfg}{\bfseries Evidence}} \\`)
	assert.Contains(t, tex, `Patil \& Ors vs Jadhav`)
	assert.Contains(t, tex, `\endhead`)
	assert.Contains(t, tex, "No criminal cases found")
	assert.NotContains(t, tex, "No civil cases found")
	assert.Equal(t, 1, strings.Count(tex, `\newpage`))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(tex), `\end{document}`))
}

func TestRenderLaTeX_NonLatinScriptIsReplaced(t *testing.T) {
	result := sampleResult()
	result.Civil.Heading.CourtName = "जिला न्यायालय Pune"
	result.Civil.Rows = append(result.Civil.Rows, types.DataRow("3", "RCS/9/2024", "राम vs श्याम", "Adv. Kṛṣṇa"))

	tex, err := RenderLaTeX(result, "न्यायालय 1", "")
	require.NoError(t, err)

	for _, r := range tex {
		assert.False(t, r >= 0x0900 && r <= 0x097F, "devanagari %q reached the LaTeX source", r)
	}
	assert.Contains(t, tex, "? Pune")
	assert.Contains(t, tex, "? vs ?")
	assert.Contains(t, tex, "Adv. Krsna")
}

func TestRenderLaTeX_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tex")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Title}}|{{range .Sections}}{{.Label}};{{end}}`), 0644))

	tex, err := RenderLaTeX(nil, "T", path)
	require.NoError(t, err)
	assert.Equal(t, "T|CIVIL CASES;CRIMINAL CASES;", tex)
}

func TestRenderLaTeX_TemplateErrors(t *testing.T) {
	_, err := RenderLaTeX(nil, "T", filepath.Join(t.TempDir(), "missing.tex"))
	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, tmplErr.Message, "template file not found")

	bad := filepath.Join(t.TempDir(), "bad.tex")
	require.NoError(t, os.WriteFile(bad, []byte(`{{.Title`), 0644))
	_, err = RenderLaTeX(nil, "T", bad)
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "failed to parse template", tmplErr.Message)
}
