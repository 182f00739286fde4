package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

const validSelectors = `{
	"date": "07-03-2025",
	"complex_name": "Pune District Court",
	"courts": [
		{"state_code": "1", "district_code": "25", "complex_code": "1250001", "court_code": "1^2", "court_name": "Principal District Judge"},
		{"state_code": "1", "district_code": "25", "complex_code": "1250001", "court_code": "2^7", "court_name": "Civil Judge Senior Division"}
	]
}`

func TestParseSelectors(t *testing.T) {
	file, selectors, err := ParseSelectors([]byte(validSelectors))
	require.NoError(t, err)

	assert.Equal(t, "Pune District Court", file.ComplexName)
	require.Len(t, selectors, 2)
	assert.Equal(t, types.LocationSelector{
		StateCode:    "1",
		DistrictCode: "25",
		ComplexCode:  "1250001",
		CourtCode:    "2^7",
		CourtName:    "Civil Judge Senior Division",
		Date:         time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	}, selectors[1])
}

func TestValidateSelectors_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing courts", `{"date": "07-03-2025"}`, "(root)"},
		{"empty courts", `{"date": "07-03-2025", "courts": []}`, "courts"},
		{"iso date", `{"date": "2025-03-07", "courts": [{"state_code": "1", "district_code": "2", "complex_code": "3", "court_code": "4", "court_name": "x"}]}`, "date"},
		{"missing court code", `{"date": "07-03-2025", "courts": [{"state_code": "1", "district_code": "2", "complex_code": "3", "court_name": "x"}]}`, "courts.0"},
		{"unknown key", `{"date": "07-03-2025", "courts": [], "extra": 1}`, "(root)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelectors([]byte(tt.doc))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.NotEmpty(t, ve.Errors)

			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseSelectors_ImpossibleDate(t *testing.T) {
	doc := `{"date": "31-02-2025", "courts": [{"state_code": "1", "district_code": "2", "complex_code": "3", "court_code": "4", "court_name": "x"}]}`
	_, _, err := ParseSelectors([]byte(doc))
	assert.ErrorContains(t, err, "invalid date")
}

func TestParseSelectors_DuplicateCourt(t *testing.T) {
	doc := `{"date": "07-03-2025", "courts": [
		{"state_code": "1", "district_code": "25", "complex_code": "1250001", "court_code": "1^2", "court_name": "Court 1/A"},
		{"state_code": "1", "district_code": "25", "complex_code": "1250001", "court_code": "1^3", "court_name": "Court 1:A"},
		{"state_code": "1", "district_code": "25", "complex_code": "1250001", "court_code": "1^2", "court_name": "Court 1/A again"}
	]}`

	_, _, err := ParseSelectors([]byte(doc))

	var dup *DuplicateCourtError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, dup.Index)
	assert.Equal(t, "1/25/1250001/1^2@20250307", dup.Key)
}

func TestValidateBytes_MalformedDocument(t *testing.T) {
	err := ValidateSelectors([]byte(`{not json`))
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoadSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.json")
	require.NoError(t, os.WriteFile(path, []byte(validSelectors), 0644))

	_, selectors, err := LoadSelectors(path)
	require.NoError(t, err)
	assert.Len(t, selectors, 2)

	_, _, err = LoadSelectors(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read selectors file")
}

func TestValidateSummary(t *testing.T) {
	sel := types.LocationSelector{CourtName: "Court 1", Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)}
	summary := types.RunSummary{
		RunID:     uuid.New(),
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Outcomes: []types.TaskOutcome{
			{CourtName: "Court 1", Selector: sel, Status: types.StatusSuccess, ArtifactPath: "a.pdf", Attempts: 1},
			{CourtName: "Court 2", Selector: sel, Status: types.StatusFailure, Message: types.FailureMessage, Attempts: 3},
		},
		BundlePath: "b.zip",
	}
	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.NoError(t, ValidateSummary(data))

	assert.Error(t, ValidateSummary([]byte(`{"total": -1}`)))
}
