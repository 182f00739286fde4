package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	rootschemas "github.com/dineshroyal9121687814/Ecourts-scrapper/schemas"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// SelectorFile is the bulk-run input format.
type SelectorFile struct {
	Date        string       `json:"date"`
	ComplexName string       `json:"complex_name,omitempty"`
	Courts      []CourtEntry `json:"courts"`
}

// CourtEntry is one court of a SelectorFile.
type CourtEntry struct {
	StateCode    string `json:"state_code"`
	DistrictCode string `json:"district_code"`
	ComplexCode  string `json:"complex_code"`
	CourtCode    string `json:"court_code"`
	CourtName    string `json:"court_name"`
}

// ValidateSelectors checks raw JSON against the selectors schema.
func ValidateSelectors(data []byte) error {
	return ValidateBytes("selectors", rootschemas.Selectors, data)
}

// ValidateSummary checks a serialized run summary against the summary schema.
func ValidateSummary(data []byte) error {
	return ValidateBytes("summary", rootschemas.Summary, data)
}

// DuplicateCourtError is returned when a selectors file lists the same court twice.
type DuplicateCourtError struct {
	Index int
	Key   string
}

func (e *DuplicateCourtError) Error() string {
	return fmt.Sprintf("courts[%d]: court %s is listed more than once", e.Index, e.Key)
}

// ParseSelectors validates data and builds one selector per court. Each court may
// appear only once.
func ParseSelectors(data []byte) (*SelectorFile, []types.LocationSelector, error) {
	if err := ValidateSelectors(data); err != nil {
		return nil, nil, err
	}

	var file SelectorFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse selectors JSON: %w", err)
	}
	date, err := time.Parse(types.DateLayout, file.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date %q: %w", file.Date, err)
	}

	seen := make(map[string]bool, len(file.Courts))
	selectors := make([]types.LocationSelector, 0, len(file.Courts))
	for i, c := range file.Courts {
		sel := types.LocationSelector{
			StateCode:    c.StateCode,
			DistrictCode: c.DistrictCode,
			ComplexCode:  c.ComplexCode,
			CourtCode:    c.CourtCode,
			CourtName:    c.CourtName,
			Date:         date,
		}
		if err := sel.Validate(); err != nil {
			return nil, nil, fmt.Errorf("courts[%d]: %w", i, err)
		}
		if seen[sel.Key()] {
			return nil, nil, &DuplicateCourtError{Index: i, Key: sel.Key()}
		}
		seen[sel.Key()] = true
		selectors = append(selectors, sel)
	}
	return &file, selectors, nil
}

// LoadSelectors reads and parses a selectors file.
func LoadSelectors(path string) (*SelectorFile, []types.LocationSelector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read selectors file %s: %w", path, err)
	}
	return ParseSelectors(data)
}
