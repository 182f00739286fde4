// Package types provides type definitions for structured data used throughout the cause-list downloader.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the date format the portal's cause-list form accepts.
const DateLayout = "02-01-2006"

// FileDateLayout is the date format used in artifact and bundle names.
const FileDateLayout = "20060102"

// Level identifies one dropdown in the location cascade.
type Level string

// Cascade levels, in selection order.
const (
	LevelState    Level = "state"
	LevelDistrict Level = "district"
	LevelComplex  Level = "complex"
	LevelCourt    Level = "court"
)

// Parent returns the level whose selection populates l, or "" for the state level.
func (l Level) Parent() Level {
	switch l {
	case LevelDistrict:
		return LevelState
	case LevelComplex:
		return LevelDistrict
	case LevelCourt:
		return LevelComplex
	default:
		return ""
	}
}

// LocationSelector identifies one court on one date. Codes are opaque portal keys
// obtained from the navigation cascade. It is a value type: never mutate a selector
// after construction.
type LocationSelector struct {
	StateCode    string    `json:"state_code" validate:"required"`
	DistrictCode string    `json:"district_code" validate:"required"`
	ComplexCode  string    `json:"complex_code" validate:"required"`
	CourtCode    string    `json:"court_code" validate:"required"`
	CourtName    string    `json:"court_name" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks that every code, the court name and the date are set.
func (s LocationSelector) Validate() error {
	validateOnce.Do(func() { validate = validator.New() })
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid selector: %w", err)
	}
	return nil
}

// Key returns the court identity used to match outcomes back to selectors.
func (s LocationSelector) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s@%s", s.StateCode, s.DistrictCode, s.ComplexCode, s.CourtCode, s.Date.Format(FileDateLayout))
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileStem returns the artifact base name for the selector, unique per court and
// date: the sanitized court name, the court code and the date,
// e.g. "2-Civil Judge_2-7_20250307".
func (s LocationSelector) FileStem() string {
	code := nonAlnum.ReplaceAllString(s.CourtCode, "-")
	return fmt.Sprintf("%s_%s_%s", SanitizeFileName(s.CourtName), code, s.Date.Format(FileDateLayout))
}

// FormDate returns the selector date in the portal's form format.
func (s LocationSelector) FormDate() string {
	return s.Date.Format(DateLayout)
}

// Location is the result of resolving display names through the cascade down to a
// court complex, together with the courts it lists.
type Location struct {
	StateName    string
	StateCode    string
	DistrictName string
	DistrictCode string
	ComplexName  string
	ComplexCode  string
	Courts       map[string]string // court display name -> court code
}

// Selectors builds one selector per court of the complex for the given date,
// ordered by court name.
func (l *Location) Selectors(date time.Time, names []string) []LocationSelector {
	selectors := make([]LocationSelector, 0, len(names))
	for _, name := range names {
		code, ok := l.Courts[name]
		if !ok {
			continue
		}
		selectors = append(selectors, LocationSelector{
			StateCode:    l.StateCode,
			DistrictCode: l.DistrictCode,
			ComplexCode:  l.ComplexCode,
			CourtCode:    code,
			CourtName:    name,
			Date:         date,
		})
	}
	return selectors
}
