package types

import "strings"

// Category is a case category accepted by the portal's submit action.
type Category string

const (
	// CategoryCivil selects civil cases.
	CategoryCivil Category = "civ"
	// CategoryCriminal selects criminal cases.
	CategoryCriminal Category = "cri"
)

// Label returns the section title used in rendered documents.
func (c Category) Label() string {
	switch c {
	case CategoryCivil:
		return "CIVIL CASES"
	case CategoryCriminal:
		return "CRIMINAL CASES"
	default:
		return strings.ToUpper(string(c)) + " CASES"
	}
}

// Heading holds the caption printed above a cause list.
type Heading struct {
	CourtName   string `json:"court_name"`
	JudgeInfo   string `json:"judge_info"`
	Designation string `json:"designation"`
	PeriodLabel string `json:"period_label"`
}

// RowKind tags a Row as a section header or a data row.
type RowKind string

const (
	RowHeader RowKind = "header"
	RowData   RowKind = "data"
)

// Row is one row of a cause-list table. Header rows carry only Label and span all
// columns; data rows carry only Cells.
type Row struct {
	Kind  RowKind  `json:"type"`
	Label string   `json:"text,omitempty"`
	Cells []string `json:"cells,omitempty"`
}

// HeaderRow builds a section separator row.
func HeaderRow(label string) Row {
	return Row{Kind: RowHeader, Label: label}
}

// DataRow builds a data row.
func DataRow(cells ...string) Row {
	return Row{Kind: RowData, Cells: cells}
}

// IsHeader reports whether the row is a section separator.
func (r Row) IsHeader() bool {
	return r.Kind == RowHeader
}

// HasContent reports whether at least one cell is non-empty.
func (r Row) HasContent() bool {
	for _, c := range r.Cells {
		if c != "" {
			return true
		}
	}
	return false
}

// CaseListingDocument is a normalized cause list. A missing document is represented
// by a nil pointer, never by a zero value.
type CaseListingDocument struct {
	Heading Heading `json:"heading"`
	Rows    []Row   `json:"rows"`
}

// DataRows returns the number of data rows in the document.
func (d *CaseListingDocument) DataRows() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, r := range d.Rows {
		if !r.IsHeader() {
			n++
		}
	}
	return n
}

// CaseListingResult pairs the civil and criminal listings of one court and date.
// Either half may be nil independently.
type CaseListingResult struct {
	Civil    *CaseListingDocument `json:"civil,omitempty"`
	Criminal *CaseListingDocument `json:"criminal,omitempty"`
}

// For returns the document for the given category.
func (r *CaseListingResult) For(c Category) *CaseListingDocument {
	if c == CategoryCriminal {
		return r.Criminal
	}
	return r.Civil
}

// Set stores the document for the given category.
func (r *CaseListingResult) Set(c Category, doc *CaseListingDocument) {
	if c == CategoryCriminal {
		r.Criminal = doc
		return
	}
	r.Civil = doc
}
