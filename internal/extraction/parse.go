// Package extraction turns a submitted cause-list page into a CaseListingDocument.
package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// TableSelector matches the result table the portal renders after a submit.
const TableSelector = "#dispTable"

var periodPattern = regexp.MustCompile(`(Civil|Criminal)\s+Cases\s+Listed\s+on\s+[\d\-]+`)

// ParseDocument parses page markup into a document. The caller decides whether the
// table exists; when it does not, the returned document has a heading and no rows.
func ParseDocument(html string) (*types.CaseListingDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &types.CaseListingDocument{
		Heading: parseHeading(doc),
		Rows:    parseRows(doc.Find("table" + TableSelector).First()),
	}, nil
}

func parseHeading(doc *goquery.Document) types.Heading {
	var h types.Heading
	doc.Find("center").Each(func(_ int, center *goquery.Selection) {
		center.Find("span").Each(func(_ int, span *goquery.Selection) {
			text := strings.TrimSpace(span.Text())
			switch {
			case strings.Contains(text, "District") || strings.Contains(text, "Courts"):
				h.CourtName = text
			case strings.Contains(text, "In the court of"):
				info := strings.ReplaceAll(text, "In the court of", "")
				h.JudgeInfo = strings.TrimSpace(strings.ReplaceAll(info, ":", ""))
			case strings.Contains(text, "JUDGE") || strings.Contains(text, "MAGISTRATE"):
				h.Designation = text
			}
		})

		full := strings.Join(strings.Fields(center.Text()), " ")
		if m := periodPattern.FindString(full); m != "" {
			h.PeriodLabel = m
		}
	})
	return h
}

func parseRows(table *goquery.Selection) []types.Row {
	var rows []types.Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cols := tr.ChildrenFiltered("td, th")
		if cols.Length() == 0 {
			return
		}

		first := cols.First()
		if colspan(first) > 1 {
			rows = append(rows, types.HeaderRow(cellText(first)))
			return
		}

		cells := make([]string, 0, cols.Length())
		cols.Each(func(_ int, col *goquery.Selection) {
			cells = append(cells, cellText(col))
		})
		if row := types.DataRow(cells...); row.HasContent() {
			rows = append(rows, row)
		}
	})
	return rows
}

func colspan(s *goquery.Selection) int {
	v, ok := s.Attr("colspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 1
	}
	return n
}

// cellText collapses the whitespace inside a cell the way the page displays it.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
