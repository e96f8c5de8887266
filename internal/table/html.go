package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Veraticus/sift/internal/common"
)

// maxColspan bounds how far a single cell may be repeated.
const maxColspan = 100

// readHTML reads the first <table> in the document. The first row is the
// header; cells spanning several columns are repeated.
func readHTML(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("%w: no <table> element found", common.ErrInvalidInput)
	}

	var records [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Rows of nested tables belong to those tables.
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}

		var record []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.Join(strings.Fields(cell.Text()), " ")
			span := 1
			if raw, ok := cell.Attr("colspan"); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 1 {
					span = min(n, maxColspan)
				}
			}
			for range span {
				record = append(record, text)
			}
		})
		if len(record) > 0 {
			records = append(records, record)
		}
	})

	return records, nil
}
