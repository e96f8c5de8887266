// Package cleaner builds the cleaned output table from a classified input:
// selected columns only, headers renamed by category, values optionally
// normalized.
package cleaner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/table"
)

var categoryHeaders = map[model.Category]string{
	model.CategoryBusinessName:   "Business Name",
	model.CategoryPhoneNumber:    "Phone Number",
	model.CategoryEmail:          "Email Address",
	model.CategoryCategory:       "Business Category",
	model.CategoryLocation:       "Address/Location",
	model.CategorySocialLink:     "Website/Social Media",
	model.CategoryReview:         "Customer Review",
	model.CategoryOperatingHours: "Operating Hours",
	model.CategoryPrice:          "Price/Cost",
}

// Options selects and transforms columns.
type Options struct {
	// Selected holds column indexes into the input table. Output keeps the
	// input order regardless of selection order.
	Selected  []int
	Normalize bool
}

// Mapping records how one input column was renamed.
type Mapping struct {
	Original string         `json:"original"`
	Header   string         `json:"header"`
	Category model.Category `json:"category"`
	Index    int            `json:"index"`
}

// Result is the cleaned table plus the header mapping that produced it.
type Result struct {
	Table    *table.Table
	Mappings []Mapping
}

// HeaderFor returns the output header for a column of the given category.
// Unknown columns keep their original header.
func HeaderFor(category model.Category, original string) string {
	if h, ok := categoryHeaders[category]; ok {
		return h
	}
	return original
}

// Clean keeps the selected columns of t, renamed from results, which must
// hold one classification per column of t.
func Clean(t *table.Table, results []model.ClassificationResult, opts Options) (*Result, error) {
	if len(results) != t.NumColumns() {
		return nil, fmt.Errorf("%w: %d classifications for %d columns", common.ErrInvalidInput, len(results), t.NumColumns())
	}

	selected := slices.Clone(opts.Selected)
	slices.Sort(selected)
	selected = slices.Compact(selected)
	if len(selected) == 0 {
		return nil, common.ErrNoColumnsSelected
	}
	for _, idx := range selected {
		if idx < 0 || idx >= t.NumColumns() {
			return nil, fmt.Errorf("%w: column index %d out of range", common.ErrInvalidInput, idx)
		}
	}

	used := make(map[string]int, len(selected))
	mappings := make([]Mapping, len(selected))
	headers := make([]string, len(selected))
	for i, idx := range selected {
		category := results[idx].Category
		header := uniqueHeader(HeaderFor(category, t.Headers[idx]), used)
		headers[i] = header
		mappings[i] = Mapping{
			Original: t.Headers[idx],
			Header:   header,
			Category: category,
			Index:    idx,
		}
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(selected))
		for i, idx := range selected {
			v := row[idx]
			if opts.Normalize {
				v = NormalizeValue(mappings[i].Category, v)
			}
			out[i] = v
		}
		rows[r] = out
	}

	cleaned, err := table.New(CleanedName(t.Name), headers, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build cleaned table: %w", err)
	}
	return &Result{Table: cleaned, Mappings: mappings}, nil
}

// uniqueHeader appends " (2)", " (3)", ... to repeated headers.
func uniqueHeader(header string, used map[string]int) string {
	used[header]++
	n := used[header]
	if n == 1 {
		return header
	}
	for {
		candidate := fmt.Sprintf("%s (%d)", header, n)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

// CleanedName returns the base name of the cleaned output for an input file
// or table name.
func CleanedName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "table"
	}
	if strings.HasPrefix(base, "cleaned_") {
		return base
	}
	return "cleaned_" + base
}

// CleanedFileName returns the CSV file name for the cleaned output.
func CleanedFileName(name string) string {
	return CleanedName(name) + ".csv"
}

// SelectByName resolves column names (case-insensitive) to indexes. A name
// may also be a 1-based column number.
func SelectByName(headers []string, names []string) ([]int, error) {
	indexes := make([]int, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(headers, func(h string) bool {
			return strings.EqualFold(h, name)
		})
		if idx < 0 {
			if n, err := strconv.Atoi(name); err == nil && n >= 1 && n <= len(headers) {
				idx = n - 1
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("column %q: %w", name, common.ErrNotFound)
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}
