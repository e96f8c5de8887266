package testutil

import (
	"testing"

	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/Veraticus/sift/internal/table"
)

// LeadsHeaders are the column names of LeadsTable.
var LeadsHeaders = []string{"Company", "Phone", "Email", "Notes"}

// LeadsTable returns a small business-listing table.
func LeadsTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("leads", LeadsHeaders, [][]string{
		{"Acme Corp", "(555) 123-4567", "Sales@Acme.com", "x1"},
		{"Globex LLC", "555.987.6543", "info@globex.io", "zz"},
		{"Initech Inc", "+1 555 222 3333", "hello@initech.com", "q"},
	})
	if err != nil {
		t.Fatalf("failed to build leads table: %v", err)
	}
	return tbl
}

// LeadsResults classifies LeadsTable column by column.
func LeadsResults() []model.ClassificationResult {
	return []model.ClassificationResult{
		{Column: "Company", Category: model.CategoryBusinessName, Confidence: 0.81, Source: model.LocalHeuristic()},
		{Column: "Phone", Category: model.CategoryPhoneNumber, Confidence: 0.93, Source: model.AIProvider("groq")},
		{Column: "Email", Category: model.CategoryEmail, Confidence: 0.97, Source: model.LocalHeuristic()},
		{Column: "Notes", Category: model.CategoryUnknown, Confidence: 0.12, Source: model.LocalHeuristic()},
	}
}

// LeadsSession combines LeadsTable and LeadsResults into a session to store.
func LeadsSession(t *testing.T) storage.NewSession {
	t.Helper()
	return storage.NewSession{
		Table:      LeadsTable(t),
		SourcePath: "leads.csv",
		Format:     table.FormatCSV,
		Results:    LeadsResults(),
	}
}
