package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/table"
)

func classified(categories ...model.Category) []model.ClassificationResult {
	out := make([]model.ClassificationResult, len(categories))
	for i, c := range categories {
		out[i] = model.ClassificationResult{Category: c, Source: model.LocalHeuristic()}
	}
	return out
}

func newTestTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("leads", []string{"shop", "tel", "mail", "notes", "alt_mail"}, [][]string{
		{"Joe's Pizza", "(555) 987-6543", " Joe@Pizza.COM ", "call back", "n/a"},
		{"Blue Door", "+1 555.123.4567", "info@bluedoor.com", "", "x@y.com"},
	})
	require.NoError(t, err)
	return tbl
}

func TestClean(t *testing.T) {
	tbl := newTestTable(t)
	results := classified(
		model.CategoryBusinessName,
		model.CategoryPhoneNumber,
		model.CategoryEmail,
		model.CategoryUnknown,
		model.CategoryEmail,
	)

	t.Run("headers follow categories", func(t *testing.T) {
		got, err := Clean(tbl, results, Options{Selected: []int{4, 3, 2, 0, 2}})
		require.NoError(t, err)

		assert.Equal(t, []string{"Business Name", "Email Address", "notes", "Email Address (2)"}, got.Table.Headers)
		assert.Equal(t, []string{"Joe's Pizza", " Joe@Pizza.COM ", "call back", "n/a"}, got.Table.Rows[0])
		assert.Equal(t, "cleaned_leads", got.Table.Name)

		require.Len(t, got.Mappings, 4)
		assert.Equal(t, Mapping{Original: "alt_mail", Header: "Email Address (2)", Category: model.CategoryEmail, Index: 4}, got.Mappings[3])
	})

	t.Run("normalization", func(t *testing.T) {
		got, err := Clean(tbl, results, Options{Selected: []int{1, 2, 4}, Normalize: true})
		require.NoError(t, err)

		assert.Equal(t, [][]string{
			{"555-987-6543", "joe@pizza.com", ""},
			{"+1-555-123-4567", "info@bluedoor.com", "x@y.com"},
		}, got.Table.Rows)
	})

	t.Run("input is not modified", func(t *testing.T) {
		_, err := Clean(tbl, results, Options{Selected: []int{2}, Normalize: true})
		require.NoError(t, err)
		assert.Equal(t, " Joe@Pizza.COM ", tbl.Rows[0][2])
	})
}

func TestClean_Errors(t *testing.T) {
	tbl := newTestTable(t)
	results := classified(model.CategoryUnknown, model.CategoryUnknown, model.CategoryUnknown, model.CategoryUnknown, model.CategoryUnknown)

	_, err := Clean(tbl, results, Options{})
	assert.ErrorIs(t, err, common.ErrNoColumnsSelected)

	_, err = Clean(tbl, results, Options{Selected: []int{5}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Clean(tbl, results[:2], Options{Selected: []int{0}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHeaderFor(t *testing.T) {
	tests := []struct {
		category model.Category
		want     string
	}{
		{model.CategoryBusinessName, "Business Name"},
		{model.CategoryPhoneNumber, "Phone Number"},
		{model.CategoryEmail, "Email Address"},
		{model.CategoryCategory, "Business Category"},
		{model.CategoryLocation, "Address/Location"},
		{model.CategorySocialLink, "Website/Social Media"},
		{model.CategoryReview, "Customer Review"},
		{model.CategoryOperatingHours, "Operating Hours"},
		{model.CategoryPrice, "Price/Cost"},
		{model.CategoryUnknown, "original"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, HeaderFor(tt.category, "original"))
		})
	}
}

func TestCleanedFileName(t *testing.T) {
	assert.Equal(t, "cleaned_leads.csv", CleanedFileName("leads.xlsx"))
	assert.Equal(t, "cleaned_leads.csv", CleanedFileName("/tmp/data/leads.csv"))
	assert.Equal(t, "cleaned_leads.csv", CleanedFileName("leads"))
	assert.Equal(t, "cleaned_leads.csv", CleanedFileName("cleaned_leads"))
	assert.Equal(t, "cleaned_table.csv", CleanedFileName(""))
}

func TestSelectByName(t *testing.T) {
	headers := []string{"Name", "Phone", "Email"}

	got, err := SelectByName(headers, []string{"email", " NAME ", "2"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, got)

	_, err = SelectByName(headers, []string{"fax"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = SelectByName(headers, []string{"4"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
