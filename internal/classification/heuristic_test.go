package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/model"
)

func newTestHeuristic(t *testing.T, opts ...HeuristicOption) *Heuristic {
	t.Helper()
	lib, err := NewLibrary(DefaultDefinitions(), DefaultSampleSize)
	require.NoError(t, err)
	return NewHeuristic(lib, opts...)
}

func TestHeuristic_Classify(t *testing.T) {
	h := newTestHeuristic(t)

	tests := []struct {
		name          string
		column        model.Column
		want          model.Category
		minConfidence float64
		maxConfidence float64
	}{
		{
			name:          "email addresses with partial header match",
			column:        model.Column{Name: "email_addr", Values: []string{"a@b.com", "c@d.org", "not-an-email"}},
			want:          model.CategoryEmail,
			minConfidence: 0.6,
			maxConfidence: 1.0,
		},
		{
			name:          "phone numbers",
			column:        model.Column{Name: "phone", Values: []string{"+1-555-123-4567", "(555) 987-6543"}},
			want:          model.CategoryPhoneNumber,
			minConfidence: 0.9,
			maxConfidence: 1.0,
		},
		{
			name:          "junk",
			column:        model.Column{Name: "xyz", Values: []string{"qwerty", "asdf", "junk"}},
			want:          model.CategoryUnknown,
			maxConfidence: DefaultConfidenceFloor,
		},
		{
			name: "business type is a category, not a name",
			column: model.Column{Name: "business_type", Values: []string{
				"Restaurant", "Cafe", "Restaurant", "Salon", "Italian Restaurant",
			}},
			want:          model.CategoryCategory,
			minConfidence: 0.85,
			maxConfidence: 0.9,
		},
		{
			name: "business names",
			column: model.Column{Name: "name", Values: []string{
				"Joe's Pizza", "The Blue Door", "Acme Holdings LLC", "Sunrise Bakery",
			}},
			want:          model.CategoryBusinessName,
			minConfidence: 0.85,
			maxConfidence: 0.9,
		},
		{
			name: "operating hours",
			column: model.Column{Name: "opening_hours", Values: []string{
				"Mon-Fri 9:00-17:00", "9am - 5pm", "24/7", "Closed",
			}},
			want:          model.CategoryOperatingHours,
			minConfidence: 0.95,
			maxConfidence: 1.0,
		},
		{
			name:          "prices",
			column:        model.Column{Name: "price", Values: []string{"$10", "$$", "₹250", "12.50"}},
			want:          model.CategoryPrice,
			minConfidence: 0.9,
			maxConfidence: 1.0,
		},
		{
			name: "addresses",
			column: model.Column{Name: "address", Values: []string{
				"123 Main Street", "New York, NY 10001", "40.7128, -74.0060",
			}},
			want:          model.CategoryLocation,
			minConfidence: 0.95,
			maxConfidence: 1.0,
		},
		{
			name: "websites and social links",
			column: model.Column{Name: "website", Values: []string{
				"https://facebook.com/joes", "www.example.com", "example.org",
			}},
			want:          model.CategorySocialLink,
			minConfidence: 0.95,
			maxConfidence: 1.0,
		},
		{
			name: "reviews",
			column: model.Column{Name: "comments", Values: []string{
				"Great food, friendly staff", "4/5", "Terrible service and we would never come back",
			}},
			want:          model.CategoryReview,
			minConfidence: 0.9,
			maxConfidence: 0.95,
		},
		{
			name:          "unnamed column relies on values",
			column:        model.Column{Values: []string{"x@y.io", "ops@example.com"}},
			want:          model.CategoryEmail,
			minConfidence: 1.0,
			maxConfidence: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Classify(tt.column)

			assert.Equal(t, tt.want, got.Category)
			assert.GreaterOrEqual(t, got.Confidence, tt.minConfidence)
			assert.LessOrEqual(t, got.Confidence, tt.maxConfidence)
			assert.Equal(t, model.LocalHeuristic(), got.Source)
			assert.Equal(t, tt.column.Name, got.Column)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestHeuristic_EmailsRegardlessOfHeader(t *testing.T) {
	h := newTestHeuristic(t)
	values := []string{"alice@example.com", "bob@corp.co.uk", "carol+tag@mail.org"}

	for _, header := range []string{"", "xyz", "phone", "business_name", "website", "Column 7"} {
		t.Run(header, func(t *testing.T) {
			got := h.Classify(model.Column{Name: header, Values: values})
			assert.Equal(t, model.CategoryEmail, got.Category)
			assert.GreaterOrEqual(t, got.Confidence, 0.9)
		})
	}
}

func TestHeuristic_EmptyColumn(t *testing.T) {
	h := newTestHeuristic(t)

	for _, col := range []model.Column{
		{Name: "email"},
		{Name: "phone", Values: []string{"", "  ", "N/A", "null"}},
		{},
	} {
		got := h.Classify(col)
		assert.Equal(t, model.CategoryUnknown, got.Category)
		assert.Zero(t, got.Confidence)
		assert.Empty(t, got.SampleValues)
	}
}

func TestHeuristic_BelowFloorKeepsBestScore(t *testing.T) {
	col := model.Column{Name: "notes", Values: []string{"qwerty", "asdf"}}

	got := newTestHeuristic(t).Classify(col)
	assert.Equal(t, model.CategoryUnknown, got.Category)
	// Weak "notes" header alone: 0.95 * 0.6 * (1.0 * 0.6).
	assert.InDelta(t, 0.342, got.Confidence, 1e-9)
	assert.InDelta(t, 0.342, got.Scores[model.CategoryReview], 1e-9)

	lowered := newTestHeuristic(t, WithConfidenceFloor(0.3)).Classify(col)
	assert.Equal(t, model.CategoryReview, lowered.Category)
	assert.InDelta(t, got.Confidence, lowered.Confidence, 1e-9)
}

func TestHeuristic_Idempotent(t *testing.T) {
	h := newTestHeuristic(t)
	col := model.Column{Name: "Contact", Values: []string{"+44 20 7946 0958", "info@shop.com", "", "020 7946 0000"}}

	first := h.Classify(col)
	second := h.Classify(col)
	assert.Equal(t, first, second)
}

func TestHeuristic_ResultInvariants(t *testing.T) {
	h := newTestHeuristic(t)
	columns := []model.Column{
		{Name: "id", Values: []string{"1", "2", "3", "4"}},
		{Name: "created_at", Values: []string{"2024-01-05", "2024-02-11"}},
		{Name: "Rating", Values: []string{"4.5", "3.9", "5.0"}},
		{Name: "misc", Values: []string{"???", "!!!", "@", "#"}},
		{Name: "tags", Values: []string{"wifi", "parking", "wifi", "outdoor seating", "parking", "wifi"}},
	}

	for _, col := range columns {
		got := h.Classify(col)
		require.NoError(t, got.Validate(), col.Name)
		for category, score := range got.Scores {
			assert.True(t, category.Valid())
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestHeuristic_SampleValues(t *testing.T) {
	h := newTestHeuristic(t)
	col := model.Column{Name: "city", Values: []string{"Paris", "", "Paris", "London", "Tokyo", "Berlin", "Madrid", "Rome"}}

	got := h.Classify(col)
	assert.Equal(t, []string{"Paris", "London", "Tokyo", "Berlin", "Madrid"}, got.SampleValues)
	assert.Equal(t, 8, got.Stats.Total)
	assert.Equal(t, 7, got.Stats.NonNull)
}

func TestHeuristic_FloorAppliesBeforeTieBreak(t *testing.T) {
	defs := []Definition{
		{
			Category: model.CategoryPhoneNumber,
			Keywords: Keywords{Strong: []string{"phone"}},
			Value:    func([]string, model.ColumnStats) float64 { return 0 },
			Weight:   0.85,
		},
		{
			Category: model.CategoryEmail,
			Value:    func([]string, model.ColumnStats) float64 { return 0.495 },
			Weight:   1,
		},
	}
	lib, err := NewLibrary(defs, DefaultSampleSize)
	require.NoError(t, err)
	h := NewHeuristic(lib, WithConfidenceFloor(0.5))

	got := h.Classify(model.Column{Name: "phone", Values: []string{"call me", "n/a"}})

	// Email sits within the tie window and has the stronger value score,
	// but only Phone Number clears the floor.
	assert.InDelta(t, 0.51, got.Scores[model.CategoryPhoneNumber], 1e-9)
	assert.InDelta(t, 0.495, got.Scores[model.CategoryEmail], 1e-9)
	assert.Equal(t, model.CategoryPhoneNumber, got.Category)
	assert.InDelta(t, 0.51, got.Confidence, 1e-9)
	require.NoError(t, got.Validate())
}
