package model

import (
	"testing"
)

func TestCategoryScore_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		score   CategoryScore
		wantErr bool
	}{
		{
			name:  "valid score",
			score: CategoryScore{Category: CategoryEmail, Name: 0.8, Value: 1, Combined: 1},
		},
		{
			name:    "unknown category",
			score:   CategoryScore{Category: "Fax"},
			wantErr: true,
			errMsg:  `unknown category "Fax"`,
		},
		{
			name:    "combined too high",
			score:   CategoryScore{Category: CategoryEmail, Combined: 1.1},
			wantErr: true,
			errMsg:  "combined score must be between 0.0 and 1.0, got 1.10",
		},
		{
			name:    "value negative",
			score:   CategoryScore{Category: CategoryEmail, Value: -0.1},
			wantErr: true,
			errMsg:  "value score must be between 0.0 and 1.0, got -0.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.score.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestCategoryScores_Sort(t *testing.T) {
	scores := CategoryScores{
		{Category: CategoryReview, Combined: 0.5},
		{Category: CategoryLocation, Combined: 0.8, Value: 0.2},
		{Category: CategoryPrice, Combined: 0.3},
		{Category: CategoryEmail, Combined: 0.8, Value: 0.2},
	}

	scores.Sort()

	expected := []Category{CategoryEmail, CategoryLocation, CategoryReview, CategoryPrice}
	for i, want := range expected {
		if scores[i].Category != want {
			t.Errorf("Sort() index %d = %v, want %v", i, scores[i].Category, want)
		}
	}
}

func TestCategoryScores_Top(t *testing.T) {
	tests := []struct {
		want   *Category
		name   string
		scores CategoryScores
	}{
		{
			name:   "empty scores",
			scores: CategoryScores{},
		},
		{
			name: "clear winner",
			scores: CategoryScores{
				{Category: CategoryEmail, Combined: 0.95, Value: 0.95},
				{Category: CategorySocialLink, Combined: 0.4, Value: 0.4},
			},
			want: ptr(CategoryEmail),
		},
		{
			name: "tie prefers higher value score",
			scores: CategoryScores{
				{Category: CategoryBusinessName, Combined: 0.70, Value: 0.2, Name: 1},
				{Category: CategoryCategory, Combined: 0.69, Value: 0.6},
			},
			want: ptr(CategoryCategory),
		},
		{
			name: "exact tie falls back to enum order",
			scores: CategoryScores{
				{Category: CategoryPrice, Combined: 0.6, Value: 0.6},
				{Category: CategoryPhoneNumber, Combined: 0.6, Value: 0.6},
			},
			want: ptr(CategoryPhoneNumber),
		},
		{
			name: "outside epsilon the higher combined wins",
			scores: CategoryScores{
				{Category: CategoryBusinessName, Combined: 0.80, Value: 0.1, Name: 1},
				{Category: CategoryCategory, Combined: 0.70, Value: 0.7},
			},
			want: ptr(CategoryBusinessName),
		},
		{
			name: "scores exactly epsilon apart still tie",
			scores: CategoryScores{
				{Category: CategoryBusinessName, Combined: 0.51, Value: 0.1, Name: 1},
				{Category: CategoryCategory, Combined: 0.49, Value: 0.49},
			},
			want: ptr(CategoryCategory),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.scores.Top()
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Top() = %v, want nil", got)
			case tt.want != nil && got == nil:
				t.Errorf("Top() = nil, want %v", *tt.want)
			case tt.want != nil && got != nil && got.Category != *tt.want:
				t.Errorf("Top() = %v, want %v", got.Category, *tt.want)
			}
		})
	}
}

func TestCategoryScores_AtLeast(t *testing.T) {
	scores := CategoryScores{
		{Category: CategoryPhoneNumber, Combined: 0.51, Value: 0, Name: 1},
		{Category: CategoryEmail, Combined: 0.495, Value: 0.495},
		{Category: CategoryPrice, Combined: 0.5, Value: 0.5},
	}

	if got := scores.Best(); got != 0.51 {
		t.Errorf("Best() = %v, want 0.51", got)
	}
	if got := (CategoryScores{}).Best(); got != 0 {
		t.Errorf("Best() on empty = %v, want 0", got)
	}

	cleared := scores.AtLeast(0.5)
	if len(cleared) != 2 {
		t.Fatalf("AtLeast(0.5) returned %d scores, want 2", len(cleared))
	}
	for _, c := range cleared {
		if c.Category == CategoryEmail {
			t.Errorf("AtLeast(0.5) kept %v at %v", c.Category, c.Combined)
		}
	}

	// Email ties with the leader and has the stronger value score, but it
	// cannot win once the scores under the floor are dropped.
	if got := scores.Top(); got == nil || got.Category != CategoryEmail {
		t.Errorf("Top() = %v, want %v", got, CategoryEmail)
	}
	if got := cleared.Top(); got == nil || got.Category != CategoryPhoneNumber {
		t.Errorf("AtLeast(0.5).Top() = %v, want %v", got, CategoryPhoneNumber)
	}
}

func TestCategoryScores_TopN(t *testing.T) {
	scores := CategoryScores{
		{Category: CategoryEmail, Combined: 0.9},
		{Category: CategoryPhoneNumber, Combined: 0.7},
		{Category: CategoryPrice, Combined: 0.5},
	}

	tests := []struct {
		name  string
		n     int
		count int
	}{
		{name: "zero", n: 0, count: 0},
		{name: "two", n: 2, count: 2},
		{name: "more than available", n: 10, count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scores.TopN(tt.n)
			if len(got) != tt.count {
				t.Fatalf("TopN(%d) returned %d scores, want %d", tt.n, len(got), tt.count)
			}
			if tt.count > 0 && got[0].Category != CategoryEmail {
				t.Errorf("TopN(%d)[0] = %v, want %v", tt.n, got[0].Category, CategoryEmail)
			}
		})
	}
}

func TestCategoryScores_Validate(t *testing.T) {
	dup := CategoryScores{
		{Category: CategoryEmail, Combined: 0.5},
		{Category: CategoryEmail, Combined: 0.4},
	}
	if err := dup.Validate(); err == nil {
		t.Error("Validate() expected error for duplicate category")
	}

	ok := CategoryScores{
		{Category: CategoryEmail, Combined: 0.5},
		{Category: CategoryPrice, Combined: 0.4},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
