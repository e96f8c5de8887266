package model

import (
	"fmt"
	"sort"
)

// TieEpsilon is the combined-score distance within which two categories are
// considered tied. The bound is inclusive.
const TieEpsilon = 0.02

// tieTolerance absorbs float rounding so that scores exactly TieEpsilon apart
// still tie.
const tieTolerance = 1e-9

// CategoryScore holds the per-category evidence computed for one column.
type CategoryScore struct {
	Category Category
	Name     float64
	Value    float64
	Combined float64
}

// Validate ensures the CategoryScore has valid data.
func (s *CategoryScore) Validate() error {
	if !s.Category.Valid() {
		return fmt.Errorf("unknown category %q", s.Category)
	}

	for label, v := range map[string]float64{"name": s.Name, "value": s.Value, "combined": s.Combined} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s score must be between 0.0 and 1.0, got %.2f", label, v)
		}
	}

	return nil
}

// CategoryScores is a slice of CategoryScore that supports ranking.
type CategoryScores []CategoryScore

// Len implements sort.Interface.
func (s CategoryScores) Len() int {
	return len(s)
}

// Less implements sort.Interface - higher combined scores come first.
func (s CategoryScores) Less(i, j int) bool {
	if s[i].Combined != s[j].Combined {
		return s[i].Combined > s[j].Combined
	}
	if s[i].Value != s[j].Value {
		return s[i].Value > s[j].Value
	}
	return s[i].Category.Index() < s[j].Category.Index()
}

// Swap implements sort.Interface.
func (s CategoryScores) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Sort orders the scores by combined score, descending.
func (s CategoryScores) Sort() {
	sort.Stable(s)
}

// Top returns the winning score, or nil if empty. Every candidate within
// TieEpsilon of the best combined score is eligible; among those the higher
// value score wins, then the earlier category in canonical order.
func (s CategoryScores) Top() *CategoryScore {
	if len(s) == 0 {
		return nil
	}

	best := s.Best()

	var winner *CategoryScore
	for i := range s {
		c := &s[i]
		if best-c.Combined > TieEpsilon+tieTolerance {
			continue
		}
		if winner == nil ||
			c.Value > winner.Value ||
			(c.Value == winner.Value && c.Category.Index() < winner.Category.Index()) {
			winner = c
		}
	}

	out := *winner
	return &out
}

// Best returns the highest combined score, or 0 if empty.
func (s CategoryScores) Best() float64 {
	best := 0.0
	for _, c := range s {
		best = max(best, c.Combined)
	}
	return best
}

// AtLeast returns the scores whose combined score reaches floor.
func (s CategoryScores) AtLeast(floor float64) CategoryScores {
	out := make(CategoryScores, 0, len(s))
	for _, c := range s {
		if c.Combined >= floor {
			out = append(out, c)
		}
	}
	return out
}

// TopN returns the N highest-scoring categories.
func (s CategoryScores) TopN(n int) CategoryScores {
	if n <= 0 {
		return CategoryScores{}
	}

	sorted := make(CategoryScores, len(s))
	copy(sorted, s)
	sorted.Sort()

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Map returns the combined score keyed by category.
func (s CategoryScores) Map() map[Category]float64 {
	out := make(map[Category]float64, len(s))
	for _, c := range s {
		out[c.Category] = c.Combined
	}
	return out
}

// Validate ensures all scores in the slice are valid and unique.
func (s CategoryScores) Validate() error {
	seen := make(map[Category]bool)

	for i, score := range s {
		if err := score.Validate(); err != nil {
			return fmt.Errorf("invalid score at index %d: %w", i, err)
		}
		if seen[score.Category] {
			return fmt.Errorf("duplicate category %q in scores", score.Category)
		}
		seen[score.Category] = true
	}

	return nil
}
