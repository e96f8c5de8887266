package model

import "strings"

// nullMarkers are cell values treated the same as an empty cell.
var nullMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"na":   {},
	"nil":  {},
	"-":    {},
}

// Column is a named, ordered sequence of raw cell values from one table column.
type Column struct {
	Name   string
	Values []string
}

// ColumnStats summarizes a column's content.
type ColumnStats struct {
	Total       int     `json:"total"`
	NonNull     int     `json:"non_null"`
	NullRatio   float64 `json:"null_ratio"`
	UniqueRatio float64 `json:"unique_ratio"`
	AvgLength   float64 `json:"avg_length"`
}

// IsNull reports whether a raw cell value should be treated as missing.
func IsNull(v string) bool {
	_, ok := nullMarkers[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// NonNull returns up to limit trimmed non-null values in input order.
// A limit of zero or less returns all of them.
func (c Column) NonNull(limit int) []string {
	out := make([]string, 0, min(len(c.Values), max(limit, 0)))
	for _, v := range c.Values {
		if IsNull(v) {
			continue
		}
		out = append(out, strings.TrimSpace(v))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Samples returns the first n distinct non-null values in input order.
func (c Column) Samples(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, v := range c.Values {
		if len(out) == n {
			break
		}
		if IsNull(v) {
			continue
		}
		v = strings.TrimSpace(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Stats computes statistics over the first limit non-null values (all when
// limit <= 0). Total and NullRatio always cover the whole column.
func (c Column) Stats(limit int) ColumnStats {
	stats := ColumnStats{Total: len(c.Values)}

	nonNull := 0
	for _, v := range c.Values {
		if !IsNull(v) {
			nonNull++
		}
	}
	stats.NonNull = nonNull
	if stats.Total > 0 {
		stats.NullRatio = float64(stats.Total-nonNull) / float64(stats.Total)
	}

	sample := c.NonNull(limit)
	if len(sample) == 0 {
		return stats
	}

	unique := make(map[string]struct{}, len(sample))
	totalLen := 0
	for _, v := range sample {
		unique[strings.ToLower(v)] = struct{}{}
		totalLen += len([]rune(v))
	}
	stats.UniqueRatio = float64(len(unique)) / float64(len(sample))
	stats.AvgLength = float64(totalLen) / float64(len(sample))

	return stats
}
