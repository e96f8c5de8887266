// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// SourceKind indicates which strategy produced a classification.
type SourceKind string

// Source kind constants.
const (
	SourceAIProvider     SourceKind = "ai_provider"
	SourceLocalHeuristic SourceKind = "local_heuristic"
)

// Source records who classified a column.
type Source struct {
	Kind     SourceKind `json:"kind"`
	Provider string     `json:"provider,omitempty"`
}

// AIProvider returns a Source for the named remote provider.
func AIProvider(name string) Source {
	return Source{Kind: SourceAIProvider, Provider: name}
}

// LocalHeuristic returns the Source for the rule-based classifier.
func LocalHeuristic() Source {
	return Source{Kind: SourceLocalHeuristic}
}

// IsAI reports whether a remote provider produced the result.
func (s Source) IsAI() bool {
	return s.Kind == SourceAIProvider
}

func (s Source) String() string {
	if s.Kind == SourceAIProvider {
		return fmt.Sprintf("AIProvider(%s)", s.Provider)
	}
	return "LocalHeuristic"
}

// MarshalJSON renders the source in its String form.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the String form back into a Source.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode source: %w", err)
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSource parses "LocalHeuristic" or "AIProvider(name)".
func ParseSource(raw string) (Source, error) {
	if raw == "LocalHeuristic" {
		return LocalHeuristic(), nil
	}
	if name, ok := strings.CutPrefix(raw, "AIProvider("); ok && strings.HasSuffix(name, ")") {
		name = strings.TrimSuffix(name, ")")
		if name != "" {
			return AIProvider(name), nil
		}
	}
	return Source{}, fmt.Errorf("invalid classification source %q", raw)
}

// ClassificationResult is the outcome of classifying one column.
type ClassificationResult struct {
	Scores       map[Category]float64 `json:"scores,omitempty"`
	Column       string               `json:"name"`
	Category     Category             `json:"category"`
	Reasoning    string               `json:"reasoning,omitempty"`
	Source       Source               `json:"source"`
	SampleValues []string             `json:"sample_values"`
	Stats        ColumnStats          `json:"stats"`
	Confidence   float64              `json:"confidence"`
}

// Validate checks the result invariants.
func (r ClassificationResult) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", r.Confidence)
	}
	return nil
}

// ClampConfidence bounds v to [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
