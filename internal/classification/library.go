// Package classification provides the pattern library and the local
// heuristic column classifier.
package classification

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/sift/internal/model"
)

// Scoring constants.
const (
	// DefaultSampleSize bounds how many non-null values are inspected.
	DefaultSampleSize = 100
	// NameWeight scales the header evidence relative to value evidence.
	NameWeight = 0.6
	// WeakKeywordScale scales matches against weak keywords.
	WeakKeywordScale = 0.6

	exactNameScore     = 1.0
	tokenNameScore     = 0.8
	substringNameScore = 0.5
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

type compiledDefinition struct {
	Definition
	strong  []string
	weak    []string
	exclude []string
}

// Library scores columns against every category definition. It is read-only
// after construction and safe for concurrent use.
type Library struct {
	definitions []compiledDefinition
	sampleSize  int
}

// NewLibrary validates the definitions and prepares them for matching.
// A sampleSize of zero or less selects DefaultSampleSize.
func NewLibrary(definitions []Definition, sampleSize int) (*Library, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	seen := make(map[model.Category]bool, len(definitions))
	compiled := make([]compiledDefinition, 0, len(definitions))

	for _, def := range definitions {
		if !def.Category.Valid() || def.Category == model.CategoryUnknown {
			return nil, fmt.Errorf("invalid definition category %q", def.Category)
		}
		if seen[def.Category] {
			return nil, fmt.Errorf("duplicate definition for %q", def.Category)
		}
		if def.Value == nil {
			return nil, fmt.Errorf("definition %q has no value scorer", def.Category)
		}
		if def.Weight <= 0 || def.Weight > 1 {
			return nil, fmt.Errorf("definition %q weight must be in (0,1], got %.2f", def.Category, def.Weight)
		}
		seen[def.Category] = true

		compiled = append(compiled, compiledDefinition{
			Definition: def,
			strong:     normalizeKeywords(def.Keywords.Strong),
			weak:       normalizeKeywords(def.Keywords.Weak),
			exclude:    normalizeKeywords(def.Keywords.Exclude),
		})
	}

	return &Library{definitions: compiled, sampleSize: sampleSize}, nil
}

// MustDefaultLibrary returns a library over DefaultDefinitions.
func MustDefaultLibrary() *Library {
	lib, err := NewLibrary(DefaultDefinitions(), DefaultSampleSize)
	if err != nil {
		panic(err)
	}
	return lib
}

// SampleSize returns the number of non-null values inspected per column.
func (l *Library) SampleSize() int {
	return l.sampleSize
}

// Match scores the column against every definition. The result holds one
// entry per definition in definition order.
func (l *Library) Match(column model.Column) model.CategoryScores {
	sample := column.NonNull(l.sampleSize)
	stats := column.Stats(l.sampleSize)
	header := normalizeHeader(column.Name)

	scores := make(model.CategoryScores, 0, len(l.definitions))
	for _, def := range l.definitions {
		name := def.nameScore(header)
		value := 0.0
		if len(sample) > 0 {
			value = clamp(def.Value(sample, stats))
		}
		scores = append(scores, model.CategoryScore{
			Category: def.Category,
			Name:     name,
			Value:    value,
			Combined: Combine(def.Weight, name, value),
		})
	}

	return scores
}

// Combine merges name and value evidence. Content alone can reach the full
// weight; a header alone reaches NameWeight of it. Value evidence dominates
// on purpose: a matching header only fills the gap the values leave.
func Combine(weight, name, value float64) float64 {
	return clamp(weight * (value + (1-value)*NameWeight*name))
}

func (d compiledDefinition) nameScore(header normalizedHeader) float64 {
	if header.joined == "" {
		return 0
	}
	for _, kw := range d.exclude {
		if header.hasTokenRun(kw) {
			return 0
		}
	}

	best := 0.0
	for _, kw := range d.strong {
		best = max(best, header.match(kw))
	}
	for _, kw := range d.weak {
		best = max(best, header.match(kw)*WeakKeywordScale)
	}
	return best
}

type normalizedHeader struct {
	joined string
	tokens []string
}

// normalizeHeader lowercases the header, splits camelCase and collapses every
// non-alphanumeric run to an underscore.
func normalizeHeader(name string) normalizedHeader {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	joined := strings.Trim(nonAlnumRe.ReplaceAllString(b.String(), "_"), "_")
	if joined == "" {
		return normalizedHeader{}
	}
	return normalizedHeader{joined: joined, tokens: strings.Split(joined, "_")}
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := normalizeHeader(kw).joined; n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (h normalizedHeader) match(keyword string) float64 {
	switch {
	case h.joined == keyword:
		return exactNameScore
	case h.hasTokenRun(keyword):
		return tokenNameScore
	case len(keyword) >= 3 && strings.Contains(h.joined, keyword):
		return substringNameScore
	default:
		return 0
	}
}

// hasTokenRun reports whether the keyword's tokens appear contiguously in
// the header's tokens.
func (h normalizedHeader) hasTokenRun(keyword string) bool {
	kw := strings.Split(keyword, "_")
	for i := 0; i+len(kw) <= len(h.tokens); i++ {
		matched := true
		for j := range kw {
			if h.tokens[i+j] != kw[j] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
