package classification

import (
	"log/slog"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

const (
	// DefaultConfidenceFloor is the minimum combined score for a category to
	// be reported instead of Unknown.
	DefaultConfidenceFloor = 0.5
	// SampleValueCount is how many distinct values a result carries for audit.
	SampleValueCount = 5
)

// Heuristic is the rule-based, network-free column classifier.
type Heuristic struct {
	library *Library
	logger  *slog.Logger
	floor   float64
}

// HeuristicOption configures a Heuristic.
type HeuristicOption func(*Heuristic)

// WithConfidenceFloor overrides DefaultConfidenceFloor.
func WithConfidenceFloor(floor float64) HeuristicOption {
	return func(h *Heuristic) {
		h.floor = model.ClampConfidence(floor)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) HeuristicOption {
	return func(h *Heuristic) {
		h.logger = logger
	}
}

// NewHeuristic creates a classifier over the given library.
func NewHeuristic(library *Library, opts ...HeuristicOption) *Heuristic {
	h := &Heuristic{
		library: library,
		floor:   DefaultConfidenceFloor,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = common.LoggerOrDefault(h.logger)
	return h
}

// Floor returns the configured confidence floor.
func (h *Heuristic) Floor() float64 {
	return h.floor
}

// SampleSize returns how many non-null values are examined per column.
func (h *Heuristic) SampleSize() int {
	return h.library.SampleSize()
}

// Classify never fails. Columns without non-null values are Unknown with
// confidence 0; columns whose best score is under the floor are Unknown with
// that best score as confidence.
func (h *Heuristic) Classify(column model.Column) model.ClassificationResult {
	result := model.ClassificationResult{
		Column:       column.Name,
		Category:     model.CategoryUnknown,
		Source:       model.LocalHeuristic(),
		SampleValues: column.Samples(SampleValueCount),
		Stats:        column.Stats(h.library.SampleSize()),
	}

	if result.Stats.NonNull == 0 {
		return result
	}

	scores := h.library.Match(column)
	result.Scores = scores.Map()

	// The floor is checked against the best score; ties are only broken
	// among candidates that clear it.
	best := scores.Best()
	result.Confidence = model.ClampConfidence(best)
	top := scores.AtLeast(h.floor).Top()
	if top == nil {
		h.logger.Debug("column below confidence floor",
			"column", column.Name,
			"confidence", result.Confidence)
		return result
	}

	result.Category = top.Category
	result.Confidence = model.ClampConfidence(top.Combined)

	h.logger.Debug("classified column locally",
		"column", column.Name,
		"category", result.Category,
		"confidence", result.Confidence,
		"name_score", top.Name,
		"value_score", top.Value)

	return result
}
