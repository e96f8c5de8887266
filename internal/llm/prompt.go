package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

const systemPrompt = "You classify spreadsheet columns. You MUST respond with ONLY a valid JSON object. " +
	"Do not include markdown formatting or commentary before or after the JSON."

// buildPrompt renders the user prompt for a request.
func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Classify this spreadsheet column into exactly one category.\n\n")
	fmt.Fprintf(&b, "Column name: %q\n", req.Column)
	b.WriteString("Sample values:\n")
	samples := req.Samples
	if len(samples) > MaxPromptSamples {
		samples = samples[:MaxPromptSamples]
	}
	if len(samples) == 0 {
		b.WriteString("- (no values)\n")
	}
	for _, v := range samples {
		fmt.Fprintf(&b, "- %q\n", v)
	}

	b.WriteString("\nCategories:\n")
	for _, c := range model.AllCategories() {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	b.WriteString("\nRespond with JSON: ")
	b.WriteString(`{"category": "<one category from the list>", "confidence": <0.0-1.0>, "reasoning": "<one short sentence>"}`)

	return b.String()
}
