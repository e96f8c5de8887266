// Package llm adapts remote language-model providers into column
// classifiers. Each provider translates a column name and a bounded sample of
// values into its own wire format and normalizes the reply into a
// model.ClassificationResult. Failures are reported as *ProviderError and are
// never retried here; retry and fallback policy belongs to the caller.
package llm
