// Package grading decides whether a submitted answer matches an exercise's
// answer key.
//
// The policy is deliberately strict: trim surrounding whitespace, lower-case,
// then exact equality. No partial credit, no numeric tolerance ("0.5" does
// not match "1/2"), no locale-aware folding. This is a known limitation of
// the grading model, not a bug; loosening it is a product decision, not a
// code fix.
package grading

import "strings"

// Evaluator grades a single submitted answer against the stored key.
type Evaluator interface {
	Correct(answerKey, submitted string) bool
}

// ExactMatch is the only shipping Evaluator.
type ExactMatch struct{}

func (ExactMatch) Correct(answerKey, submitted string) bool {
	return normalize(submitted) == normalize(answerKey)
}

// Correct applies the default policy without constructing an Evaluator.
func Correct(answerKey, submitted string) bool {
	return ExactMatch{}.Correct(answerKey, submitted)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
