package service

import (
	"strings"

	"scheme-saathi/internal/models"
)

// Placeholder values the extractor or an upstream caller may leave in
// a field; they carry no filtering power and must not satisfy the
// readiness gate.
var placeholderValues = map[string]struct{}{
	"":          {},
	"unknown":   {},
	"any":       {},
	"all":       {},
	"all india": {},
	"none":      {},
	"n/a":       {},
}

func isValidValue(v string) bool {
	_, placeholder := placeholderValues[strings.ToLower(strings.TrimSpace(v))]
	return !placeholder
}

// IsReady reports whether the profile carries enough signal to make
// scheme recommendations worth showing. All three core attributes
// (occupation, state, help type) must be set, plus at least one
// secondary attribute, so recommendations are never produced from a
// profile that would match half the corpus.
func IsReady(p models.UserProfile) bool {
	if !isValidValue(p.Occupation) || !isValidValue(p.State) || !isValidValue(p.HelpType) {
		return false
	}
	return isValidValue(p.Gender) || p.Age > 0 || isValidValue(p.CasteCategory)
}

// MissingFields lists what still has to be asked, in the order the
// assistant should ask: the three core attributes first, then the
// secondary ones. The first entry drives the next question.
func MissingFields(p models.UserProfile) []string {
	var missing []string
	if !isValidValue(p.Occupation) {
		missing = append(missing, "occupation")
	}
	if !isValidValue(p.State) {
		missing = append(missing, "state")
	}
	if !isValidValue(p.HelpType) {
		missing = append(missing, "help_type")
	}
	if !isValidValue(p.Gender) {
		missing = append(missing, "gender")
	}
	if p.Age == 0 {
		missing = append(missing, "age")
	}
	if !isValidValue(p.CasteCategory) {
		missing = append(missing, "caste_category")
	}
	return missing
}
