// Package presentation derives display-ready values from clinical records.
//
// Every function here is total: absent, empty or malformed input maps to a
// defined output and nothing returns an error. Risk and progress values are
// encoded as types.Category tokens; rendering them is left to the caller.
package presentation

import (
	"strings"

	"github.com/okian/skinalyze/internal/domain/types"
	"golang.org/x/text/cases"
)

// Placeholder values used when a record omits a field.
const (
	DefaultCondition     = "Melanocytic Nevus"
	DefaultRiskLevel     = "Low Risk"
	DefaultConfidence    = 86.0
	DefaultProgressTitle = "Healing Progress"
)

// Progress score thresholds, inclusive.
const (
	positiveScore = 80
	cautionScore  = 60
)

// RiskCategory maps a risk label to a category, ignoring case and
// surrounding whitespace.
func RiskCategory(risk string) types.Category {
	switch cases.Fold().String(strings.TrimSpace(risk)) {
	case "low risk", "low":
		return types.CategoryPositive
	case "medium risk", "medium":
		return types.CategoryCaution
	case "high risk", "high":
		return types.CategoryDanger
	default:
		return types.CategoryNeutral
	}
}

// IsHighRisk reports whether a risk label mentions "high" in any case.
func IsHighRisk(risk string) bool {
	return strings.Contains(cases.Fold().String(risk), "high")
}

// ProgressCategory maps a 0-100 score to a category. NaN is a warning.
func ProgressCategory(score float64) types.Category {
	switch {
	case score >= positiveScore:
		return types.CategoryPositive
	case score >= cautionScore:
		return types.CategoryCaution
	default:
		return types.CategoryWarning
	}
}

// TrendIcon selects the trend icon. It only looks at the trend value, never
// at the score.
func TrendIcon(trend string) types.Trend {
	switch trend {
	case "up":
		return types.TrendUp
	case "down":
		return types.TrendDown
	default:
		return types.TrendFlat
	}
}

// HumanizeLabel turns a camel-cased key into words by putting a space in
// front of every ASCII capital: "colorVariation" becomes "color Variation".
func HumanizeLabel(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Initials returns the first letter of every whitespace separated part of a
// name.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// ClampPercent limits a score to the 0-100 range. NaN becomes 0.
func ClampPercent(score float64) float64 {
	switch {
	case score >= 100:
		return 100
	case score > 0:
		return score
	default:
		return 0
	}
}
