// Package types contains common types used across the application
package types

import "strings"

// Category is a display category shared by risk and progress encodings.
type Category string

// Display categories.
const (
	CategoryPositive Category = "positive"
	CategoryCaution  Category = "caution"
	CategoryWarning  Category = "warning"
	CategoryDanger   Category = "danger"
	CategoryNeutral  Category = "neutral"
)

// String returns the category token.
func (c Category) String() string { return string(c) }

// Severity orders risk categories from least to most severe: neutral,
// positive, caution, warning, danger.
func (c Category) Severity() int {
	switch c {
	case CategoryPositive:
		return 1
	case CategoryCaution:
		return 2
	case CategoryWarning:
		return 3
	case CategoryDanger:
		return 4
	default:
		return 0
	}
}

// Trend is the direction icon shown next to a progress entry.
type Trend string

// Trend icons.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// String returns the trend token.
func (t Trend) String() string { return string(t) }

// Tab identifies a section of the patient page.
type Tab string

// Patient page tabs.
const (
	TabDiagnoses Tab = "diagnoses"
	TabProgress  Tab = "progress"
)

// ParseTab returns the tab named by s. Unknown or empty names select the
// diagnoses tab.
func ParseTab(s string) Tab {
	if strings.EqualFold(strings.TrimSpace(s), string(TabProgress)) {
		return TabProgress
	}
	return TabDiagnoses
}

// String returns the tab token.
func (t Tab) String() string { return string(t) }
