package presentation

import (
	"time"

	"github.com/okian/skinalyze/internal/domain/model"
	"golang.org/x/text/language"
)

// Mapper carries the settings that make presentation locale and clock
// dependent. A Mapper is immutable after construction and safe for
// concurrent use.
type Mapper struct {
	now              func() time.Time
	loc              *time.Location
	hour24           bool
	lang             language.Tag
	fallbackProgress bool
	onDateFallback   func(raw string)
}

// NewMapper creates a Mapper with configuration options.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		now:  time.Now,
		loc:  time.Local,
		lang: language.AmericanEnglish,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

var defaultMapper = NewMapper()

// FormatDate formats s with the default mapper.
func FormatDate(s string) string { return defaultMapper.FormatDate(s) }

// FormatDateTime formats s with the default mapper.
func FormatDateTime(s string) string { return defaultMapper.FormatDateTime(s) }

// Summarize summarizes entries with the default mapper.
func Summarize(entries []model.ProgressEntry) OverallProgress {
	return defaultMapper.Summarize(entries)
}

// fallbackEntries returns the demo entries shown when a patient has no
// progress records.
func fallbackEntries() []model.ProgressEntry {
	return []model.ProgressEntry{
		{
			Date:  "Oct 31, 2025",
			Score: 65,
			Title: DefaultProgressTitle,
			Notes: "Post-observation: stable appearance, no alarming changes.",
			Trend: "stable",
		},
		{
			Date:  "Nov 4, 2025",
			Score: 74,
			Title: DefaultProgressTitle,
			Notes: "Slight improvement in border regularity and color uniformity.",
			Trend: "up",
		},
	}
}
