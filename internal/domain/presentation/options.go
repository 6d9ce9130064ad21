package presentation

import (
	"time"

	"golang.org/x/text/language"
)

// Option applies a configuration option to the Mapper.
type Option func(*Mapper)

// WithClock sets the time source used when a date cannot be parsed.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLocation sets the time zone dates are interpreted and shown in.
func WithLocation(loc *time.Location) Option {
	return func(m *Mapper) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithHour24 switches date-times to the 24-hour clock.
func WithHour24(enabled bool) Option {
	return func(m *Mapper) {
		m.hour24 = enabled
	}
}

// WithLanguage sets the language used for number formatting and casing.
func WithLanguage(tag language.Tag) Option {
	return func(m *Mapper) {
		if tag != language.Und {
			m.lang = tag
		}
	}
}

// WithFallbackProgress fills in demo progress entries for patients that
// have none.
func WithFallbackProgress(enabled bool) Option {
	return func(m *Mapper) {
		m.fallbackProgress = enabled
	}
}

// WithDateFallbackHook registers a function called with every non-empty date
// string that could not be parsed.
func WithDateFallbackHook(fn func(raw string)) Option {
	return func(m *Mapper) {
		m.onDateFallback = fn
	}
}
