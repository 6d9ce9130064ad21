package presentation

import (
	"strings"
	"time"

	"github.com/okian/skinalyze/internal/domain/model"
)

const (
	dateLayout       = "Jan 2, 2006"
	dateTime12Layout = "Jan 2, 2006, 03:04 PM"
	dateTime24Layout = "Jan 2, 2006, 15:04"
	monthYearLayout  = "January 2006"
)

// ParseDate parses a date-like string in the mapper's location.
func (m *Mapper) ParseDate(s string) (time.Time, bool) {
	return model.ParseDate(s, m.loc)
}

// resolveDate returns the parsed date or the current time.
func (m *Mapper) resolveDate(s string) time.Time {
	if t, ok := m.ParseDate(s); ok {
		return t
	}
	if strings.TrimSpace(s) != "" && m.onDateFallback != nil {
		m.onDateFallback(s)
	}
	return m.now().In(m.loc)
}

// FormatDate renders s as "Oct 30, 2025". Absent or unparseable input
// renders the current date.
func (m *Mapper) FormatDate(s string) string {
	return m.resolveDate(s).Format(dateLayout)
}

// FormatDateTime renders s as "Oct 30, 2025, 04:23 PM", or with a 24-hour
// clock when configured. Absent or unparseable input renders the current
// time.
func (m *Mapper) FormatDateTime(s string) string {
	layout := dateTime12Layout
	if m.hour24 {
		layout = dateTime24Layout
	}
	return m.resolveDate(s).Format(layout)
}

// earliest returns the earliest parseable date among values.
func (m *Mapper) earliest(values ...string) (time.Time, bool) {
	var (
		first time.Time
		found bool
	)
	for _, v := range values {
		t, ok := m.ParseDate(v)
		if !ok {
			continue
		}
		if !found || t.Before(first) {
			first, found = t, true
		}
	}
	return first, found
}
