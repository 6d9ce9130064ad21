// Package model contains the clinical records passed between layers.
//
// Records are read-only from the dashboard's point of view: they are produced
// by a patient store and consumed by the presentation mapper. Optional fields
// are either pointers or empty values; nothing here enforces clinical
// invariants.
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Well-known clinical indicator keys attached to a diagnosis.
const (
	MetricAsymmetry      = "asymmetry"
	MetricBorder         = "border"
	MetricColorVariation = "colorVariation"
	MetricDiameter       = "diameter"
	MetricEvolution      = "evolution"
	MetricPigmentNet     = "pigmentNet"
	MetricBlueWhite      = "blueWhite"
	MetricVessels        = "vessels"
)

// Patient is a record returned by the patient store.
type Patient struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	FitzpatrickType SkinType        `json:"fitzpatrickType"`
	Diagnoses       []Diagnosis     `json:"diagnoses,omitempty"`
	ProgressEntries []ProgressEntry `json:"progressEntries,omitempty"`
}

// Diagnosis is one analysis result for a lesion.
type Diagnosis struct {
	Condition  string                 `json:"condition,omitempty"`
	Date       string                 `json:"date,omitempty"`
	RiskLevel  string                 `json:"riskLevel,omitempty"`
	Confidence *float64               `json:"confidence,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	Metrics    map[string]MetricValue `json:"metrics,omitempty"`
}

// ProgressEntry is a point-in-time treatment progress observation.
type ProgressEntry struct {
	Date    string                 `json:"date,omitempty"`
	Score   float64                `json:"score"`
	Title   string                 `json:"title,omitempty"`
	Notes   string                 `json:"notes,omitempty"`
	Trend   string                 `json:"trend,omitempty"`
	Metrics map[string]MetricValue `json:"metrics,omitempty"`
}

// UnmarshalJSON decodes a diagnosis. Confidence may be a number or a numeric
// string; any other value leaves it absent.
func (d *Diagnosis) UnmarshalJSON(b []byte) error {
	type plain Diagnosis
	aux := struct {
		*plain
		Confidence json.RawMessage `json:"confidence"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.Confidence = nil
	if v, ok := looseFloat(aux.Confidence); ok {
		d.Confidence = &v
	}
	return nil
}

// UnmarshalJSON decodes a progress entry. Score may be a number or a numeric
// string; any other value is 0.
func (e *ProgressEntry) UnmarshalJSON(b []byte) error {
	type plain ProgressEntry
	aux := struct {
		*plain
		Score json.RawMessage `json:"score"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Score, _ = looseFloat(aux.Score)
	return nil
}

// looseFloat reads a finite JSON number or numeric string.
func looseFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SkinType is a Fitzpatrick phototype. Sources send it either as a number
// (3) or as text ("III"), so both decode into the same string form.
type SkinType string

// UnmarshalJSON accepts a JSON number or string.
func (s *SkinType) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = SkinType(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = SkinType(n.String())
	return nil
}

type metricKind uint8

const (
	metricNone metricKind = iota
	metricNumber
	metricText
)

// MetricValue is a clinical indicator that is either numeric (97, 9.0) or
// categorical ("Absent"). The zero value is an absent metric.
type MetricValue struct {
	kind   metricKind
	number float64
	text   string
}

// Number returns a numeric metric value.
func Number(v float64) MetricValue { return MetricValue{kind: metricNumber, number: v} }

// Text returns a categorical metric value.
func Text(v string) MetricValue { return MetricValue{kind: metricText, text: v} }

// Present reports whether the value carries data.
func (v MetricValue) Present() bool { return v.kind != metricNone }

// Float returns the numeric value, if any.
func (v MetricValue) Float() (float64, bool) {
	return v.number, v.kind == metricNumber
}

// String renders the value without units. Numbers use the shortest
// representation that round-trips (97, 9.5); absent values render empty.
func (v MetricValue) String() string {
	switch v.kind {
	case metricNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case metricText:
		return v.text
	default:
		return ""
	}
}

// MarshalJSON writes numbers as JSON numbers and text as JSON strings.
func (v MetricValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case metricNumber:
		return json.Marshal(v.number)
	case metricText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value. Numbers stay numeric, strings stay
// text, booleans become text, and objects or arrays keep their compact JSON
// form as text. null is an absent metric.
func (v *MetricValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = MetricValue{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var t bool
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		*v = Text(strconv.FormatBool(t))
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Text(buf.String())
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*v = Number(f)
	}
	return nil
}
