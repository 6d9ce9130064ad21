package presentation

import (
	"sort"
	"strconv"

	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/internal/domain/types"
	"golang.org/x/text/cases"
)

// Fixed view copy.
const (
	DiagnosisHistoryTitle    = "Diagnosis History"
	DiagnosisHistorySubtitle = "Complete medical record with metrics"
	NoDiagnosesMessage       = "No diagnosis history available"
	TreatmentProgressTitle   = "Treatment Progress"
	TreatmentProgressSubtext = "Tracking recovery over time"
	NotFoundMessage          = "Patient not found"
	PatientListPath          = "/patients"
)

// metricTile describes one of the fixed clinical metric tiles.
type metricTile struct {
	key         string
	label       string
	unit        string
	placeholder string
}

// Tiles in display order.
var diagnosisTiles = []metricTile{
	{key: model.MetricAsymmetry, label: "Asymmetry", unit: "%", placeholder: "97"},
	{key: model.MetricBorder, label: "Border", unit: "%", placeholder: "91"},
	{key: model.MetricColorVariation, label: "Color Var.", unit: "%", placeholder: "74"},
	{key: model.MetricDiameter, label: "Diameter", unit: " mm", placeholder: "9.0"},
	{key: model.MetricEvolution, label: "Evolution", placeholder: "Absent"},
	{key: model.MetricPigmentNet, label: "Pigment Net", unit: "%", placeholder: "15"},
	{key: model.MetricBlueWhite, label: "Blue-White", unit: "%", placeholder: "21"},
	{key: model.MetricVessels, label: "Vessels", unit: "%", placeholder: "2"},
}

// MetricTile is a rendered clinical metric.
type MetricTile struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Unit        string `json:"unit,omitempty"`
	Display     string `json:"display"`
	Placeholder bool   `json:"placeholder"`
}

// DiagnosisCard is a rendered diagnosis.
type DiagnosisCard struct {
	Condition      string         `json:"condition"`
	Date           string         `json:"date"`
	RiskLevel      string         `json:"riskLevel"`
	RiskCategory   types.Category `json:"riskCategory"`
	Confidence     float64        `json:"confidence"`
	ConfidenceText string         `json:"confidenceText"`
	Notes          string         `json:"notes,omitempty"`
	Metrics        []MetricTile   `json:"metrics"`
}

// DiagnosisHistory is the diagnosis tab.
type DiagnosisHistory struct {
	Title        string          `json:"title"`
	Subtitle     string          `json:"subtitle"`
	Empty        bool            `json:"empty"`
	EmptyMessage string          `json:"emptyMessage,omitempty"`
	Diagnoses    []DiagnosisCard `json:"diagnoses"`
}

// ProgressMetric is an extra metric attached to a progress entry.
type ProgressMetric struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	DisplayLabel string `json:"displayLabel"`
	Value        string `json:"value"`
}

// ProgressCard is a rendered progress entry.
type ProgressCard struct {
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	Score     float64          `json:"score"`
	ScoreText string           `json:"scoreText"`
	Category  types.Category   `json:"category"`
	BarWidth  float64          `json:"barWidth"`
	ShowTrend bool             `json:"showTrend"`
	Trend     types.Trend      `json:"trend,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Metrics   []ProgressMetric `json:"metrics,omitempty"`
}

// TreatmentProgress is the progress tab.
type TreatmentProgress struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Fallback bool             `json:"fallback"`
	Entries  []ProgressCard   `json:"entries"`
	Summary  *OverallProgress `json:"summary,omitempty"`
	Stats    ScoreStats       `json:"stats"`
}

// PatientHeader identifies the patient at the top of the page.
type PatientHeader struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Initials     string `json:"initials"`
	SkinType     string `json:"skinType"`
	PatientSince string `json:"patientSince,omitempty"`
}

// StatCard is a headline count.
type StatCard struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// TabView is a tab selector entry.
type TabView struct {
	Tab    types.Tab `json:"tab"`
	Label  string    `json:"label"`
	Count  int       `json:"count"`
	Active bool      `json:"active"`
}

// PatientPage is the patient detail page. When Found is false only Message
// and BackLink are set.
type PatientPage struct {
	Found     bool               `json:"found"`
	Message   string             `json:"message,omitempty"`
	BackLink  string             `json:"backLink"`
	Header    *PatientHeader     `json:"header,omitempty"`
	Stats     []StatCard         `json:"stats,omitempty"`
	Tabs      []TabView          `json:"tabs,omitempty"`
	ActiveTab types.Tab          `json:"activeTab,omitempty"`
	Diagnoses *DiagnosisHistory  `json:"diagnoses,omitempty"`
	Progress  *TreatmentProgress `json:"progress,omitempty"`
}

// PatientCard is a row of the patient list.
type PatientCard struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Initials        string         `json:"initials"`
	SkinType        string         `json:"skinType"`
	Diagnoses       int            `json:"diagnoses"`
	ProgressEntries int            `json:"progressEntries"`
	HighRisk        int            `json:"highRisk"`
	WorstRisk       types.Category `json:"worstRisk"`
}

// DiagnosisCard renders a single diagnosis, filling in placeholders for
// absent fields.
func (m *Mapper) DiagnosisCard(d model.Diagnosis) DiagnosisCard {
	card := DiagnosisCard{
		Condition:  d.Condition,
		Date:       m.FormatDateTime(d.Date),
		RiskLevel:  d.RiskLevel,
		Confidence: DefaultConfidence,
		Notes:      d.Notes,
		Metrics:    make([]MetricTile, 0, len(diagnosisTiles)),
	}
	if card.Condition == "" {
		card.Condition = DefaultCondition
	}
	if card.RiskLevel == "" {
		card.RiskLevel = DefaultRiskLevel
	}
	card.RiskCategory = RiskCategory(card.RiskLevel)
	if d.Confidence != nil {
		card.Confidence = *d.Confidence
	}
	card.ConfidenceText = formatNumber(card.Confidence) + "%"

	for _, tile := range diagnosisTiles {
		out := MetricTile{Key: tile.key, Label: tile.label, Unit: tile.unit}
		if v, ok := d.Metrics[tile.key]; ok && v.Present() {
			out.Value = v.String()
		} else {
			out.Value = tile.placeholder
			out.Placeholder = true
		}
		out.Display = out.Value + tile.unit
		card.Metrics = append(card.Metrics, out)
	}
	return card
}

// DiagnosisHistory renders the diagnosis tab.
func (m *Mapper) DiagnosisHistory(diagnoses []model.Diagnosis) DiagnosisHistory {
	view := DiagnosisHistory{
		Title:     DiagnosisHistoryTitle,
		Subtitle:  DiagnosisHistorySubtitle,
		Diagnoses: make([]DiagnosisCard, 0, len(diagnoses)),
	}
	if len(diagnoses) == 0 {
		view.Empty = true
		view.EmptyMessage = NoDiagnosesMessage
		return view
	}
	for _, d := range diagnoses {
		view.Diagnoses = append(view.Diagnoses, m.DiagnosisCard(d))
	}
	return view
}

// ProgressCard renders a single progress entry.
func (m *Mapper) ProgressCard(e model.ProgressEntry) ProgressCard {
	card := ProgressCard{
		Title:     e.Title,
		Date:      m.FormatDate(e.Date),
		Score:     e.Score,
		ScoreText: formatNumber(e.Score) + "%",
		Category:  ProgressCategory(e.Score),
		BarWidth:  ClampPercent(e.Score),
		Notes:     e.Notes,
	}
	if card.Title == "" {
		card.Title = DefaultProgressTitle
	}
	if e.Trend != "" {
		card.ShowTrend = true
		card.Trend = TrendIcon(e.Trend)
	}

	if len(e.Metrics) > 0 {
		keys := make([]string, 0, len(e.Metrics))
		for k := range e.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		upper := cases.Upper(m.lang)
		card.Metrics = make([]ProgressMetric, 0, len(keys))
		for _, k := range keys {
			label := HumanizeLabel(k)
			card.Metrics = append(card.Metrics, ProgressMetric{
				Key:          k,
				Label:        label,
				DisplayLabel: upper.String(label),
				Value:        e.Metrics[k].String(),
			})
		}
	}
	return card
}

// TreatmentProgress renders the progress tab. With fallback progress enabled
// a patient without entries is shown the demo entries instead.
func (m *Mapper) TreatmentProgress(entries []model.ProgressEntry) TreatmentProgress {
	view := TreatmentProgress{
		Title:    TreatmentProgressTitle,
		Subtitle: TreatmentProgressSubtext,
	}
	if len(entries) == 0 && m.fallbackProgress {
		entries = fallbackEntries()
		view.Fallback = true
	}

	view.Entries = make([]ProgressCard, 0, len(entries))
	for _, e := range entries {
		view.Entries = append(view.Entries, m.ProgressCard(e))
	}
	if len(entries) > 1 {
		summary := m.Summarize(entries)
		view.Summary = &summary
	}
	view.Stats = Statistics(entries)
	return view
}

// NotFoundPage is the page shown when a patient cannot be loaded.
func NotFoundPage() PatientPage {
	return PatientPage{
		Found:    false,
		Message:  NotFoundMessage,
		BackLink: PatientListPath,
	}
}

// PatientPage renders the patient detail page with tab selected. A nil
// patient renders the not-found page. Only the selected tab is built.
func (m *Mapper) PatientPage(p *model.Patient, tab types.Tab) PatientPage {
	if p == nil {
		return NotFoundPage()
	}

	tab = types.ParseTab(string(tab))
	counts := countRecords(p)

	page := PatientPage{
		Found:    true,
		BackLink: PatientListPath,
		Header: &PatientHeader{
			ID:       p.ID,
			Name:     p.Name,
			Initials: Initials(p.Name),
			SkinType: skinTypeLabel(p.FitzpatrickType),
		},
		Stats: []StatCard{
			{Key: "diagnoses", Label: "Total Diagnoses", Value: counts.diagnoses},
			{Key: "progress", Label: "Progress Entries", Value: counts.progress},
			{Key: "highRisk", Label: "High Risk Findings", Value: counts.highRisk},
		},
		Tabs: []TabView{
			{Tab: types.TabDiagnoses, Label: "Diagnosis History", Count: counts.diagnoses, Active: tab == types.TabDiagnoses},
			{Tab: types.TabProgress, Label: "Treatment Progress", Count: counts.progress, Active: tab == types.TabProgress},
		},
		ActiveTab: tab,
	}
	if since, ok := m.earliest(recordDates(p)...); ok {
		page.Header.PatientSince = "Patient since " + since.Format(monthYearLayout)
	}

	switch tab {
	case types.TabProgress:
		view := m.TreatmentProgress(p.ProgressEntries)
		page.Progress = &view
	default:
		view := m.DiagnosisHistory(p.Diagnoses)
		page.Diagnoses = &view
	}
	return page
}

// PatientCard renders a patient list row.
func (m *Mapper) PatientCard(p model.Patient) PatientCard {
	counts := countRecords(&p)
	card := PatientCard{
		ID:              p.ID,
		Name:            p.Name,
		Initials:        Initials(p.Name),
		SkinType:        skinTypeLabel(p.FitzpatrickType),
		Diagnoses:       counts.diagnoses,
		ProgressEntries: counts.progress,
		HighRisk:        counts.highRisk,
		WorstRisk:       types.CategoryNeutral,
	}
	for _, d := range p.Diagnoses {
		risk := d.RiskLevel
		if risk == "" {
			risk = DefaultRiskLevel
		}
		if c := RiskCategory(risk); c.Severity() > card.WorstRisk.Severity() {
			card.WorstRisk = c
		}
	}
	return card
}

type recordCounts struct {
	diagnoses int
	progress  int
	highRisk  int
}

func countRecords(p *model.Patient) recordCounts {
	c := recordCounts{
		diagnoses: len(p.Diagnoses),
		progress:  len(p.ProgressEntries),
	}
	for _, d := range p.Diagnoses {
		if IsHighRisk(d.RiskLevel) {
			c.highRisk++
		}
	}
	return c
}

func recordDates(p *model.Patient) []string {
	dates := make([]string, 0, len(p.Diagnoses)+len(p.ProgressEntries))
	for _, d := range p.Diagnoses {
		dates = append(dates, d.Date)
	}
	for _, e := range p.ProgressEntries {
		dates = append(dates, e.Date)
	}
	return dates
}

func skinTypeLabel(t model.SkinType) string {
	if t == "" {
		return ""
	}
	return "Type " + string(t)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
