package presentation

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/okian/skinalyze/internal/domain/model"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	stableMessage     = "Stable condition, continue monitoring"
	summaryPrecision  = 2
	statisticsRounder = 2
)

// OverallProgress is the change between the first and last progress entry.
type OverallProgress struct {
	Delta     float64 `json:"delta"`
	Improving bool    `json:"improving"`
	Message   string  `json:"message"`
}

// Summarize compares the last score with the first one. Only a strictly
// positive change is reported as improvement; everything else, including
// fewer than two entries, is stable.
func (m *Mapper) Summarize(entries []model.ProgressEntry) OverallProgress {
	if len(entries) == 0 {
		return OverallProgress{Message: stableMessage}
	}

	delta := entries[len(entries)-1].Score - entries[0].Score
	if math.IsNaN(delta) {
		delta = 0
	}
	if !(delta > 0) {
		return OverallProgress{Delta: delta, Message: stableMessage}
	}

	p := message.NewPrinter(m.lang)
	return OverallProgress{
		Delta:     delta,
		Improving: true,
		Message: p.Sprintf("Improving by %v%% since first observation",
			number.Decimal(delta, number.MaxFractionDigits(summaryPrecision))),
	}
}

// ScoreStats describes the distribution of progress scores.
type ScoreStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Statistics computes score statistics. An empty input yields zero values.
func Statistics(entries []model.ProgressEntry) ScoreStats {
	if len(entries) == 0 {
		return ScoreStats{}
	}

	data := make(stats.Float64Data, 0, len(entries))
	for _, e := range entries {
		data = append(data, e.Score)
	}

	out := ScoreStats{Count: len(data)}
	out.Mean = round(data.Mean())
	out.Median = round(data.Median())
	out.Min = round(data.Min())
	out.Max = round(data.Max())
	return out
}

func round(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	r, err := stats.Round(v, statisticsRounder)
	if err != nil {
		return 0
	}
	return r
}
