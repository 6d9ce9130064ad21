package repository

import "github.com/okian/skinalyze/internal/domain/model"

func confidence(v float64) *float64 { return &v }

// SeedPatients returns the demo patients served when no fixtures file is
// configured.
func SeedPatients() []model.Patient {
	return []model.Patient{
		{
			ID:              "1",
			Name:            "Sarah Johnson",
			FitzpatrickType: "II",
			Diagnoses: []model.Diagnosis{
				{
					Date:       "October 30, 2025 at 04:23 PM",
					Condition:  "Melanocytic Nevus",
					RiskLevel:  "Low Risk",
					Confidence: confidence(86),
					Notes:      "Benign-appearing nevus. Advise routine monitoring.",
					Metrics: map[string]model.MetricValue{
						model.MetricAsymmetry:      model.Number(97),
						model.MetricBorder:         model.Number(91),
						model.MetricColorVariation: model.Number(74),
						model.MetricDiameter:       model.Text("9.0"),
						model.MetricEvolution:      model.Text("Absent"),
						model.MetricPigmentNet:     model.Number(15),
						model.MetricBlueWhite:      model.Number(21),
						model.MetricVessels:        model.Number(2),
					},
				},
			},
			ProgressEntries: []model.ProgressEntry{
				{
					Date:  "Oct 31, 2025",
					Score: 65,
					Title: "Healing Progress",
					Notes: "Post-observation: stable appearance, no alarming changes.",
					Trend: "stable",
				},
				{
					Date:  "Nov 4, 2025",
					Score: 74,
					Title: "Healing Progress",
					Notes: "Slight improvement in border regularity and color uniformity.",
					Trend: "up",
				},
			},
		},
		{
			ID:              "2",
			Name:            "Michael Chen",
			FitzpatrickType: "IV",
			Diagnoses: []model.Diagnosis{
				{
					Date:       "2025-09-18T10:15:00Z",
					Condition:  "Atypical Nevus",
					RiskLevel:  "Medium Risk",
					Confidence: confidence(78),
					Notes:      "Irregular border on the left shoulder. Recheck in three months.",
					Metrics: map[string]model.MetricValue{
						model.MetricAsymmetry: model.Number(62),
						model.MetricBorder:    model.Number(55),
						model.MetricDiameter:  model.Text("6.5"),
						model.MetricEvolution: model.Text("Present"),
					},
				},
				{
					Date:       "2025-10-21T09:40:00Z",
					Condition:  "Superficial Spreading Melanoma",
					RiskLevel:  "High Risk",
					Confidence: confidence(91),
					Notes:      "Referred for excisional biopsy.",
				},
			},
			ProgressEntries: []model.ProgressEntry{
				{
					Date:  "2025-10-28",
					Score: 58,
					Title: "Post-excision Healing",
					Trend: "up",
					Metrics: map[string]model.MetricValue{
						"woundSize":    model.Number(12),
						"rednessLevel": model.Text("Moderate"),
					},
				},
				{
					Date:  "2025-11-11",
					Score: 81,
					Title: "Post-excision Healing",
					Trend: "up",
					Metrics: map[string]model.MetricValue{
						"woundSize":    model.Number(4),
						"rednessLevel": model.Text("Mild"),
					},
				},
			},
		},
		{
			ID:              "3",
			Name:            "Emily Rodriguez",
			FitzpatrickType: "III",
			Diagnoses: []model.Diagnosis{
				{
					Date:      "Aug 2, 2025",
					Condition: "Seborrheic Keratosis",
					RiskLevel: "low",
				},
			},
		},
	}
}
