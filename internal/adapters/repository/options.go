package repository

import (
	"time"

	"github.com/okian/skinalyze/internal/domain/model"
)

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithPatients seeds the store. Records without an id are skipped.
func WithPatients(patients []model.Patient) Option {
	return func(s *MemStore) {
		for _, p := range patients {
			if p.ID == "" {
				continue
			}
			s.byID[p.ID] = clonePatient(p)
		}
	}
}
