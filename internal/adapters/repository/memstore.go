package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemStore is an in-memory Store. Records are copied on the way in and on
// the way out so callers never share maps or slices with the store.
type MemStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Patient
	order []string // ids, ascending

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		byID:                  make(map[string]model.Patient),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.reindex()

	metrics.UpdateRepositoryRecordsTotal(len(s.byID))
	s.startMetricsUpdater(ctx)

	return s
}

// Put inserts or replaces a patient.
func (s *MemStore) Put(ctx context.Context, p model.Patient) error {
	if p.ID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_patient")
		return ErrInvalidPatient
	}

	s.mu.Lock()
	_, existed := s.byID[p.ID]
	s.byID[p.ID] = clonePatient(p)
	if !existed {
		s.reindex()
	}
	s.mu.Unlock()

	if !existed {
		n, _ := s.Count(ctx)
		metrics.UpdateRepositoryRecordsTotal(n)
	}
	return nil
}

// Get returns a copy of the patient with id.
func (s *MemStore) Get(ctx context.Context, id string) (model.Patient, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Patient{}, ErrNotFound
	}
	return clonePatient(p), nil
}

// List returns up to limit patients ordered by id.
func (s *MemStore) List(ctx context.Context, limit int) ([]model.Patient, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Patient, 0, n)
	for _, id := range s.order[:n] {
		out = append(out, clonePatient(s.byID[id]))
	}
	return out, nil
}

// Count returns the number of patients.
func (s *MemStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Close stops the metrics updater.
func (s *MemStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// reindex rebuilds the id order (assumes the write lock is held or the store
// is not yet shared).
func (s *MemStore) reindex() {
	s.order = s.order[:0]
	for id := range s.byID {
		s.order = append(s.order, id)
	}
	sort.Strings(s.order)
}

func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateRepositoryRecordsTotal(n)
			}
		}
	}()
}

func clonePatient(p model.Patient) model.Patient {
	out := p
	if p.Diagnoses != nil {
		out.Diagnoses = make([]model.Diagnosis, len(p.Diagnoses))
		for i, d := range p.Diagnoses {
			out.Diagnoses[i] = d
			if d.Confidence != nil {
				c := *d.Confidence
				out.Diagnoses[i].Confidence = &c
			}
			out.Diagnoses[i].Metrics = cloneMetrics(d.Metrics)
		}
	}
	if p.ProgressEntries != nil {
		out.ProgressEntries = make([]model.ProgressEntry, len(p.ProgressEntries))
		for i, e := range p.ProgressEntries {
			out.ProgressEntries[i] = e
			out.ProgressEntries[i].Metrics = cloneMetrics(e.Metrics)
		}
	}
	return out
}

func cloneMetrics(in map[string]model.MetricValue) map[string]model.MetricValue {
	if in == nil {
		return nil
	}
	out := make(map[string]model.MetricValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
