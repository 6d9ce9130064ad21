// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skinalyze/internal/adapters/repository"
	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/internal/domain/presentation"
	"github.com/okian/skinalyze/internal/domain/types"
	"github.com/okian/skinalyze/pkg/logger"
	"github.com/okian/skinalyze/pkg/metrics"
)

// Lookup results recorded in metrics.
const (
	lookupFound    = "found"
	lookupNotFound = "not_found"
	lookupError    = "error"
)

const defaultMaxPatientList = 100

// Service implements the API dependencies for the patient dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	mapper *presentation.Mapper

	// Configuration
	fixturesPath   string
	mapperOpts     []presentation.Option
	maxPatientList int
	ownsStore      bool

	// State
	started  bool
	lookups  atomic.Int64
	notFound atomic.Int64
	failures atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the patient store. Without one, Start builds an in-memory
// store from fixtures or demo patients.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFixturesPath loads the in-memory store from a YAML or JSON file.
func WithFixturesPath(path string) Option {
	return func(s *Service) {
		s.fixturesPath = path
	}
}

// WithMapperOptions configures the presentation mapper.
func WithMapperOptions(opts ...presentation.Option) Option {
	return func(s *Service) {
		s.mapperOpts = append(s.mapperOpts, opts...)
	}
}

// WithMaxPatientList caps the number of patients returned by Patients.
func WithMaxPatientList(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPatientList = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxPatientList: defaultMaxPatientList,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store and the presentation mapper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...")

	if s.store == nil {
		seed := repository.SeedPatients()
		source := "demo"
		if s.fixturesPath != "" {
			patients, err := repository.LoadFixtures(s.fixturesPath)
			if err != nil {
				return fmt.Errorf("start service: %w", err)
			}
			seed = patients
			source = s.fixturesPath
		}
		s.store = repository.NewMemStore(ctx, repository.WithPatients(seed))
		s.ownsStore = true
		s.logger.Info(ctx, "using memory store",
			logger.String("source", source),
			logger.Int("patients", len(seed)),
		)
	}

	opts := append([]presentation.Option{
		presentation.WithDateFallbackHook(func(raw string) {
			metrics.RecordDateFallback()
			s.logger.Debug(context.Background(), "unparseable date, using current time",
				logger.String("date", raw),
			)
		}),
	}, s.mapperOpts...)
	s.mapper = presentation.NewMapper(opts...)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("maxPatientList", s.maxPatientList),
	)

	return nil
}

// Stop releases the store when the service created it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// components returns the store and mapper of a started service.
func (s *Service) components() (repository.Store, *presentation.Mapper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.mapper, nil
}

// fetch loads a patient and records the lookup outcome.
func (s *Service) fetch(ctx context.Context, store repository.Store, id string) (model.Patient, error) {
	s.lookups.Add(1)
	p, err := store.Get(ctx, id)
	switch {
	case err == nil:
		metrics.RecordPatientLookup(lookupFound)
	case errors.Is(err, repository.ErrNotFound):
		s.notFound.Add(1)
		metrics.RecordPatientLookup(lookupNotFound)
	default:
		s.failures.Add(1)
		metrics.RecordPatientLookup(lookupError)
		metrics.RecordErrorByComponent("service", "fetch")
	}
	return p, err
}

// PatientPage renders the patient page. Fetch failures never reach the
// caller: they are logged and rendered as the not-found page.
func (s *Service) PatientPage(ctx context.Context, id string, tab types.Tab) presentation.PatientPage {
	start := time.Now()
	defer func() {
		metrics.RecordRenderLatency(float64(time.Since(start).Milliseconds()))
	}()

	store, mapper, err := s.components()
	if err != nil {
		s.log().Error(ctx, "failed to load patient", logger.String("patient_id", id), logger.Error(err))
		return presentation.NotFoundPage()
	}

	p, err := s.fetch(ctx, store, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info(ctx, "patient not found", logger.String("patient_id", id))
		} else {
			s.logger.Error(ctx, "failed to load patient", logger.String("patient_id", id), logger.Error(err))
		}
		return presentation.NotFoundPage()
	}

	page := mapper.PatientPage(&p, tab)
	recordCategories(page.Diagnoses, page.Progress)
	s.logger.Debug(ctx, "rendered patient page",
		logger.String("patient_id", id),
		logger.String("tab", page.ActiveTab.String()),
	)
	return page
}

// DiagnosisHistory renders the diagnosis tab for a patient.
func (s *Service) DiagnosisHistory(ctx context.Context, id string) (presentation.DiagnosisHistory, error) {
	store, mapper, err := s.components()
	if err != nil {
		return presentation.DiagnosisHistory{}, err
	}
	p, err := s.fetch(ctx, store, id)
	if err != nil {
		return presentation.DiagnosisHistory{}, err
	}
	view := mapper.DiagnosisHistory(p.Diagnoses)
	recordCategories(&view, nil)
	return view, nil
}

// TreatmentProgress renders the progress tab for a patient.
func (s *Service) TreatmentProgress(ctx context.Context, id string) (presentation.TreatmentProgress, error) {
	store, mapper, err := s.components()
	if err != nil {
		return presentation.TreatmentProgress{}, err
	}
	p, err := s.fetch(ctx, store, id)
	if err != nil {
		return presentation.TreatmentProgress{}, err
	}
	view := mapper.TreatmentProgress(p.ProgressEntries)
	recordCategories(nil, &view)
	return view, nil
}

// Patients returns patient list cards. A limit of 0 or above the configured
// maximum is capped to the maximum.
func (s *Service) Patients(ctx context.Context, limit int) ([]presentation.PatientCard, error) {
	store, mapper, err := s.components()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.maxPatientList {
		limit = s.maxPatientList
	}

	patients, err := store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	cards := make([]presentation.PatientCard, 0, len(patients))
	for _, p := range patients {
		cards = append(cards, mapper.PatientCard(p))
	}
	return cards, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"maxPatientList": s.maxPatientList,
		"lookups":        s.lookups.Load(),
		"notFound":       s.notFound.Load(),
		"failures":       s.failures.Load(),
	}

	if s.started {
		n, err := s.store.Count(context.Background())
		if err != nil {
			s.logger.Warn(context.Background(), "failed to count patients", logger.Error(err))
		} else {
			stats["totalPatients"] = n
			metrics.UpdateRepositoryRecordsTotal(n)
		}
	}

	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func recordCategories(d *presentation.DiagnosisHistory, p *presentation.TreatmentProgress) {
	if d != nil {
		for _, c := range d.Diagnoses {
			metrics.RecordRiskCategory(c.RiskCategory.String())
		}
	}
	if p != nil {
		for _, e := range p.Entries {
			metrics.RecordProgressCategory(e.Category.String())
		}
	}
}
