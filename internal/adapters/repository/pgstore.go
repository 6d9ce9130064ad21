package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/pkg/metrics"
)

// MigrationPatients creates the tables read by PGStore. It is safe to
// execute multiple times.
const MigrationPatients = `
CREATE TABLE IF NOT EXISTS patients (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    fitzpatrick_type TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analyses (
    id          BIGSERIAL PRIMARY KEY,
    patient_id  TEXT NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
    diagnosis   TEXT,
    risk_level  TEXT,
    confidence  DOUBLE PRECISION,
    notes       TEXT,
    recorded_at TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS metrics (
    id           BIGSERIAL PRIMARY KEY,
    analysis_id  BIGINT NOT NULL REFERENCES analyses (id) ON DELETE CASCADE,
    metric_name  TEXT NOT NULL,
    metric_value DOUBLE PRECISION,
    metric_text  TEXT
);

CREATE TABLE IF NOT EXISTS progress_entries (
    id          BIGSERIAL PRIMARY KEY,
    patient_id  TEXT NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
    recorded_at TIMESTAMPTZ,
    score       DOUBLE PRECISION NOT NULL,
    title       TEXT,
    notes       TEXT,
    trend       TEXT,
    metrics     JSONB
);

CREATE INDEX IF NOT EXISTS idx_analyses_patient_id ON analyses (patient_id, id);
CREATE INDEX IF NOT EXISTS idx_progress_entries_patient_id ON progress_entries (patient_id, id);
`

// pgConn is the subset of *pgxpool.Pool used by PGStore.
type pgConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStore is a PostgreSQL-backed Store. Diagnoses come from the analyses
// and metrics tables, progress entries from progress_entries. Record
// dates are stored as timestamps; dates that cannot be parsed are stored
// as NULL and read back empty.
type PGStore struct {
	db    pgConn
	close func()
	loc   *time.Location
}

// PGOption applies a configuration option to the PGStore.
type PGOption func(*PGStore)

// WithLocation sets the zone record dates without an offset are read in,
// and the zone stored dates are returned in. The default is UTC.
func WithLocation(loc *time.Location) PGOption {
	return func(s *PGStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPGStore wraps a pool. The store owns the pool and closes it on Close.
func NewPGStore(pool *pgxpool.Pool, opts ...PGOption) *PGStore {
	s := &PGStore{db: pool, close: pool.Close, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the schema if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, MigrationPatients); err != nil {
		return fmt.Errorf("migrate patients schema: %w", err)
	}
	return nil
}

// Put inserts or replaces a patient and all of its records in one
// transaction.
func (s *PGStore) Put(ctx context.Context, p model.Patient) error {
	if p.ID == "" {
		return ErrInvalidPatient
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.putRecords(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

func (s *PGStore) putRecords(ctx context.Context, tx pgx.Tx, p model.Patient) error {
	const upsert = `INSERT INTO patients (id, name, fitzpatrick_type)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
                               fitzpatrick_type = EXCLUDED.fitzpatrick_type`
	if _, err := tx.Exec(ctx, upsert, p.ID, p.Name, string(p.FitzpatrickType)); err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM analyses WHERE patient_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear analyses: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM progress_entries WHERE patient_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear progress entries: %w", err)
	}

	for _, d := range p.Diagnoses {
		var analysisID int64
		err := tx.QueryRow(ctx, `INSERT INTO analyses (patient_id, diagnosis, risk_level, confidence, notes, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			p.ID, d.Condition, d.RiskLevel, d.Confidence, d.Notes, recordTime(d.Date, s.loc)).Scan(&analysisID)
		if err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
		for name, v := range d.Metrics {
			var (
				num  *float64
				text *string
			)
			if f, ok := v.Float(); ok {
				num = &f
			} else if v.Present() {
				t := v.String()
				text = &t
			}
			if _, err := tx.Exec(ctx, `INSERT INTO metrics (analysis_id, metric_name, metric_value, metric_text)
VALUES ($1, $2, $3, $4)`, analysisID, name, num, text); err != nil {
				return fmt.Errorf("insert metric: %w", err)
			}
		}
	}

	for _, e := range p.ProgressEntries {
		var raw []byte
		if len(e.Metrics) > 0 {
			b, err := json.Marshal(e.Metrics)
			if err != nil {
				return fmt.Errorf("marshal progress metrics: %w", err)
			}
			raw = b
		}
		if _, err := tx.Exec(ctx, `INSERT INTO progress_entries (patient_id, recorded_at, score, title, notes, trend, metrics)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, recordTime(e.Date, s.loc), e.Score, e.Title, e.Notes, e.Trend, raw); err != nil {
			return fmt.Errorf("insert progress entry: %w", err)
		}
	}
	return nil
}

// Get returns the patient with id and its records.
func (s *PGStore) Get(ctx context.Context, id string) (model.Patient, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var (
		p        model.Patient
		skinType string
	)
	err := s.db.QueryRow(ctx, `SELECT id, name, fitzpatrick_type FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &skinType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.RecordErrorByComponent("repository", "not_found")
			return model.Patient{}, ErrNotFound
		}
		metrics.RecordErrorByComponent("repository", "query")
		return model.Patient{}, fmt.Errorf("get patient: %w", err)
	}
	p.FitzpatrickType = model.SkinType(skinType)

	if err := s.loadRecords(ctx, &p); err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return model.Patient{}, err
	}
	return p, nil
}

// List returns up to limit patients ordered by id.
func (s *PGStore) List(ctx context.Context, limit int) ([]model.Patient, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	query := `SELECT id, name, fitzpatrick_type FROM patients ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	var out []model.Patient
	for rows.Next() {
		var (
			p        model.Patient
			skinType string
		)
		if err := rows.Scan(&p.ID, &p.Name, &skinType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		p.FitzpatrickType = model.SkinType(skinType)
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	for i := range out {
		if err := s.loadRecords(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Count returns the number of patients.
func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	metrics.UpdateRepositoryRecordsTotal(n)
	return n, nil
}

// Close closes the pool.
func (s *PGStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *PGStore) loadRecords(ctx context.Context, p *model.Patient) error {
	diagnoses, err := s.loadDiagnoses(ctx, p.ID)
	if err != nil {
		return err
	}
	entries, err := s.loadProgress(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Diagnoses = diagnoses
	p.ProgressEntries = entries
	return nil
}

func (s *PGStore) loadDiagnoses(ctx context.Context, patientID string) ([]model.Diagnosis, error) {
	rows, err := s.db.Query(ctx, `SELECT id, diagnosis, risk_level, confidence, notes, recorded_at
FROM analyses WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	var (
		out   []model.Diagnosis
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			id                     int64
			condition, risk, notes *string
			confidence             *float64
			recordedAt             *time.Time
		)
		if err := rows.Scan(&id, &condition, &risk, &confidence, &notes, &recordedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		index[id] = len(out)
		out = append(out, model.Diagnosis{
			Condition:  deref(condition),
			Date:       storedDate(recordedAt, s.loc),
			RiskLevel:  deref(risk),
			Confidence: confidence,
			Notes:      deref(notes),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	rows, err = s.db.Query(ctx, `SELECT m.analysis_id, m.metric_name, m.metric_value, m.metric_text
FROM metrics m JOIN analyses a ON a.id = m.analysis_id
WHERE a.patient_id = $1`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			analysisID int64
			name       string
			num        *float64
			text       *string
		)
		if err := rows.Scan(&analysisID, &name, &num, &text); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		i, ok := index[analysisID]
		if !ok {
			continue
		}
		if out[i].Metrics == nil {
			out[i].Metrics = make(map[string]model.MetricValue)
		}
		switch {
		case num != nil:
			out[i].Metrics[name] = model.Number(*num)
		case text != nil:
			out[i].Metrics[name] = model.Text(*text)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	return out, nil
}

func (s *PGStore) loadProgress(ctx context.Context, patientID string) ([]model.ProgressEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT recorded_at, score, title, notes, trend, metrics
FROM progress_entries WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query progress entries: %w", err)
	}
	defer rows.Close()

	var out []model.ProgressEntry
	for rows.Next() {
		var (
			recordedAt          *time.Time
			score               float64
			title, notes, trend *string
			raw                 []byte
		)
		if err := rows.Scan(&recordedAt, &score, &title, &notes, &trend, &raw); err != nil {
			return nil, fmt.Errorf("scan progress entry: %w", err)
		}
		e := model.ProgressEntry{
			Date:  storedDate(recordedAt, s.loc),
			Score: score,
			Title: deref(title),
			Notes: deref(notes),
			Trend: deref(trend),
		}
		e.Metrics = decodeProgressMetrics(raw)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query progress entries: %w", err)
	}
	return out, nil
}

// recordTime converts a record date to a timestamp for storage. Dates
// that cannot be parsed become NULL.
func recordTime(s string, loc *time.Location) *time.Time {
	t, ok := model.ParseDate(s, loc)
	if !ok {
		return nil
	}
	return &t
}

// storedDate renders a stored timestamp in loc. NULL renders empty.
func storedDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

// decodeProgressMetrics decodes a stored metrics document. A malformed
// document yields no metrics.
func decodeProgressMetrics(raw []byte) map[string]model.MetricValue {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]model.MetricValue
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
