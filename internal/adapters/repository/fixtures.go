package repository

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/skinalyze/internal/domain/model"
)

const fixturesKey = "patients"

// LoadFixtures reads patients from a YAML or JSON file with a top-level
// "patients" list. JSON is parsed by the YAML parser.
func LoadFixtures(path string) ([]model.Patient, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrLoadFixtures)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(filepath.Clean(path)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFixtures, path, err)
	}
	return decodePatients(k.Get(fixturesKey))
}

// decodePatients converts the generic document tree into patient records.
func decodePatients(raw any) ([]model.Patient, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: missing %q list", ErrLoadFixtures, fixturesKey)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFixtures, err)
	}

	var patients []model.Patient
	if err := json.Unmarshal(b, &patients); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFixtures, err)
	}

	seen := make(map[string]struct{}, len(patients))
	for i, p := range patients {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: patient %d has no id", ErrLoadFixtures, i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate patient id %q", ErrLoadFixtures, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return patients, nil
}
