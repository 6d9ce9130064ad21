// Package repository defines the patient store interface and its backends.
package repository

import (
	"context"

	"github.com/okian/skinalyze/internal/domain/model"
)

// Store provides read access to patient records.
type Store interface {
	// Get returns the patient with id.
	// Returns ErrNotFound if the patient is unknown.
	Get(ctx context.Context, id string) (model.Patient, error)

	// List returns up to limit patients ordered by id. A limit of 0 returns
	// every patient; a negative limit returns ErrInvalidLimit.
	List(ctx context.Context, limit int) ([]model.Patient, error)

	// Count returns the number of patients in the store.
	Count(ctx context.Context) (int, error)

	// Close releases background resources.
	Close() error
}
