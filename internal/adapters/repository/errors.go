package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("patient not found")
	ErrInvalidLimit   = errors.New("invalid patient list limit")
	ErrInvalidPatient = errors.New("invalid patient record")
	ErrLoadFixtures   = errors.New("failed to load patient fixtures")
)
