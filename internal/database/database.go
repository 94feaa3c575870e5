package database

import (
	"context"
	"errors"

	"github.com/y0ug/defacemon/internal/database/models"
)

// Database persists the single trusted baseline record.
type Database interface {
	// Initialize prepares the backend (directories, buckets).
	Initialize(ctx context.Context) error

	Close(ctx context.Context) error

	// SaveBaseline replaces any stored baseline with b.
	SaveBaseline(ctx context.Context, b models.Baseline) error

	// LoadBaseline returns the stored baseline. It fails with
	// ErrBaselineNotFound when none exists and ErrCorruptBaseline when the
	// stored record cannot be decoded.
	LoadBaseline(ctx context.Context) (models.Baseline, error)

	// BaselineExists reports whether a record is stored, without decoding it.
	BaselineExists(ctx context.Context) (bool, error)

	// DeleteBaseline removes the stored record and reports whether one existed.
	DeleteBaseline(ctx context.Context) (bool, error)
}

var (
	ErrBaselineNotFound = errors.New("baseline not found")
	ErrCorruptBaseline  = errors.New("baseline record is corrupt")
)
