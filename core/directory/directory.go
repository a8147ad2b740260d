// Package directory abstracts the external driver-directory service. The
// pipeline treats its answers as a point-in-time snapshot for one run.
package directory

import (
	"context"

	"github.com/cheetahx/dispatch/core/model"
)

// Directory lists and resolves drivers.
type Directory interface {
	// ListActive returns the drivers currently available for work.
	ListActive(ctx context.Context) ([]model.Driver, error)
	// GetByID resolves a single driver, nil when unknown.
	GetByID(ctx context.Context, id string) (*model.Driver, error)
}
