package storage

import (
	"errors"

	"github.com/cuemby/burrow/pkg/types"
)

// ErrNotFound is returned when a run id is unknown
var ErrNotFound = errors.New("run not found")

// Store defines the interface for the run journal
type Store interface {
	CreateRun(run *types.Run) error
	GetRun(id string) (*types.Run, error)
	// ListRuns returns runs oldest first
	ListRuns() ([]*types.Run, error)
	UpdateRun(run *types.Run) error
	DeleteRun(id string) error
	// PruneRuns deletes all but the newest keep runs
	PruneRuns(keep int) (int, error)

	Close() error
}
