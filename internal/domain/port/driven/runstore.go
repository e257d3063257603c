package driven

import (
	"context"

	"github.com/mapops/volcsync/internal/domain/model"
)

// RunStore defines the driven port for the append-only run history.
type RunStore interface {
	// Append records a completed run (terminal state, success or failure)
	// and returns its assigned ID.
	Append(ctx context.Context, rec model.RunRecord) (int64, error)

	// ListRecent returns up to limit runs, most recent first.
	ListRecent(ctx context.Context, limit int) ([]model.RunRecord, error)
}
