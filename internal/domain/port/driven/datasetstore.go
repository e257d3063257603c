package driven

import (
	"context"

	"github.com/mapops/volcsync/internal/domain/model"
)

// DatasetStore defines the driven port for persisting the fetched dataset
// to its local path. Write fully replaces any previous dataset; a failed
// write must never leave a partially written file at the final path.
type DatasetStore interface {
	Write(ctx context.Context, data []byte) (model.Dataset, error)
}
