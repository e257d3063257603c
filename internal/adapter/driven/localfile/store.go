// Package localfile implements the DatasetStore port as an atomic
// overwrite of a single fixed file path.
package localfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/mapops/volcsync/internal/domain/model"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DatasetStore = (*Store)(nil)

// Store writes the dataset to a fixed path. Writes go through a temp file
// and rename, so a failed run never leaves a partial dataset at the final
// path and the previous run's file survives intact.
type Store struct {
	path string
}

// NewStore creates a Store targeting the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Write replaces the dataset file with data and returns its description.
func (s *Store) Write(ctx context.Context, data []byte) (model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.Dataset{}, fmt.Errorf("creating dataset directory %s: %w", dir, err)
		}
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return model.Dataset{}, fmt.Errorf("writing dataset to %s: %w", s.path, err)
	}

	return model.Dataset{
		Path:      s.path,
		Bytes:     int64(len(data)),
		WrittenAt: time.Now(),
	}, nil
}
