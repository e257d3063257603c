// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mapops/volcsync/internal/domain/model"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// SecretService is the secret store service name under which the portal
// password is stored, keyed together with the portal username.
const SecretService = "PORTAL"

// SyncService orchestrates one full sync run: fetch and persist the
// source dataset, resolve the portal credential, authenticate, resolve
// the hosted layer item, and overwrite its data. No step is retried; the
// first failure ends the run.
type SyncService struct {
	source   driven.DatasetSource
	datasets driven.DatasetStore
	secrets  driven.SecretProvider
	portal   driven.PortalClient
	runs     driven.RunStore
	username string
	itemID   string
}

// NewSyncService creates a new SyncService with all required dependencies.
func NewSyncService(
	source driven.DatasetSource,
	datasets driven.DatasetStore,
	secrets driven.SecretProvider,
	portal driven.PortalClient,
	runs driven.RunStore,
	username string,
	itemID string,
) *SyncService {
	return &SyncService{
		source:   source,
		datasets: datasets,
		secrets:  secrets,
		portal:   portal,
		runs:     runs,
		username: username,
		itemID:   itemID,
	}
}

// Run executes one sync run to completion or first failure and appends
// the outcome to the run history. The returned record carries the
// terminal state and timings; err is non-nil exactly when the record's
// state is RunStateFailed.
func (s *SyncService) Run(ctx context.Context) (model.RunRecord, error) {
	rec := model.RunRecord{
		StartedAt: time.Now(),
		State:     model.RunStateStarted,
		ItemID:    s.itemID,
	}

	err := s.runSteps(ctx, &rec)

	rec.FinishedAt = time.Now()
	rec.Duration = rec.FinishedAt.Sub(rec.StartedAt)
	if err != nil {
		rec.State = model.RunStateFailed
		rec.Error = err.Error()
		slog.Error("sync run failed",
			"error", err,
			"duration", rec.Duration.Round(time.Millisecond),
		)
	} else {
		slog.Info("sync run complete",
			"item_id", s.itemID,
			"dataset_bytes", rec.DatasetBytes,
			"duration", rec.Duration.Round(time.Millisecond),
		)
	}

	// The history row is best effort; a failed append never masks the
	// run's own outcome.
	if _, appendErr := s.runs.Append(ctx, rec); appendErr != nil {
		slog.Error("append run record failed", "error", appendErr)
	}

	return rec, err
}

// runSteps advances the run through its states, updating rec as each
// step completes.
func (s *SyncService) runSteps(ctx context.Context, rec *model.RunRecord) error {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	dataset, err := s.datasets.Write(ctx, data)
	if err != nil {
		return fmt.Errorf("persist dataset: %w", err)
	}
	rec.State = model.RunStateFetched
	rec.DatasetPath = dataset.Path
	rec.DatasetBytes = dataset.Bytes
	slog.Info("dataset written", "path", dataset.Path, "bytes", dataset.Bytes)

	password, err := s.secrets.Get(ctx, SecretService, s.username)
	if err != nil {
		return fmt.Errorf("resolve portal credential: %w", err)
	}

	slog.Info("signing in to portal", "username", s.username)
	session, err := s.portal.Authenticate(ctx, s.username, password)
	if err != nil {
		return fmt.Errorf("open portal session: %w", err)
	}
	rec.State = model.RunStateAuthenticated

	item, err := session.GetItemByID(ctx, s.itemID)
	if err != nil {
		return fmt.Errorf("resolve portal item: %w", err)
	}
	rec.State = model.RunStateItemResolved
	slog.Info("portal item resolved", "item_id", item.ID, "title", item.Title, "type", item.Type)

	slog.Info("overwriting feature layer", "item_id", item.ID, "file", dataset.Path)
	if err := session.OverwriteCollectionData(ctx, *item, dataset.Path); err != nil {
		return fmt.Errorf("overwrite feature layer: %w", err)
	}
	rec.State = model.RunStateOverwritten

	return nil
}
