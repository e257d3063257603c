package model

import "time"

// RunState represents how far a sync run progressed. A run advances
// strictly forward through the states below; any state may transition to
// RunStateFailed, which is terminal alongside RunStateOverwritten.
type RunState string

const (
	RunStateStarted       RunState = "started"
	RunStateFetched       RunState = "fetched"
	RunStateAuthenticated RunState = "authenticated"
	RunStateItemResolved  RunState = "item_resolved"
	RunStateOverwritten   RunState = "overwritten"
	RunStateFailed        RunState = "failed"
)

// RunRecord is the append-only history entry for a single sync run.
type RunRecord struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
	State        RunState
	DatasetPath  string
	DatasetBytes int64
	ItemID       string
	Error        string // Empty on success.
}
