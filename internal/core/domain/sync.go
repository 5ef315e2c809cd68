package domain

import "time"

// SyncState records the outcome of the last ingestion run for a collection.
type SyncState struct {
	// CollectionID is the collection that was synced.
	CollectionID string

	// RunID identifies the ingestion run.
	RunID string

	// Cursor is the last page cursor reached. Empty after a complete run.
	Cursor string

	// LastSync is when the run finished.
	LastSync time.Time

	// Documents is the number of records upserted or tombstoned.
	Documents int

	// Errors is the number of records that failed to apply.
	Errors int
}

// SyncReport summarises a single ingestion run.
type SyncReport struct {
	CollectionID string
	RunID        string
	Pages        int
	Upserted     int
	Tombstoned   int
	Skipped      int
	Errors       int
	Duration     time.Duration
}
