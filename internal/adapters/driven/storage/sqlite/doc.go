// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - LexicalIndex: message upsert, tombstone and FTS5 ranked search
//   - DocumentStore: read access to message records
//   - PreferenceStore: per-user collection scope
//   - SyncStateStore: ingestion progress
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The messages_fts table is an external-content FTS5 index kept in step with
// messages by triggers, so a single statement updates both.
//
// # Data Location
//
// By default, the database is stored at ~/.archivist/data/archive.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
