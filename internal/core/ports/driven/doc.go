// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LexicalIndex: Canonical document writes plus BM25-ranked scoped search
//   - DocumentStore: Read access to canonical documents
//   - PreferenceStore: Per-user collection scope persistence
//   - SyncStateStore: Ingestion progress persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Answer prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionService: Language model. Without it, ask returns hits with an error message.
//   - MessageSource: Ingestion source. Without it, ingest is unavailable.
//   - ChangeNotifier: Source change events. Without it, watch mode is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
