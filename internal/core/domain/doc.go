// Package domain defines the core business entities for Archivist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A canonical message record from a channel archive
//   - SearchHit: A ranked, read-only projection of a Document
//   - UserPreference: The collection a user last selected as search scope
//   - RawMessage: An unnormalised record from an ingestion source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
