// Package tui provides an interactive terminal interface for searching
// and asking questions about an archive.
package tui

import (
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retrieval serves ranked searches. Required.
	Retrieval driving.RetrievalService

	// Ask answers questions. Ask mode is disabled when nil.
	Ask driving.AskService

	// Scope resolves the user's saved collection. Optional.
	Scope driving.ScopeService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

// Options configures a TUI session.
type Options struct {
	// Collection overrides the user's saved scope.
	Collection string

	// User identifies whose saved scope to use.
	User string

	// K is the number of hits per query.
	K int
}
