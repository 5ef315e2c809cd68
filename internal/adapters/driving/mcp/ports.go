package mcp

import (
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Retrieval serves the search tool. Required.
	Retrieval driving.RetrievalService

	// Ask serves the ask tool.
	Ask driving.AskService

	// Scope resolves and stores per-user collections.
	Scope driving.ScopeService

	// Document serves document resources.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
