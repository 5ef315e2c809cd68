// Package mcp provides an MCP (Model Context Protocol) server adapter for Archivist.
// It lets AI assistants search a collection's history and ask cited questions about it.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// errNoScope is reported to the client when no collection was given or saved.
var errNoScope = errors.New("no collection selected: pass a collection or call set_scope first")
