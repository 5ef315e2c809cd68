package tui

import "errors"

// ErrMissingRetrievalService is returned when no retrieval service is provided.
var ErrMissingRetrievalService = errors.New("tui: retrieval service is required")
