// Package driving defines what the CLI, TUI, MCP and HTTP adapters call
// into. Implementations live in internal/core/services.
package driving
