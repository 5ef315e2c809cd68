package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// defaultLimit is the number of hits returned when none is requested.
const defaultLimit = 5

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the question or keywords to search for"`
	Collection string `json:"collection,omitempty" jsonschema:"collection to search; defaults to the user's saved scope"`
	User       string `json:"user,omitempty" jsonschema:"user whose saved scope is used when no collection is given"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Collection string            `json:"collection"`
	Mode       string            `json:"mode"`
	Count      int               `json:"count"`
	Results    []SearchHitOutput `json:"results"`
}

// SearchHitOutput represents a single search hit.
type SearchHitOutput struct {
	DocumentID  string  `json:"document_id"`
	Text        string  `json:"text"`
	CitationURI string  `json:"citation_uri,omitempty"`
	AuthorID    string  `json:"author_id,omitempty"`
	Timestamp   string  `json:"timestamp"`
	Score       float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the collection's history"`
	Collection string `json:"collection,omitempty" jsonschema:"collection to ask about; defaults to the user's saved scope"`
	User       string `json:"user,omitempty" jsonschema:"user whose saved scope is used when no collection is given"`
	Limit      int    `json:"limit,omitempty" jsonschema:"number of passages to ground the answer on"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string            `json:"answer"`
	Collection string            `json:"collection,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	Sources    []SearchHitOutput `json:"sources"`
	NeedsScope bool              `json:"needs_scope,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// SetScopeInput is the input schema for the set_scope tool.
type SetScopeInput struct {
	User       string `json:"user" jsonschema:"the user whose default collection is set"`
	Collection string `json:"collection" jsonschema:"the collection to search by default"`
}

// SetScopeOutput is the output schema for the set_scope tool.
type SetScopeOutput struct {
	User       string `json:"user"`
	Collection string `json:"collection"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search a collection's message history. Returns ranked passages with citation links.",
	}, s.handleSearch)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from a collection's message history, citing the passages used.",
		}, s.handleAsk)
	}

	if s.ports.Scope != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "set_scope",
			Description: "Set the collection a user searches by default.",
		}, s.handleSetScope)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	collection, err := s.resolveCollection(ctx, input.Collection, input.User)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	outcome, err := s.ports.Retrieval.Retrieve(ctx, input.Query, collection, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Collection: collection,
		Mode:       string(outcome.Mode),
		Count:      len(outcome.Hits),
		Results:    hitOutputs(outcome.Hits),
	}, nil
}

// handleAsk handles the ask tool invocation. Answering failures are
// reported in the output, not as protocol errors.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Ask.Ask(ctx, domain.AskRequest{
		UserID:       input.User,
		CollectionID: input.Collection,
		Query:        input.Question,
		K:            input.Limit,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:     result.Answer,
		Collection: result.CollectionID,
		Mode:       string(result.Mode),
		Sources:    hitOutputs(result.Hits),
		NeedsScope: result.NeedsScope,
		Error:      result.UserMessage,
	}
	if result.NeedsScope {
		out.Error = errNoScope.Error()
	}
	return nil, out, nil
}

// handleSetScope handles the set_scope tool invocation.
func (s *Server) handleSetScope(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetScopeInput,
) (*mcp.CallToolResult, SetScopeOutput, error) {
	if err := s.ports.Scope.SetScope(ctx, input.User, input.Collection); err != nil {
		return nil, SetScopeOutput{}, fmt.Errorf("set scope: %w", err)
	}
	return nil, SetScopeOutput{
		User:       strings.TrimSpace(input.User),
		Collection: strings.TrimSpace(input.Collection),
	}, nil
}

// resolveCollection returns the explicit collection, else the user's saved scope.
func (s *Server) resolveCollection(ctx context.Context, collection, user string) (string, error) {
	if c := strings.TrimSpace(collection); c != "" {
		return c, nil
	}
	if s.ports.Scope != nil && user != "" {
		saved, ok, err := s.ports.Scope.GetScope(ctx, user)
		if err != nil {
			return "", err
		}
		if ok {
			return saved, nil
		}
	}
	return "", errNoScope
}

func hitOutputs(hits []domain.SearchHit) []SearchHitOutput {
	out := make([]SearchHitOutput, len(hits))
	for i, h := range hits {
		out[i] = SearchHitOutput{
			DocumentID:  h.ID,
			Text:        h.Text,
			CitationURI: h.CitationURI,
			AuthorID:    h.AuthorID,
			Timestamp:   h.Timestamp,
			Score:       h.Score,
		}
	}
	return out
}
