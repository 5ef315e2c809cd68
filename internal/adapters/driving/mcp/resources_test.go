package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestExtractCollectionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid collection documents URI", "archivist://collections/C123/documents", "C123"},
		{"invalid prefix", "file://collections/C123/documents", ""},
		{"missing documents suffix", "archivist://collections/C123", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCollectionID(tt.uri))
		})
	}
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid document URI", "archivist://documents/C1-1700000000.000100", "C1-1700000000.000100"},
		{"invalid prefix", "file://documents/doc-456", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("archivist://collections/C1/documents"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("archivist://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "C1-2.0", Timestamp: "2.0", Text: "rollback done", CitationURI: "https://x/p20"},
			{ID: "C1-1.0", Timestamp: "1.0", Text: "deploy failed", AuthorID: "U1"},
		}}
		server := newTestServer(t, &Ports{Document: docs})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("archivist://collections/C1/documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "rollback done")
		assert.Contains(t, result.Contents[0].Text, "https://x/p20")
		assert.Contains(t, result.Contents[0].Text, `"author_id": "U1"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: errors.New("database error")}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("archivist://collections/C1/documents"))

		assert.ErrorContains(t, err, "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()
	uri := "archivist://documents/C1-1.0"

	t.Run("returns text with citation", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{
			ID: "C1-1.0", Text: "deploy failed", CitationURI: "https://x/p10",
		}}
		server := newTestServer(t, &Ports{Document: docs})

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		assert.Equal(t, "deploy failed\n\nhttps://x/p10", result.Contents[0].Text)
	})

	t.Run("tombstoned document is not found", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{ID: "C1-1.0", Deleted: true}}
		server := newTestServer(t, &Ports{Document: docs})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest(uri))

		require.Error(t, err)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: domain.ErrNotFound}})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest(uri))

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "getting document")
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: errors.New("disk")}})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest(uri))

		assert.ErrorContains(t, err, "getting document")
	})
}
