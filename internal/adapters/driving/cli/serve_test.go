package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_AddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, ":8080", flag.DefValue)
}

func TestNewHTTPServer_WiresServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	srv, err := newHTTPServer()
	require.NoError(t, err)
	h := srv.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=deploy&collection=C1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, services.retrieval.lastK)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/collections/C1/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewHTTPServer_RequiresRetrieval(t *testing.T) {
	SetServices(&Services{})

	_, err := newHTTPServer()

	assert.Error(t, err)
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}
