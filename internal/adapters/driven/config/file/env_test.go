package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestEnvReader_Overrides(t *testing.T) {
	t.Setenv("RAG_LLM_PROVIDER", "groq")
	t.Setenv("RAG_LLM_MODEL", "llama-3.1-8b-instant")
	t.Setenv("RAG_EXPORT_DIR", "/data/export")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "ghp-test")

	r, err := NewEnvReader()
	require.NoError(t, err)

	o, err := r.Overrides()

	require.NoError(t, err)
	assert.Equal(t, "groq", o.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", o.Model)
	assert.Equal(t, "/data/export", o.ExportDir)
	assert.Equal(t, "gsk-test", o.ProviderAPIKeys[domain.LLMProviderGroq])
	_, hasOpenAI := o.ProviderAPIKeys[domain.LLMProviderOpenAI]
	assert.False(t, hasOpenAI)
	assert.Equal(t, "ghp-test", o.GitHubToken)
}

func TestEnvReader_LoadsDotenvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "RAG_LLM_MODEL=from-dotenv\nRAG_LINK_BASE_URL=https://acme.slack.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("RAG_LLM_MODEL", "from-shell")
	t.Setenv("RAG_LINK_BASE_URL", "")
	require.NoError(t, os.Unsetenv("RAG_LINK_BASE_URL"))

	r, err := NewEnvReader(path)
	require.NoError(t, err)
	o, err := r.Overrides()
	require.NoError(t, err)

	assert.Equal(t, "from-shell", o.Model)
	assert.Equal(t, "https://acme.slack.com", o.LinkBaseURL)
}

func TestEnvReader_MissingDotenvIgnored(t *testing.T) {
	_, err := NewEnvReader(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
