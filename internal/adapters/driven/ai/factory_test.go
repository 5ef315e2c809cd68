package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantErr   error
		wantModel string
	}{
		{
			name:    "nil settings returns nil",
			wantNil: true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name:     "cloud provider without key returns nil",
			settings: &domain.LLMSettings{Provider: domain.LLMProviderGroq},
			wantNil:  true,
		},
		{
			name:      "ollama uses default model",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderOllama},
			wantModel: "llama3.2",
		},
		{
			name:      "openai",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderOpenAI, APIKey: "sk"},
			wantModel: "gpt-4o-mini",
		},
		{
			name:      "groq",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderGroq, APIKey: "gsk"},
			wantModel: "llama-3.1-70b-versatile",
		},
		{
			name:      "anthropic with explicit model",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderAnthropic, APIKey: "k", Model: "claude-x"},
			wantModel: "claude-x",
		},
		{
			name:      "gemini",
			settings:  &domain.LLMSettings{Provider: domain.LLMProviderGemini, APIKey: "g"},
			wantModel: "gemini-1.5-flash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.LLMProviderOllama,
		BaseURL:  server.URL,
	})

	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
}

func TestCreateAndValidateLLMService_Reachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.LLMProviderOllama,
		BaseURL:  server.URL,
	})

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.NoError(t, svc.Close())
}
