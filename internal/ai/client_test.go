package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sooraj-Rao/college-resume-project/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Gemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" Looks good. "}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(config.AIConfig{Provider: "gemini", APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "review this")
	require.NoError(t, err)
	assert.Equal(t, "Looks good.", text)
}

func TestGenerate_ChatCompletions(t *testing.T) {
	for _, provider := range []string{"openai", "groq"} {
		t.Run(provider, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Add metrics."}}]}`))
			}))
			defer server.Close()

			client, err := NewClient(config.AIConfig{Provider: provider, APIKey: "secret", BaseURL: server.URL})
			require.NoError(t, err)

			text, err := client.Generate(context.Background(), "review this")
			require.NoError(t, err)
			assert.Equal(t, "Add metrics.", text)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	client, err := NewClient(config.AIConfig{Provider: "openai", APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "429")

	unconfigured, err := NewClient(config.AIConfig{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, unconfigured.Provider())
	_, err = unconfigured.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(config.AIConfig{Provider: "llamafile"})
	assert.Error(t, err)
}
