package llm_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/integration/llm"
)

func newGoogle(t *testing.T, handler http.HandlerFunc) *llm.Google {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := llm.NewGoogle(context.Background(), "test-key",
		llm.WithGoogleBaseURL(srv.URL+"/"),
		llm.WithGoogleModel("gemini-test"),
	)
	require.NoError(t, err)
	return client
}

func TestNewGoogleRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := llm.NewGoogle(context.Background(), "")
	assert.ErrorIs(t, err, llm.ErrInvalidAPIKey)
}

func TestGoogleGenerate(t *testing.T) {
	t.Parallel()

	var body string
	client := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"A tale"}]}}]}`)
	})

	text, err := client.Generate(context.Background(), llm.Prompt{System: "Be kind.", User: "Tell a tale"})
	require.NoError(t, err)
	assert.Equal(t, "A tale", text)
	assert.Contains(t, body, "Tell a tale")
	assert.Contains(t, body, "Be kind.")
}

func TestGoogleGenerateUnavailable(t *testing.T) {
	t.Parallel()

	client := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})

	_, err := client.Generate(context.Background(), llm.Prompt{User: "hi"})
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
}
