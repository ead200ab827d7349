package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	p, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "claude", p.Name())
	assert.NotEmpty(t, p.Model())
	assert.Equal(t, int64(defaultMaxTokens), p.maxTokens)

	p, err = New(Config{APIKey: "k", Model: "claude-haiku-4-5", MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", p.Model())
	assert.Equal(t, int64(64), p.maxTokens)
}

func TestGenerate(t *testing.T) {
	var req struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &req))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [{"type": "text", "text": "Hi "}, {"type": "text", "text": "there"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", Model: "claude-haiku-4-5", BaseURL: srv.URL, MaxTokens: 128})
	require.NoError(t, err)

	got, err := p.Generate(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)

	assert.Equal(t, "claude-haiku-4-5", req.Model)
	assert.Equal(t, int64(128), req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 1)
	assert.Equal(t, "Hello", req.Messages[0].Content[0].Text)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"nope"}}`)
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude api error")
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_2",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 0}
		}`)
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
