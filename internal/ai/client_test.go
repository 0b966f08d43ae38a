package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mypetsvoice/backend/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() prompt.PetProfile {
	return prompt.PetProfile{Name: "Momo", Species: "Cat"}
}

func TestGenerateReplySuccess(t *testing.T) {
	var calls int32
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  meow!  "}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})

	reply := client.GenerateReply(context.Background(), testProfile(), nil, "hi")

	assert.Equal(t, "meow!", reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one upstream call")
	require.NotEmpty(t, gotReq.Messages)
	assert.Equal(t, prompt.RoleSystem, gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "Momo")
	assert.Equal(t, "hi", gotReq.Messages[len(gotReq.Messages)-1].Content)
}

func TestGenerateReplyUpstreamFailureReturnsFallback(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})

	reply := client.GenerateReply(context.Background(), testProfile(), nil, "hi")

	assert.Equal(t, FallbackReply, reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry on failure")
}

func TestGenerateReplyMalformedResponseReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})

	assert.Equal(t, FallbackReply, client.GenerateReply(context.Background(), testProfile(), nil, "hi"))
}

func TestGenerateReplyWithoutCredential(t *testing.T) {
	// No server at all: a missing key must short-circuit before any call
	client := NewClient(Options{APIKey: "", BaseURL: "http://127.0.0.1:0"})

	reply := client.GenerateReply(context.Background(), testProfile(), nil, "hi")

	assert.Contains(t, reply, "Momo")
	assert.Contains(t, reply, "API key")
}

func TestGenerateReplyIncludesHistoryWindow(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "purr"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})
	history := []prompt.Turn{
		{Sender: "user", Content: "hello"},
		{Sender: "bot", Content: "meow"},
	}

	client.GenerateReply(context.Background(), testProfile(), history, "hungry?")

	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, prompt.RoleUser, gotReq.Messages[1].Role)
	assert.Equal(t, prompt.RoleAssistant, gotReq.Messages[2].Role)
	assert.Equal(t, "hungry?", gotReq.Messages[3].Content)
}
