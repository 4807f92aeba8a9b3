package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arnavsurve/virtuoso-converter/pkg/assistant"
	_ "github.com/arnavsurve/virtuoso-converter/pkg/assistant/providers"
	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newAssistantServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{"id": "thread_1", "object": "thread"})
	})

	mux.HandleFunc("POST /threads/{thread}/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "thread_1", r.PathValue("thread"))
		assert.Equal(t, "user", body["role"])
		assert.Equal(t, "convert me", body["content"])
		writeJSON(w, map[string]any{"id": "msg_1", "object": "thread.message"})
	})

	mux.HandleFunc("POST /threads/{thread}/runs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asst_1", body["assistant_id"])
		writeJSON(w, map[string]any{"id": "run_1", "object": "thread.run", "status": "queued"})
	})

	mux.HandleFunc("GET /threads/{thread}/runs/{run}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("run") == "run_failed" {
			writeJSON(w, map[string]any{
				"id":         "run_failed",
				"status":     "failed",
				"last_error": map[string]any{"code": "rate_limit_exceeded", "message": "slow down"},
			})
			return
		}
		if r.PathValue("run") == "run_broken" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		writeJSON(w, map[string]any{"id": r.PathValue("run"), "status": "completed"})
	})

	mux.HandleFunc("GET /threads/{thread}/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		writeJSON(w, map[string]any{
			"object": "list",
			"data": []any{
				map[string]any{
					"id":   "msg_2",
					"role": "assistant",
					"content": []any{
						map[string]any{"type": "text", "text": map[string]any{"value": "[{\"a\":", "annotations": []any{}}},
						map[string]any{"type": "image_file", "image_file": map[string]any{"file_id": "file_1"}},
						map[string]any{"type": "text", "text": map[string]any{"value": "1}]", "annotations": []any{}}},
					},
				},
				map[string]any{
					"id":      "msg_1",
					"role":    "user",
					"content": []any{map[string]any{"type": "text", "text": map[string]any{"value": "convert me"}}},
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T) assistant.Service {
	t.Helper()
	srv := newAssistantServer(t)
	svc, err := assistant.NewService(core.ProviderConfig{
		Type:    core.ProviderOpenAI,
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return svc
}

func TestOpenAIService_ConversationFlow(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	threadID, err := svc.CreateThread(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", threadID)

	require.NoError(t, svc.PostMessage(ctx, threadID, assistant.RoleUser, "convert me"))

	runID, err := svc.StartRun(ctx, threadID, "asst_1")
	require.NoError(t, err)
	assert.Equal(t, "run_1", runID)

	state, err := svc.GetRunStatus(ctx, threadID, runID)
	require.NoError(t, err)
	assert.Equal(t, assistant.RunStatusCompleted, state.Status)

	messages, err := svc.ListMessages(ctx, threadID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, assistant.RoleAssistant, messages[0].Role)
	assert.Equal(t, `[{"a":1}]`, messages[0].Text())
	assert.Equal(t, "convert me", messages[1].Text())
}

func TestOpenAIService_FailedRunCarriesLastError(t *testing.T) {
	svc := newService(t)

	state, err := svc.GetRunStatus(context.Background(), "thread_1", "run_failed")
	require.NoError(t, err)
	assert.Equal(t, assistant.RunStatusFailed, state.Status)
	assert.Equal(t, "rate_limit_exceeded", state.ErrorCode)
	assert.Equal(t, "slow down", state.ErrorMessage)
}

func TestOpenAIService_TransportError(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetRunStatus(context.Background(), "thread_1", "run_broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving run")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestNewService(t *testing.T) {
	assert.Contains(t, assistant.Providers(), core.ProviderOpenAI)

	_, err := assistant.NewService(core.ProviderConfig{Type: core.ProviderOpenAI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = assistant.NewService(core.ProviderConfig{Type: "bedrock", APIKey: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no assistant provider registered")
	assert.Contains(t, err.Error(), core.ProviderOpenAI)
}
