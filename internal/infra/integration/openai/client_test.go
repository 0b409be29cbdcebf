package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessageSendsRequiredHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "assistants=v2", r.Header.Get("OpenAI-Beta"))
		assert.Equal(t, "/threads/thread-1/messages", r.URL.Path)

		w.Write([]byte(`{"id": "msg-1", "role": "user"}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	err := client.PostMessage(context.Background(), "thread-1", "user", "hola")
	require.NoError(t, err)
}

func TestPostMessageActiveRunConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Can't add messages to thread while a run is active."}}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	err := client.PostMessage(context.Background(), "thread-1", "user", "hola")
	require.ErrorIs(t, err, ErrActiveRun)
}

func TestGetRunRateLimitedWithRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Rate limit reached"}}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	_, err := client.GetRun(context.Background(), "thread-1", "run-1")

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 5*time.Second, rl.RetryAfter)
}

func TestGetRunRateLimitedDefaultWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	_, err := client.GetRun(context.Background(), "thread-1", "run-1")

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 2*time.Second, rl.RetryAfter)
}

func TestGetRunParsesRequiredAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "run-1",
			"status": "requires_action",
			"required_action": {
				"type": "submit_tool_outputs",
				"submit_tool_outputs": {
					"tool_calls": [
						{"id": "call-1", "type": "function", "function": {"name": "create_appointment", "arguments": "{\"date\":\"2026-09-03\"}"}}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	run, err := client.GetRun(context.Background(), "thread-1", "run-1")
	require.NoError(t, err)

	assert.True(t, run.IsActive())
	calls := run.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call-1", calls[0].ID)
	assert.Equal(t, "create_appointment", calls[0].Function.Name)
	assert.JSONEq(t, `{"date":"2026-09-03"}`, calls[0].Function.Arguments)
}

func TestListMessagesNewestFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Write([]byte(`{
			"data": [
				{"id": "msg-2", "role": "assistant", "content": [{"type": "text", "text": {"value": "tu turno quedó agendado"}}]},
				{"id": "msg-1", "role": "user", "content": [{"type": "text", "text": {"value": "quiero un turno"}}]}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	messages, err := client.ListMessages(context.Background(), "thread-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "assistant", messages[0].Role)
	assert.Equal(t, "tu turno quedó agendado", messages[0].Text())
}

func TestEnsureAssistantReusesConfiguredID(t *testing.T) {
	client := NewClient("sk-test", "http://invalid.test")

	id, err := client.EnsureAssistant(context.Background(), "asst_existente")
	require.NoError(t, err)
	assert.Equal(t, "asst_existente", id)
}

func TestEnsureAssistantCreatesWithTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assistants", r.URL.Path)
		w.Write([]byte(`{"id": "asst_nuevo", "name": "Laura - Asistente de Turnos"}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", server.URL)

	id, err := client.EnsureAssistant(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "asst_nuevo", id)
}
