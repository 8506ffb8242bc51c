package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscargavin/foremost-sub001/internal/mail"
)

func TestSummaryAnswersBeforeDelivery(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	rec := postJSON(env, "/api/v1/summary",
		`{"company": "Acme", "email": "ops@acme.test", "summary": "Strong automation potential."}`, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.True(t, reply.Success)
	assert.Equal(t, "Summary queued for delivery", reply.Message)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.dispatcher.Close(ctx))

	keys, payloads := env.sender.deliveries()
	require.Len(t, keys, 1)
	assert.NotEmpty(t, keys[0])

	var content mail.Content
	require.NoError(t, json.Unmarshal(payloads[0], &content))
	assert.Equal(t, "New analysis summary for Acme", content.Subject)
	assert.Contains(t, content.HTML, "Acme")
	assert.Contains(t, content.HTML, "ops@acme.test")
}

func TestSummaryEscapesMarkupInTheNotification(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	rec := postJSON(env, "/api/v1/summary",
		`{"company": "<script>alert(1)</script>", "email": "ops@acme.test", "summary": "fine"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.dispatcher.Close(ctx))

	_, payloads := env.sender.deliveries()
	require.Len(t, payloads, 1)

	var content mail.Content
	require.NoError(t, json.Unmarshal(payloads[0], &content))
	assert.NotContains(t, content.HTML, "<script>")
	assert.Contains(t, content.HTML, "&lt;script&gt;")
}

func TestSummaryRejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	cases := []string{
		`{"email": "ops@acme.test", "summary": "s"}`,
		`{"company": "Acme", "email": "not-an-email", "summary": "s"}`,
		`{"company": "Acme", "email": "ops@acme.test"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := postJSON(env, "/api/v1/summary", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q should be rejected", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.dispatcher.Close(ctx))

	keys, _ := env.sender.deliveries()
	assert.Empty(t, keys, "rejected requests must not enqueue jobs")
}

func TestSummaryRepeatsShareTheIdempotencyKey(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	body := `{"company": "Acme", "email": "ops@acme.test", "summary": "Same text."}`
	require.Equal(t, http.StatusOK, postJSON(env, "/api/v1/summary", body, "").Code)
	require.Equal(t, http.StatusOK, postJSON(env, "/api/v1/summary", body, "").Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.dispatcher.Close(ctx))

	keys, _ := env.sender.deliveries()
	require.Len(t, keys, 2)
	// Both jobs carry the same key, leaving dedup to the provider.
	assert.Equal(t, keys[0], keys[1])
}
