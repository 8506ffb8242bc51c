package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscargavin/foremost-sub001/internal/dispatch"
)

func TestClientSendsProviderMessage(t *testing.T) {
	var gotPath, gotAuth, gotKey string
	var gotMsg map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "noreply@foremost.so", "team@foremost.so")
	payload, err := json.Marshal(Content{Subject: "New analysis summary for Acme", HTML: "<p>done</p>"})
	require.NoError(t, err)

	require.NoError(t, c.Send(context.Background(), "key-123", payload))

	assert.Equal(t, "/emails", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "New analysis summary for Acme", gotMsg["subject"])
	assert.Equal(t, "<p>done</p>", gotMsg["html"])
	assert.Equal(t, "noreply@foremost.so", gotMsg["from"])
	assert.Equal(t, []interface{}{"team@foremost.so"}, gotMsg["to"])
}

func TestClientMapsProviderRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "noreply@foremost.so", "team@foremost.so")
	payload, err := json.Marshal(Content{Subject: "s", HTML: "b"})
	require.NoError(t, err)

	sendErr := c.Send(context.Background(), "key-123", payload)

	var se *dispatch.StatusError
	require.ErrorAs(t, sendErr, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestClientRejectsMalformedPayload(t *testing.T) {
	c := NewClient("http://unused", "secret", "a@b", "c@d")
	require.Error(t, c.Send(context.Background(), "key", json.RawMessage(`not json`)))
}
