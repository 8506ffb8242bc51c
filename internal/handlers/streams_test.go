package handlers

import (
	"net/http"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscargavin/foremost-sub001/internal/events"
	"github.com/oscargavin/foremost-sub001/internal/generate"
)

func TestOpportunitiesStreamsProgress(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{result: &generate.Result{Content: `{"positioning": "regional leader", "competitors": ["X"], "maturity": "early"}`}},
		{result: &generate.Result{Content: `{"opportunities": [{"title": "Forecasting", "description": "d", "impact": "high", "effort": "low"}]}`}},
		{result: &generate.Result{Content: `{"ranked": [{"title": "Forecasting", "score": 82, "rationale": "quick win"}]}`}},
	}}
	env := newTestEnv(t, client, 3)

	rec := postJSON(env, "/api/v1/opportunities",
		`{"company": "Acme", "industry": "logistics", "goals": "cut fulfilment time"}`, "203.0.113.7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	evs := decodeStream(t, rec.Body.String())
	require.NotEmpty(t, evs)
	assert.Equal(t, events.EventComplete, evs[len(evs)-1].Type)
	assert.Equal(t, "company_context", evs[0].Stage)

	recs := env.runStore.records()
	require.Len(t, recs, 1)
	assert.Equal(t, "opportunities", recs[0].Pipeline)
}

func TestOpportunitiesRequiresCompanyAndIndustry(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	rec := postJSON(env, "/api/v1/opportunities", `{"company": "Acme"}`, "203.0.113.7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.runStore.records())
}

func TestSignalsStreamsProgress(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{result: &generate.Result{Content: `{"signals": [{"headline": "New fund", "summary": "s", "kind": "funding"}]}`}},
		{result: &generate.Result{Content: `{"trends": [{"name": "Consolidation", "direction": "up", "confidence": "medium", "evidence": "e"}]}`}},
		{result: &generate.Result{Content: `{"recommendations": [{"action": "Pilot", "why": "w", "urgency": "soon"}]}`}},
	}}
	env := newTestEnv(t, client, 3)

	rec := postJSON(env, "/api/v1/signals", `{"industry": "healthcare", "focus": "imaging"}`, "203.0.113.7")

	require.Equal(t, http.StatusOK, rec.Code)

	evs := decodeStream(t, rec.Body.String())
	require.NotEmpty(t, evs)
	assert.Equal(t, events.EventComplete, evs[len(evs)-1].Type)
	assert.Equal(t, "signal_scan", evs[0].Stage)

	recs := env.runStore.records()
	require.Len(t, recs, 1)
	assert.Equal(t, "signals", recs[0].Pipeline)
}

func TestStreamHeartbeatStopsWithTheRequest(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	before := runtime.NumGoroutine()

	rec := postJSON(env, "/api/v1/scan", `{"url": "https://example.com"}`, "203.0.113.7")
	require.Equal(t, http.StatusOK, rec.Code)

	// The heartbeat goroutine must wind down once the handler returns.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignalsRequiresIndustry(t *testing.T) {
	env := newTestEnv(t, &scriptedClient{replies: scanReplies()}, 3)

	rec := postJSON(env, "/api/v1/signals", `{"focus": "imaging"}`, "203.0.113.7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.runStore.records())
}
