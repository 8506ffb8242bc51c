package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterSetsStreamingHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := NewEmitter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}

func TestEmitterFramesAndStampsEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	now := time.UnixMilli(1700000000000)
	e, err := NewEmitter(rec, WithEmitterClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, e.Send(StageUpdate("company_profile", "Researching the company")))
	now = now.Add(3 * time.Second)
	require.NoError(t, e.Send(Complete(map[string]string{"done": "yes"})))

	body := rec.Body.String()
	frames := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
	require.Len(t, frames, 2)

	var first, second ProgressEvent
	require.True(t, strings.HasPrefix(frames[0], "data: "))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &second))

	assert.Equal(t, EventStageUpdate, first.Type)
	assert.Equal(t, "company_profile", first.Stage)
	assert.Equal(t, "Researching the company", first.StageDescription)
	assert.Equal(t, int64(1700000000000), first.Timestamp)

	assert.Equal(t, EventComplete, second.Type)
	assert.Equal(t, int64(1700000003000), second.Timestamp)
}

type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header         { return b.header }
func (b *brokenWriter) Write([]byte) (int, error)   { return 0, errors.New("broken pipe") }
func (b *brokenWriter) WriteHeader(statusCode int)  {}
func (b *brokenWriter) Flush()                      {}

func TestEmitterStaysClosedAfterWriteFailure(t *testing.T) {
	e, err := NewEmitter(&brokenWriter{header: http.Header{}})
	require.NoError(t, err)

	require.ErrorIs(t, e.Send(StageUpdate("signal_scan", "Scanning")), ErrStreamClosed)
	require.ErrorIs(t, e.Send(Complete(nil)), ErrStreamClosed)
}

type plainWriter struct {
	header http.Header
}

func (p *plainWriter) Header() http.Header        { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *plainWriter) WriteHeader(statusCode int)  {}

func TestEmitterRequiresFlusher(t *testing.T) {
	_, err := NewEmitter(&plainWriter{header: http.Header{}})
	require.Error(t, err)
}

func TestErrorEventFallsBackToGenericMessage(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Error)
	assert.Equal(t, "something went wrong, please try again", Error(errors.New("")).Error)
	assert.Equal(t, "something went wrong, please try again", Error(nil).Error)
}
