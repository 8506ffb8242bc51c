package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/internal/events"
	"github.com/oscargavin/foremost-sub001/internal/handlers/validator"
	"github.com/oscargavin/foremost-sub001/internal/pipeline"
	"github.com/oscargavin/foremost-sub001/internal/ratelimit"
)

const heartbeatInterval = 15 * time.Second

type ScanRequest struct {
	Url string `json:"url" validate:"required,public_url"`
}

// Scan runs the company scan pipeline and streams its progress back as
// server-sent events. Validation failures are regular JSON responses;
// everything after the first frame can only be reported on the stream.
func (h *ServiceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid request body"})
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewScanValidationRules()...)
	if err := v.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid scan request", Message: err.Error()})
		return
	}

	h.stream(w, r, pipeline.NewRun(pipeline.PipelineScan, map[string]string{"url": req.Url}), pipeline.ScanStages(), "scan")
}

// stream is the shared tail of the three pipeline handlers: switch the
// response to SSE, keep it alive between stages and hand off to the engine.
func (h *ServiceHandler) stream(w http.ResponseWriter, r *http.Request, run *pipeline.Run, stages []pipeline.Stage, purpose string) {
	emitter, err := events.NewEmitter(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The derived context stops the heartbeat once the stream is done even
	// when the request context itself is never cancelled.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go emitter.Heartbeat(ctx, heartbeatInterval)

	h.scanSrv.Stream(ctx, run, stages, emitter, ratelimit.ClientKey(purpose, r))
}
