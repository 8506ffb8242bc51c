package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/internal/handlers/validator"
	"github.com/oscargavin/foremost-sub001/internal/pipeline"
)

type SignalsRequest struct {
	Industry string `json:"industry" validate:"required"`
	Focus    string `json:"focus"`
}

// Signals streams the market-signal research pipeline.
func (h *ServiceHandler) Signals(w http.ResponseWriter, r *http.Request) {
	var req SignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid request body"})
		return
	}

	if err := validator.NewValidator().Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid signals request", Message: err.Error()})
		return
	}

	run := pipeline.NewRun(pipeline.PipelineSignals, map[string]string{
		"industry": req.Industry,
		"focus":    req.Focus,
	})
	h.stream(w, r, run, pipeline.SignalStages(), "signals")
}
