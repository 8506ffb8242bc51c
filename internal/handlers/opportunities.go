package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/internal/handlers/validator"
	"github.com/oscargavin/foremost-sub001/internal/pipeline"
)

type OpportunitiesRequest struct {
	Company  string `json:"company" validate:"required"`
	Industry string `json:"industry" validate:"required"`
	Goals    string `json:"goals"`
}

// Opportunities streams the opportunity-generation pipeline.
func (h *ServiceHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	var req OpportunitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid request body"})
		return
	}

	if err := validator.NewValidator().Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid opportunities request", Message: err.Error()})
		return
	}

	run := pipeline.NewRun(pipeline.PipelineOpportunities, map[string]string{
		"company":  req.Company,
		"industry": req.Industry,
		"goals":    req.Goals,
	})
	h.stream(w, r, run, pipeline.OpportunityStages(), "opportunities")
}
