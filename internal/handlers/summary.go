package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/internal/handlers/validator"
	"github.com/oscargavin/foremost-sub001/internal/service"
)

type SummaryRequest struct {
	Company string `json:"company" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Summary string `json:"summary" validate:"required"`
}

type summaryReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Summary accepts a finalize request, answers immediately and hands
// delivery to the background dispatcher. Whether the notification later
// lands is not observable by the caller.
func (h *ServiceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid request body"})
		return
	}

	if err := validator.NewValidator().Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorReply{Error: "invalid summary request", Message: err.Error()})
		return
	}

	job, err := h.summarySrv.Prepare(service.SummaryForm{
		Company: req.Company,
		Email:   req.Email,
		Summary: req.Summary,
	})
	if err != nil {
		var verr *service.ErrValidation
		if errors.As(err, &verr) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorReply{Error: "invalid summary request", Message: verr.Error()})
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorReply{Error: "failed to queue summary"})
		return
	}

	render.JSON(w, r, summaryReply{Success: true, Message: "Summary queued for delivery"})

	h.summarySrv.Dispatch(job)
}
