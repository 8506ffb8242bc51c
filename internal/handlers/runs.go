package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/internal/store/model"
)

const maxRunsListed = 50

type runsReply struct {
	Runs []model.RunRecord `json:"runs"`
}

// RecentRuns lists the latest recorded pipeline runs.
func (h *ServiceHandler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxRunsListed {
		limit = maxRunsListed
	}

	runs, err := h.scanSrv.RecentRuns(r.Context(), limit)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorReply{Error: "failed to list runs"})
		return
	}

	render.JSON(w, r, runsReply{Runs: runs})
}
