package handlers

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/pkg/version"
)

// Info reports the build version.
func (h *ServiceHandler) Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, version.Get())
}

// Health is the liveness probe.
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
