package handlers

import (
	"github.com/oscargavin/foremost-sub001/internal/service"
)

// ServiceHandler holds the route handlers for the orchestration API.
type ServiceHandler struct {
	scanSrv    *service.ScanService
	summarySrv *service.SummaryService
}

func NewServiceHandler(scanService *service.ScanService, summaryService *service.SummaryService) *ServiceHandler {
	return &ServiceHandler{
		scanSrv:    scanService,
		summarySrv: summaryService,
	}
}

type errorReply struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
