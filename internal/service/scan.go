package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oscargavin/foremost-sub001/internal/events"
	"github.com/oscargavin/foremost-sub001/internal/pipeline"
	"github.com/oscargavin/foremost-sub001/internal/store"
	"github.com/oscargavin/foremost-sub001/internal/store/model"
	"go.uber.org/zap"
)

// ScanService runs the analysis pipelines and records each finished run in
// the history store.
type ScanService struct {
	engine *pipeline.Engine
	store  store.Store
}

func NewScanService(engine *pipeline.Engine, store store.Store) *ScanService {
	return &ScanService{engine: engine, store: store}
}

// Stream executes the stages for run against emitter and records the
// outcome once the stream has terminated. The record is best effort;
// history must never affect the stream itself.
func (s *ScanService) Stream(ctx context.Context, run *pipeline.Run, stages []pipeline.Stage, emitter *events.Emitter, clientKey string) {
	start := time.Now()
	err := s.engine.Execute(ctx, run, stages, emitter)

	rec := model.RunRecord{
		ID:         uuid.New().String(),
		Pipeline:   run.Pipeline,
		ClientKey:  clientKey,
		Status:     "complete",
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now(),
	}
	switch {
	case err == nil:
	case errors.Is(err, events.ErrStreamClosed), errors.Is(err, context.Canceled):
		rec.Status = "cancelled"
	default:
		rec.Status = "error"
		rec.Error = err.Error()
	}

	if err := s.store.Run().Create(context.Background(), rec); err != nil {
		zap.S().Named("scan_service").Warnw("failed to record run", "pipeline", run.Pipeline, "error", err)
	}
}

// RecentRuns lists the latest recorded runs, newest first.
func (s *ScanService) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return s.store.Run().List(ctx, limit)
}
