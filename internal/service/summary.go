package service

import (
	"fmt"
	"html"
	"time"

	"github.com/oscargavin/foremost-sub001/internal/dispatch"
	"github.com/oscargavin/foremost-sub001/internal/mail"
	"go.uber.org/zap"
)

// SummaryForm is the validated finalize request.
type SummaryForm struct {
	Company string
	Email   string
	Summary string
}

// SummaryService turns a finalize request into a dispatch job. Preparation
// happens before the caller's response goes out, dispatch after, so a
// payload that cannot even marshal still surfaces as a request error while
// delivery failures never reach the response path.
type SummaryService struct {
	dispatcher *dispatch.Dispatcher
	clock      func() time.Time
}

type SummaryOption func(*SummaryService)

func WithSummaryClock(clock func() time.Time) SummaryOption {
	return func(s *SummaryService) {
		s.clock = clock
	}
}

func NewSummaryService(dispatcher *dispatch.Dispatcher, opts ...SummaryOption) *SummaryService {
	s := &SummaryService{dispatcher: dispatcher, clock: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Prepare builds the notification job for form.
func (s *SummaryService) Prepare(form SummaryForm) (*dispatch.Job, error) {
	if form.Company == "" || form.Summary == "" {
		return nil, NewErrValidation("company and summary are required")
	}

	content := mail.Content{
		Subject: fmt.Sprintf("New analysis summary for %s", form.Company),
		HTML:    renderSummaryHTML(form),
	}
	return dispatch.NewJob(content, s.clock())
}

// Dispatch hands the prepared job to the background dispatcher.
func (s *SummaryService) Dispatch(job *dispatch.Job) {
	zap.S().Named("summary_service").Infow("summary queued", "idempotency_key", job.IdempotencyKey)
	s.dispatcher.Enqueue(job)
}

func renderSummaryHTML(form SummaryForm) string {
	return fmt.Sprintf(
		"<h2>Analysis summary</h2><p><strong>Company:</strong> %s</p><p><strong>Contact:</strong> %s</p><p>%s</p>",
		html.EscapeString(form.Company),
		html.EscapeString(form.Email),
		html.EscapeString(form.Summary),
	)
}
