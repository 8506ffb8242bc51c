package pipeline

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/oscargavin/foremost-sub001/internal/events"
	"github.com/oscargavin/foremost-sub001/internal/generate"
	"github.com/oscargavin/foremost-sub001/pkg/metrics"
	"go.uber.org/zap"
)

// snippetLimit caps the prompt/response previews pushed to the client.
const snippetLimit = 280

// Request is what a stage wants sent to the content collaborator.
type Request struct {
	Messages []generate.Message
	Options  generate.Options
	Grounded bool
}

// Stage is one step of a pipeline. BuildRequest sees everything previous
// stages merged into the run; Parse turns the raw completion into the
// stage's typed output.
type Stage struct {
	Name         string
	Description  string
	BuildRequest func(run *Run) (Request, error)
	Parse        func(run *Run, content string, sources []generate.Source) (interface{}, error)
}

// Run is the accumulated context of one pipeline execution. It lives for a
// single request and is never shared between requests.
type Run struct {
	Pipeline string
	Input    map[string]string

	results map[string]interface{}
}

func NewRun(pipeline string, input map[string]string) *Run {
	return &Run{
		Pipeline: pipeline,
		Input:    input,
		results:  make(map[string]interface{}),
	}
}

// RequireInput fetches a mandatory input field.
func (r *Run) RequireInput(field string) (string, error) {
	v, ok := r.Input[field]
	if !ok || v == "" {
		return "", NewErrMissingInput(field)
	}
	return v, nil
}

// Result returns the output a previous stage merged into the run.
func (r *Run) Result(stage string) (interface{}, bool) {
	v, ok := r.results[stage]
	return v, ok
}

func (r *Run) setResult(stage string, v interface{}) {
	r.results[stage] = v
}

// Results returns all stage outputs keyed by stage name, used as the
// payload of the terminal complete event.
func (r *Run) Results() map[string]interface{} {
	out := make(map[string]interface{}, len(r.results))
	for k, v := range r.results {
		out[k] = v
	}
	return out
}

// Engine sequences the stages of a run against the content collaborator.
type Engine struct {
	client generate.Client
}

func NewEngine(client generate.Client) *Engine {
	return &Engine{client: client}
}

// Execute walks the stages in order, pushing one stage_update, one
// prompt_snippet and one response_snippet per stage, and finishes the
// stream with exactly one complete or error frame. The first failing stage
// aborts the rest. A closed stream or cancelled context aborts silently:
// there is nobody left to send an error frame to.
func (e *Engine) Execute(ctx context.Context, run *Run, stages []Stage, emitter *events.Emitter) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			zap.S().Named("pipeline").Debugw("run cancelled", "pipeline", run.Pipeline, "stage", stage.Name)
			return err
		}

		if err := emitter.Send(events.StageUpdate(stage.Name, stage.Description)); err != nil {
			return err
		}

		req, err := stage.BuildRequest(run)
		if err != nil {
			return e.fail(run, stage.Name, emitter, err)
		}

		if err := emitter.Send(events.PromptSnippet(stage.Name, snippet(lastUserMessage(req.Messages)))); err != nil {
			return err
		}

		start := time.Now()
		var result *generate.Result
		if req.Grounded {
			result, err = e.client.GenerateGrounded(ctx, req.Messages, req.Options)
		} else {
			result, err = e.client.Generate(ctx, req.Messages, req.Options)
		}
		if err != nil {
			// A disconnect mid-call surfaces as a request error too;
			// only report failures the client is still around to see.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return e.fail(run, stage.Name, emitter, err)
		}
		metrics.ObservePipelineStageDurationMetric(run.Pipeline, stage.Name, time.Since(start).Seconds())

		if err := emitter.Send(events.ResponseSnippet(stage.Name, snippet(result.Content))); err != nil {
			return err
		}

		out, err := stage.Parse(run, result.Content, result.Sources)
		if err != nil {
			return e.fail(run, stage.Name, emitter, err)
		}
		run.setResult(stage.Name, out)
	}

	metrics.IncreasePipelineRunsTotalMetric(run.Pipeline, "complete")
	return emitter.Send(events.Complete(run.Results()))
}

func (e *Engine) fail(run *Run, stage string, emitter *events.Emitter, err error) error {
	metrics.IncreasePipelineRunsTotalMetric(run.Pipeline, "error")
	zap.S().Named("pipeline").Errorw("stage failed", "pipeline", run.Pipeline, "stage", stage, "error", err)

	_ = emitter.Send(events.Error(err))
	return err
}

func lastUserMessage(msgs []generate.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	if len(msgs) > 0 {
		return msgs[len(msgs)-1].Content
	}
	return ""
}

func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}

	// Back up to a rune boundary so the cut never produces an invalid
	// UTF-8 sequence in the frame.
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
