package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/oscargavin/foremost-sub001/internal/generate"
)

const PipelineSignals = "signals"

type Signal struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Kind     string `json:"kind"`
}

type SignalScan struct {
	Signals []Signal          `json:"signals"`
	Sources []generate.Source `json:"sources,omitempty"`
}

type Trend struct {
	Name       string `json:"name"`
	Direction  string `json:"direction"`
	Confidence string `json:"confidence"`
	Evidence   string `json:"evidence"`
}

type TrendAnalysis struct {
	Trends []Trend `json:"trends"`
}

type Recommendation struct {
	Action  string `json:"action"`
	Why     string `json:"why"`
	Urgency string `json:"urgency"`
}

type Recommendations struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// SignalStages researches recent market signals for an industry, distills
// trends out of them and turns the trends into recommended actions.
func SignalStages() []Stage {
	return []Stage{
		{
			Name:        "signal_scan",
			Description: "Scanning for recent market signals",
			BuildRequest: func(run *Run) (Request, error) {
				industry, err := run.RequireInput("industry")
				if err != nil {
					return Request{}, err
				}
				focus := run.Input["focus"]
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Find recent AI-related market signals (funding, launches, regulation) in the %s industry, focus %q. Respond with: {"signals": [{"headline": string, "summary": string, "kind": string}]}.`, industry, focus)},
					},
					Options:  generate.Options{Temperature: 0.3, MaxTokens: 4096},
					Grounded: true,
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var scan SignalScan
				if err := ParseJSON("signal_scan", content, &scan); err != nil {
					return nil, err
				}
				scan.Sources = sources
				return scan, nil
			},
		},
		{
			Name:        "trend_analysis",
			Description: "Distilling trends from the signals",
			BuildRequest: func(run *Run) (Request, error) {
				scan, ok := run.Result("signal_scan")
				if !ok {
					return Request{}, NewErrMissingInput("signal_scan")
				}
				context, err := json.Marshal(scan)
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Signals: %s. Distill 2-4 trends. Respond with: {"trends": [{"name": string, "direction": string, "confidence": string, "evidence": string}]}.`, context)},
					},
					Options: generate.Options{Temperature: 0.4, MaxTokens: 2048},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var analysis TrendAnalysis
				if err := ParseJSON("trend_analysis", content, &analysis); err != nil {
					return nil, err
				}
				return analysis, nil
			},
		},
		{
			Name:        "recommendations",
			Description: "Turning trends into recommended actions",
			BuildRequest: func(run *Run) (Request, error) {
				trends, ok := run.Result("trend_analysis")
				if !ok {
					return Request{}, NewErrMissingInput("trend_analysis")
				}
				context, err := json.Marshal(trends)
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Trends: %s. Recommend actions a mid-size company should take. Respond with: {"recommendations": [{"action": string, "why": string, "urgency": string}]}.`, context)},
					},
					Options: generate.Options{Temperature: 0.5, MaxTokens: 2048},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var recs Recommendations
				if err := ParseJSON("recommendations", content, &recs); err != nil {
					return nil, err
				}
				return recs, nil
			},
		},
	}
}
