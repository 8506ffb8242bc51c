package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/oscargavin/foremost-sub001/internal/generate"
)

const PipelineOpportunities = "opportunities"

type CompanyContext struct {
	Positioning string            `json:"positioning"`
	Competitors []string          `json:"competitors"`
	Maturity    string            `json:"maturity"`
	Sources     []generate.Source `json:"sources,omitempty"`
}

type ImpactAssessment struct {
	Ranked []RankedOpportunity `json:"ranked"`
}

type RankedOpportunity struct {
	Title     string `json:"title"`
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// OpportunityStages generates AI opportunities for a company described by
// name, industry and goals rather than scanned from a URL.
func OpportunityStages() []Stage {
	return []Stage{
		{
			Name:        "company_context",
			Description: "Building company and market context",
			BuildRequest: func(run *Run) (Request, error) {
				company, err := run.RequireInput("company")
				if err != nil {
					return Request{}, err
				}
				industry, err := run.RequireInput("industry")
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Describe the market position of %s in the %s industry. Respond with: {"positioning": string, "competitors": [string], "maturity": string}.`, company, industry)},
					},
					Options:  generate.Options{Temperature: 0.3, MaxTokens: 2048},
					Grounded: true,
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var cc CompanyContext
				if err := ParseJSON("company_context", content, &cc); err != nil {
					return nil, err
				}
				cc.Sources = sources
				return cc, nil
			},
		},
		{
			Name:        "opportunity_generation",
			Description: "Generating tailored AI opportunities",
			BuildRequest: func(run *Run) (Request, error) {
				cc, ok := run.Result("company_context")
				if !ok {
					return Request{}, NewErrMissingInput("company_context")
				}
				context, err := json.Marshal(cc)
				if err != nil {
					return Request{}, err
				}
				goals := run.Input["goals"]
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Market context: %s. Stated goals: %q. Propose 4-6 AI opportunities aligned with the goals. Respond with: {"opportunities": [{"title": string, "description": string, "impact": string, "effort": string}]}.`, context, goals)},
					},
					Options: generate.Options{Temperature: 0.6, MaxTokens: 4096},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var report OpportunityReport
				if err := ParseJSON("opportunity_generation", content, &report); err != nil {
					return nil, err
				}
				return report, nil
			},
		},
		{
			Name:        "impact_assessment",
			Description: "Ranking opportunities by expected impact",
			BuildRequest: func(run *Run) (Request, error) {
				report, ok := run.Result("opportunity_generation")
				if !ok {
					return Request{}, NewErrMissingInput("opportunity_generation")
				}
				context, err := json.Marshal(report)
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Opportunities: %s. Rank them by impact over effort, score 1-100. Respond with: {"ranked": [{"title": string, "score": number, "rationale": string}]}.`, context)},
					},
					Options: generate.Options{Temperature: 0.4, MaxTokens: 2048},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var assessment ImpactAssessment
				if err := ParseJSON("impact_assessment", content, &assessment); err != nil {
					return nil, err
				}
				return assessment, nil
			},
		},
	}
}
