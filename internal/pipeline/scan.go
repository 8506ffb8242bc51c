package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/oscargavin/foremost-sub001/internal/generate"
)

const PipelineScan = "scan"

// CompanyProfile is the first-stage output of the company scan.
type CompanyProfile struct {
	Name     string            `json:"name"`
	Industry string            `json:"industry"`
	Summary  string            `json:"summary"`
	Products []string          `json:"products"`
	Sources  []generate.Source `json:"sources,omitempty"`
}

type Challenge struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Area   string `json:"area"`
}

type ChallengeAnalysis struct {
	Challenges []Challenge `json:"challenges"`
}

type Opportunity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort,omitempty"`
}

type OpportunityReport struct {
	Opportunities []Opportunity `json:"opportunities"`
}

const scanSystemPrompt = "You are an AI transformation analyst. Answer with a single JSON object and nothing else. No prose around the JSON."

// ScanStages is the company scan pipeline: profile the company from its
// website, surface its operational challenges, then map those challenges to
// concrete AI opportunities.
func ScanStages() []Stage {
	return []Stage{
		{
			Name:        "company_profile",
			Description: "Researching the company and its market",
			BuildRequest: func(run *Run) (Request, error) {
				url, err := run.RequireInput("url")
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Research the company behind %s. Respond with: {"name": string, "industry": string, "summary": string, "products": [string]}.`, url)},
					},
					Options:  generate.Options{Temperature: 0.3, MaxTokens: 2048},
					Grounded: true,
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var profile CompanyProfile
				if err := ParseJSON("company_profile", content, &profile); err != nil {
					return nil, err
				}
				profile.Sources = sources
				return profile, nil
			},
		},
		{
			Name:        "challenge_analysis",
			Description: "Identifying operational challenges",
			BuildRequest: func(run *Run) (Request, error) {
				profile, ok := run.Result("company_profile")
				if !ok {
					return Request{}, NewErrMissingInput("company_profile")
				}
				context, err := json.Marshal(profile)
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Company profile: %s. List the 3-5 biggest operational challenges this company likely faces. Respond with: {"challenges": [{"title": string, "detail": string, "area": string}]}.`, context)},
					},
					Options: generate.Options{Temperature: 0.5, MaxTokens: 2048},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var analysis ChallengeAnalysis
				if err := ParseJSON("challenge_analysis", content, &analysis); err != nil {
					return nil, err
				}
				return analysis, nil
			},
		},
		{
			Name:        "ai_opportunities",
			Description: "Mapping challenges to AI opportunities",
			BuildRequest: func(run *Run) (Request, error) {
				profile, ok := run.Result("company_profile")
				if !ok {
					return Request{}, NewErrMissingInput("company_profile")
				}
				challenges, ok := run.Result("challenge_analysis")
				if !ok {
					return Request{}, NewErrMissingInput("challenge_analysis")
				}
				context, err := json.Marshal(map[string]interface{}{"profile": profile, "challenges": challenges})
				if err != nil {
					return Request{}, err
				}
				return Request{
					Messages: []generate.Message{
						{Role: "system", Content: scanSystemPrompt},
						{Role: "user", Content: fmt.Sprintf(
							`Context: %s. For each challenge, propose one concrete AI opportunity. Respond with: {"opportunities": [{"title": string, "description": string, "impact": string, "effort": string}]}.`, context)},
					},
					Options: generate.Options{Temperature: 0.6, MaxTokens: 4096},
				}, nil
			},
			Parse: func(run *Run, content string, sources []generate.Source) (interface{}, error) {
				var report OpportunityReport
				if err := ParseJSON("ai_opportunities", content, &report); err != nil {
					return nil, err
				}
				return report, nil
			},
		},
	}
}
