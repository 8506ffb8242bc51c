package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the contract the pipelines call out to. Generate produces
// free-text content from an ordered conversation; GenerateGrounded
// additionally lets the model consult web search and report its sources.
type Client interface {
	Generate(ctx context.Context, msgs []Message, opts Options) (*Result, error)
	GenerateGrounded(ctx context.Context, msgs []Message, opts Options) (*Result, error)
}

// GeminiClient talks to a Gemini-style generateContent endpoint.
type GeminiClient struct {
	httpClient *http.Client
	baseUrl    string
	apiKey     string
	model      string
}

func NewGeminiClient(baseUrl, apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

var _ Client = (*GeminiClient)(nil)

func (c *GeminiClient) Generate(ctx context.Context, msgs []Message, opts Options) (*Result, error) {
	return c.generate(ctx, msgs, opts, false)
}

func (c *GeminiClient) GenerateGrounded(ctx context.Context, msgs []Message, opts Options) (*Result, error) {
	return c.generate(ctx, msgs, opts, true)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	Tools             []geminiTool           `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (c *GeminiClient) generate(ctx context.Context, msgs []Message, opts Options, grounded bool) (*Result, error) {
	req := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}

	for _, m := range msgs {
		switch m.Role {
		case "system":
			req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case "assistant":
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	if grounded {
		req.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseUrl, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewErrUpstreamTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewErrUpstream(resp.StatusCode, string(b))
	}

	var reply geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, NewErrUpstream(resp.StatusCode, fmt.Sprintf("malformed response: %s", err))
	}

	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return nil, NewErrUpstream(resp.StatusCode, "no candidates returned")
	}

	candidate := reply.Candidates[0]

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	result := &Result{Content: sb.String()}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			result.Sources = append(result.Sources, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}

	return result, nil
}
