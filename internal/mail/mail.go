package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oscargavin/foremost-sub001/internal/dispatch"
)

// Content is the notification body the summary service hands to the
// dispatcher, re-read here when the job is delivered.
type Content struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client sends notifications through a Resend-style HTTP API. It satisfies
// dispatch.Sender.
type Client struct {
	httpClient *http.Client
	baseUrl    string
	apiKey     string
	from       string
	to         string
}

func NewClient(baseUrl, apiKey, from, to string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		apiKey:     apiKey,
		from:       from,
		to:         to,
	}
}

var _ dispatch.Sender = (*Client)(nil)

// Send delivers one notification payload. The provider deduplicates on the
// Idempotency-Key header, which is why a retried job must carry the same
// key on every attempt.
func (c *Client) Send(ctx context.Context, idempotencyKey string, payload json.RawMessage) error {
	var content Content
	if err := json.Unmarshal(payload, &content); err != nil {
		return err
	}

	body, err := json.Marshal(message{
		From:    c.from,
		To:      []string{c.to},
		Subject: content.Subject,
		HTML:    content.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dispatch.NewStatusError(resp.StatusCode, "mail provider answered %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
