// Package ai provides the Gemini-backed lead summarizer. The transport step
// (model call) and the parse step (response validation) fail with distinct
// errors so outages and malformed output are observable separately, even
// though the worker maps both to the same fallback payload.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// ErrTransport marks a failed or timed-out model call.
var ErrTransport = errors.New("ai transport failure")

// ErrMalformed marks a model response that could not be parsed or validated.
var ErrMalformed = errors.New("ai response malformed")

// Summary is the structured enrichment payload the model must return.
type Summary struct {
	Summary    string `json:"summary"`
	NextAction string `json:"next_action"`
}

// Client calls the Gemini API to summarize a lead.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a Gemini summarizer client.
func NewClient(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		genai:   client,
		model:   cfg.GetGeminiModel(),
		timeout: cfg.GetAITimeout(),
		log:     log.WithComponent("gemini-summarizer"),
	}, nil
}

// Summarize generates a professional summary and next sales action for a
// lead. Every call carries an explicit timeout; a timeout is a transport
// failure, not a distinct error.
func (c *Client) Summarize(ctx context.Context, name, email string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(buildPrompt(name, email)), nil)
	if err != nil {
		c.log.Warn("model call failed", "model", c.model, "error", err)
		return Summary{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	summary, err := ParseSummary(resp.Text())
	if err != nil {
		c.log.Warn("model response rejected", "model", c.model, "error", err)
		return Summary{}, err
	}

	return summary, nil
}

// ParseSummary validates the raw model output. Models sometimes wrap the JSON
// in markdown code fences despite instructions, so fences are stripped before
// decoding.
func ParseSummary(text string) (Summary, error) {
	clean := stripCodeFences(text)

	var summary Summary
	if err := json.Unmarshal([]byte(clean), &summary); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if strings.TrimSpace(summary.Summary) == "" || strings.TrimSpace(summary.NextAction) == "" {
		return Summary{}, fmt.Errorf("%w: missing summary or next_action", ErrMalformed)
	}

	return summary, nil
}

func buildPrompt(name, email string) string {
	return fmt.Sprintf(`You are an expert CRM sales assistant. Analyze the following lead:
Name: %s
Email: %s

Generate a professional summary and suggest a next sales action.

IMPORTANT: Your response must be EXCLUSIVELY a valid JSON object with this exact structure, with no extra text and no markdown code blocks:
{
  "summary": "The profile summary here...",
  "next_action": "The suggested action here..."
}`, name, email)
}

func stripCodeFences(text string) string {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}
