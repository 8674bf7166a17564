// Package genai turns prompts and sketches into self-contained HTML apps by
// calling the Gemini generateContent REST endpoint.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// FailedContent is returned by BringToLife when the model produced no text.
	FailedContent = "<!-- Failed to generate content -->"

	// DefaultPrompt is used when neither a prompt nor an attachment is given.
	DefaultPrompt = "Create a demo app that shows off your capabilities."

	defaultTemperature = 0.5
)

// Attachment is an image or document sent alongside the prompt.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Options configures a Client.
type Options struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client // overrides Timeout when set
	Logger      zerolog.Logger
}

// Client talks to the generateContent API.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	http        *http.Client
	log         zerolog.Logger
}

// New builds a Client. Endpoint and Model are required.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("genai: endpoint is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("genai: model is required")
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		endpoint:    strings.TrimRight(opts.Endpoint, "/"),
		model:       opts.Model,
		apiKey:      opts.APIKey,
		temperature: opts.Temperature,
		http:        hc,
		log:         opts.Logger.With().Str("component", "genai").Logger(),
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// BringToLife generates a single-file HTML app from a text prompt, an
// attachment, or both.
func (c *Client) BringToLife(ctx context.Context, prompt string, att *Attachment) (string, error) {
	parts := []part{{Text: buildPrompt(prompt, att)}}
	if att != nil && len(att.Data) > 0 && att.MIMEType != "" {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: att.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(att.Data),
		}})
	}

	temp := c.temperature
	text, err := c.generate(ctx, generateRequest{
		Contents:          []content{{Role: "user", Parts: parts}},
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		GenerationConfig:  &generationConfig{Temperature: &temp},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return FailedContent, nil
	}
	return StripFences(text), nil
}

// Refine asks the model to apply instruction to currentHTML and returns the
// full updated document. An empty reply leaves currentHTML unchanged.
func (c *Client) Refine(ctx context.Context, currentHTML, instruction string) (string, error) {
	text, err := c.generate(ctx, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{
			{Text: refinePreamble},
			{Text: "EXISTING CODE:\n" + currentHTML},
			{Text: "USER INSTRUCTION: " + instruction},
		}}},
		SystemInstruction: &content{Parts: []part{{Text: refineInstruction}}},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return currentHTML, nil
	}
	return StripFences(text), nil
}

func buildPrompt(prompt string, att *Attachment) string {
	if att == nil || len(att.Data) == 0 {
		if prompt == "" {
			return DefaultPrompt
		}
		return prompt
	}

	var b strings.Builder
	b.WriteString("Analyze this image/document. Detect what functionality is implied.\n")
	if prompt != "" {
		b.WriteString("USER INSTRUCTION: " + prompt + "\n")
	}
	b.WriteString("If it is a real-world object (like a desk), gamify it. Build a fully interactive web app.\n")
	b.WriteString("IMPORTANT: Do NOT use external image URLs. Recreate the visuals using CSS, SVGs, or Emojis.")
	return b.String()
}

func (c *Client) generate(ctx context.Context, body generateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug().
		Str("model", c.model).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("generateContent")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp.StatusCode, data)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.text(), nil
}
