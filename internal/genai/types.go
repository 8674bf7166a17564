package genai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const systemInstruction = `You are an expert AI Engineer and Product Designer specializing in "bringing ideas to life".
Your goal is to take a user request, which might be a text description, a simple sketch, or a photo, and instantly generate a fully functional, interactive, single-page HTML/JS/CSS application.

CORE DIRECTIVES:
1. Analyze & Abstract:
    - Images: Detect buttons, inputs, and layout. Turn sketches into modern UIs. Gamify mundane objects.
    - Text: Interpret requirements (e.g. "Gantt Chart", "Kanban Board", "Calculator") and build a robust implementation.
    - Data: If the user asks for specific data (e.g. "30 items"), ensure the app initializes with that data.
2. NO EXTERNAL IMAGES: Do NOT use <img src="..."> with external URLs. Use CSS shapes, inline SVGs, emojis, or CSS gradients instead.
3. Make it Interactive: The output MUST NOT be static. It needs buttons, sliders, drag-and-drop, or dynamic visualizations.
4. Self-Contained: The output must be a single HTML file with embedded CSS and JavaScript. Tailwind via CDN is allowed.
5. Robust & Creative: If the input is messy or ambiguous, generate a best-guess creative interpretation. Never return an error.

RESPONSE FORMAT:
Return ONLY the raw HTML code. Do not wrap it in markdown code blocks. Start immediately with <!DOCTYPE html>.`

const (
	refinePreamble    = "You are an expert web developer. The user wants to modify an existing HTML application. You must return the FULL updated HTML code. Do not return partial code. Do not wrap in markdown."
	refineInstruction = "Return ONLY the raw HTML code. Do not wrap it in markdown code blocks."
)

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text concatenates the text parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Status     string // API status string, e.g. "INVALID_ARGUMENT"
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("genai: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: %d: %s", e.StatusCode, e.Message)
}

func newAPIError(code int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	e := &APIError{StatusCode: code}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		e.Message = payload.Error.Message
		e.Status = payload.Error.Status
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(code)
	}
	return e
}

// StripFences removes a markdown code fence the model may wrap around HTML
// despite being told not to.
func StripFences(text string) string {
	text = strings.TrimLeft(text, " \t\r\n")
	if rest, ok := strings.CutPrefix(text, "```html"); ok {
		text = strings.TrimLeft(rest, " \t\r\n")
	} else if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = strings.TrimLeft(rest, " \t\r\n")
	}
	trimmed := strings.TrimRight(text, " \t\r\n")
	if rest, ok := strings.CutSuffix(trimmed, "```"); ok {
		return rest
	}
	return text
}
