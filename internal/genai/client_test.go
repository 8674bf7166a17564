package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path   string
	apiKey string
	body   generateRequest
}

func reply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func newTestClient(t *testing.T, status int, response string) (*Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.apiKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Endpoint: srv.URL + "/",
		Model:    "gemini-test",
		APIKey:   "k-123",
		Timeout:  5 * time.Second,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return c, got
}

func TestNew_RequiresEndpointAndModel(t *testing.T) {
	_, err := New(Options{Model: "m"})
	require.Error(t, err)
	_, err = New(Options{Endpoint: "http://x"})
	require.Error(t, err)
}

func TestBringToLife_TextPrompt(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, reply("<!DOCTYPE html><p>gantt</p>"))

	out, err := c.BringToLife(context.Background(), "Gantt chart of 30 items", nil)
	require.NoError(t, err)

	assert.Equal(t, "<!DOCTYPE html><p>gantt</p>", out)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", got.path)
	assert.Equal(t, "k-123", got.apiKey)
	require.Len(t, got.body.Contents, 1)
	require.Len(t, got.body.Contents[0].Parts, 1)
	assert.Equal(t, "Gantt chart of 30 items", got.body.Contents[0].Parts[0].Text)
	require.NotNil(t, got.body.SystemInstruction)
	assert.Contains(t, got.body.SystemInstruction.Parts[0].Text, "bringing ideas to life")
	require.NotNil(t, got.body.GenerationConfig)
	assert.InDelta(t, 0.5, *got.body.GenerationConfig.Temperature, 1e-9)
}

func TestBringToLife_DefaultPrompt(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, reply("<html></html>"))

	_, err := c.BringToLife(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, got.body.Contents[0].Parts[0].Text)
}

func TestBringToLife_WithAttachment(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, reply("<html></html>"))
	img := []byte{0x89, 'P', 'N', 'G'}

	_, err := c.BringToLife(context.Background(), "make it a game", &Attachment{Data: img, MIMEType: "image/png"})
	require.NoError(t, err)

	parts := got.body.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "Analyze this image/document")
	assert.Contains(t, parts[0].Text, "USER INSTRUCTION: make it a game")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(img), parts[1].InlineData.Data)
}

func TestBringToLife_StripsFences(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, reply("```html\n<html></html>\n```"))

	out, err := c.BringToLife(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>\n", out)
}

func TestBringToLife_EmptyOutput(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"candidates":[]}`)

	out, err := c.BringToLife(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, FailedContent, out)
}

func TestBringToLife_APIError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)

	_, err := c.BringToLife(context.Background(), "x", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
	assert.Equal(t, "API key not valid", apiErr.Message)
}

func TestBringToLife_APIErrorPlainBody(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, "")

	_, err := c.BringToLife(context.Background(), "x", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestBringToLife_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, reply("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.BringToLife(ctx, "x", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRefine(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, reply("```\n<html>v2</html>```"))

	out, err := c.Refine(context.Background(), "<html>v1</html>", "make the title red")
	require.NoError(t, err)
	assert.Equal(t, "<html>v2</html>", out)

	parts := got.body.Contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "EXISTING CODE:\n<html>v1</html>", parts[1].Text)
	assert.Equal(t, "USER INSTRUCTION: make the title red", parts[2].Text)
	assert.Nil(t, got.body.GenerationConfig)
}

func TestRefine_EmptyOutputKeepsCurrent(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{}`)

	out, err := c.Refine(context.Background(), "<html>v1</html>", "noop")
	require.NoError(t, err)
	assert.Equal(t, "<html>v1</html>", out)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no fences", "<html></html>", "<html></html>"},
		{"html fence", "```html\n<html></html>```", "<html></html>"},
		{"bare fence", "```\n<p>x</p>\n```\n", "<p>x</p>\n"},
		{"leading only", "```html <b>x</b>", "<b>x</b>"},
		{"trailing only", "<b>x</b>```", "<b>x</b>"},
		{"inner fence kept", "<pre>```go```</pre>", "<pre>```go```</pre>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}
