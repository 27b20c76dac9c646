package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shamank/zg-compute-go/pkg/model"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a non-JSON body is quoted in an error.
const maxErrorBody = 256

// Completer sends one chat-completion request.
type Completer interface {
	Complete(ctx context.Context, endpoint, model, content string, headers map[string]string) (*model.ChatCompletionResponse, error)
}

// Client is an HTTP client for the OpenAI-compatible chat-completions route
// exposed by a provider's serving proxy.
type Client struct {
	// HTTP is the underlying client. Its Timeout bounds each request.
	HTTP *http.Client
}

var _ Completer = (*Client)(nil)

// NewClient returns a Client whose requests time out after timeout.
// A non-positive timeout disables the client-side limit.
func NewClient(timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Complete POSTs content as a single system message to
// "<endpoint>/chat/completions". headers are copied onto the request
// verbatim.
//
// The body is decoded whatever the status code, so a provider error such as
// {"error": "..."} on a 4xx is returned as a response rather than an error.
// Transport failures and bodies that are not JSON are returned as errors; the
// latter carry the HTTP status.
func (c *Client) Complete(ctx context.Context, endpoint, modelName, content string, headers map[string]string) (*model.ChatCompletionResponse, error) {
	body, err := json.Marshal(model.ChatCompletionRequest{
		Messages: []model.ChatMessage{{Role: model.RoleSystem, Content: content}},
		Model:    modelName,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			zap.L().Debug("failed to close chat completion response", zap.Error(cerr))
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat completion response (status %d): %w", resp.StatusCode, err)
	}

	var out model.ChatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode chat completion response (status %d): %q: %w",
			resp.StatusCode, truncate(raw, maxErrorBody), err)
	}
	zap.L().Debug("chat completion response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("choices", len(out.Choices)))
	return &out, nil
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
