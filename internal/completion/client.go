package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/metrics"
	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.Completer = (*Client)(nil)

const maxErrorBody = 500

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a Client. A zero timeout disables the client-side deadline.
func New(baseURL, modelName string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Error is a non-2xx reply from the completion endpoint.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends req and returns the first choice.
func (c *Client) Complete(ctx context.Context, req model.CompletionRequest) (model.CompletionResult, error) {
	start := time.Now()
	result, err := c.complete(ctx, req)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Completions.WithLabelValues("error").Inc()
		return model.CompletionResult{}, err
	}
	metrics.Completions.WithLabelValues("ok").Inc()
	return result, nil
}

func (c *Client) complete(ctx context.Context, req model.CompletionRequest) (model.CompletionResult, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.CompletionResult{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return model.CompletionResult{}, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Completion client: request failed",
			"model", c.model,
			"error", err.Error())
		return model.CompletionResult{}, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp)
		c.logger.Warn("Completion client: upstream rejected request",
			"model", c.model,
			"status", resp.StatusCode,
			"message", apiErr.Message)
		return model.CompletionResult{}, apiErr
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return model.CompletionResult{}, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return model.CompletionResult{}, fmt.Errorf("completion response has no choices")
	}

	modelName := chatResp.Model
	if modelName == "" {
		modelName = c.model
	}

	return model.CompletionResult{
		Content: chatResp.Choices[0].Message.Content,
		Model:   modelName,
	}, nil
}

// parseError prefers the upstream error.message and falls back to the status line.
func parseError(resp *http.Response) *Error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &Error{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return &Error{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody] + "..."
	}
	return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s (raw: %s)", resp.Status, raw)}
}
