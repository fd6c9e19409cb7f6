// Package ollama implements the reply shaper: it builds chat requests
// against an Ollama inference server from a user utterance plus caller
// options merged over a fixed low-latency preset, and trims the generated
// reply to fit a message-size budget.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/edgard/ollamabot/internal/config"
)

const chatPath = "/api/chat"

// systemInstruction directs the model toward short, direct answers so the
// reply fits a single Telegram message.
const systemInstruction = "Answer briefly, in no more than 6-8 sentences. " +
	"Use plain language and lead with the conclusion. " +
	"If it helps, use 3-5 short bullet points. " +
	"Never repeat the question back."

// Client defines the interface for reply generation.
type Client interface {
	// Reply sends userText to the model and returns the trimmed assistant
	// answer. Caller options override the preset key by key. Transport
	// failures are returned as *StatusError.
	Reply(ctx context.Context, model, userText string, options map[string]any) (string, error)
}

type httpClient struct {
	baseURL      string
	http         *http.Client
	log          *slog.Logger
	preset       map[string]any
	replyBudget  int
	softCutRatio float64
}

// NewClient creates a reply shaper from the Ollama configuration. The
// preset and system instruction are fixed at construction; the client
// holds no per-call state.
func NewClient(cfg config.OllamaConfig, log *slog.Logger) Client {
	if log == nil {
		log = slog.Default()
	}

	preset := map[string]any{
		"num_predict":    cfg.NumPredict,
		"num_ctx":        cfg.NumCtx,
		"temperature":    cfg.Temperature,
		"top_k":          cfg.TopK,
		"top_p":          cfg.TopP,
		"repeat_penalty": cfg.RepeatPenalty,
		"stop":           cfg.Stop,
	}

	return &httpClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log:          log.With("component", "ollama_client"),
		preset:       preset,
		replyBudget:  cfg.ReplyBudget,
		softCutRatio: cfg.SoftCutRatio,
	}
}

func (c *httpClient) Reply(ctx context.Context, model, userText string, options map[string]any) (string, error) {
	reqBody := chatRequest{
		Model:  model,
		Stream: false,
		Messages: []Message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: userText},
		},
		Options: mergeOptions(c.preset, options),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := c.baseURL + chatPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Connection errors, timeouts and cancellation all surface here.
		return "", &StatusError{Code: http.StatusBadGateway, Detail: err.Error()}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Detail: string(body)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &StatusError{Code: http.StatusBadGateway, Detail: fmt.Sprintf("failed to decode response: %v", err)}
	}

	content := strings.TrimSpace(parsed.Message.Content)
	c.log.DebugContext(ctx, "Received chat response",
		"model", parsed.Model,
		"done", parsed.Done,
		"content_len", len(content),
		"duration", time.Since(start))

	return Truncate(content, c.replyBudget, c.softCutRatio), nil
}

// mergeOptions overlays caller options on the preset, caller values winning
// on key collision. The inputs are never mutated.
func mergeOptions(preset, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(preset)+len(overrides))
	for k, v := range preset {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
