// internal/engine/openai.go
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"csv-chat/internal/common/config"
	apperrors "csv-chat/internal/common/errors"
	"csv-chat/internal/common/httpclient"
	"csv-chat/internal/common/logger"
	"csv-chat/internal/dataset"
)

// OpenAIEngine implements Engine against an OpenAI-compatible
// chat-completions API.
type OpenAIEngine struct {
	cfg    config.EngineConfig
	client *httpclient.Client
	log    logger.Logger
}

// NewOpenAI creates an engine backed by the configured hosted model.
func NewOpenAI(cfg config.EngineConfig, log logger.Logger) *OpenAIEngine {
	return &OpenAIEngine{
		cfg: cfg,
		// Client timeout stays generous; per-call deadlines come from ctx.
		client: httpclient.NewClient(2 * config.GetDuration(cfg.Timeout)),
		log: log.With(map[string]interface{}{
			"component": "engine",
			"model":     cfg.Model,
		}),
	}
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the chat-completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Ask forwards the dataset and question to the hosted model and normalizes
// the answer. One shot: no retries, no fallback engine.
func (e *OpenAIEngine) Ask(ctx context.Context, ds *dataset.Dataset, question string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(e.cfg.Timeout))
	defer cancel()

	e.log.Info("asking engine", map[string]interface{}{
		"dataset":  ds.Name,
		"rows":     ds.RowCount(),
		"question": truncate(question, 120),
	})

	answer, err := e.callChatCompletions(ctx, BuildPrompt(ds, e.cfg.MaxPromptRows), question)
	if err != nil {
		return nil, err
	}

	result, err := ParseAnswer(answer)
	if err != nil {
		e.log.Error("engine answer rejected", map[string]interface{}{
			"error":  err.Error(),
			"answer": truncate(answer, 200),
		})
		return nil, err
	}

	e.log.Info("engine answered", map[string]interface{}{"kind": result.Kind})
	return result, nil
}

func (e *OpenAIEngine) callChatCompletions(ctx context.Context, systemPrompt, question string) (string, error) {
	reqBody := chatRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.NewEngineUnavailableError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewEngineUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewEngineTimeoutError()
		}
		return "", apperrors.NewEngineUnavailableError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewEngineUnavailableError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.NewEngineAuthFailedError(apiErrorDetail(respBody, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.NewEngineRateLimitedError(apiErrorDetail(respBody, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", apperrors.NewEngineUnavailableError(
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", apperrors.NewEngineBadAnswerError(fmt.Sprintf("decode response: %s", err.Error()))
	}
	if chatResp.Error != nil {
		return "", apperrors.NewEngineUnavailableError(
			fmt.Errorf("%s: %s", chatResp.Error.Type, chatResp.Error.Message))
	}
	if len(chatResp.Choices) == 0 {
		return "", apperrors.NewEngineBadAnswerError("empty choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// apiErrorDetail extracts the provider error message for logging/surfacing.
func apiErrorDetail(body []byte, status int) string {
	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err == nil && chatResp.Error != nil {
		return chatResp.Error.Message
	}
	return fmt.Sprintf("status %d", status)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
