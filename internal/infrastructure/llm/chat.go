package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ColdMailer/internal/config"
	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// ChatModel implements ports.Model backed by OpenAI-compatible chat completion APIs.
type ChatModel struct {
	endpoint     string
	model        string
	apiKey       string
	instructions string
	httpClient   *http.Client
}

var _ ports.Model = (*ChatModel)(nil)

// NewChatModel builds a client from configuration.
func NewChatModel(cfg config.ModelConfig) *ChatModel {
	return &ChatModel{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		instructions: cfg.Instructions,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate posts the prompt as a user message and returns the first choice.
func (c *ChatModel) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chat model is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat model misconfigured")
	}

	messages := make([]map[string]string, 0, 2)
	if instr := strings.TrimSpace(c.instructions); instr != "" {
		messages = append(messages, map[string]string{"role": "system", "content": instr})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body, err := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		if resp.StatusCode == http.StatusServiceUnavailable || domain.IsOverloadSignal(apiErr.Error()) {
			return "", &domain.TransientError{Err: apiErr}
		}
		return "", apiErr
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}

	return decoded.Choices[0].Message.Content, nil
}
