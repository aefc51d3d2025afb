package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"ColdMailer/internal/config"
	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// GeminiModel implements ports.Model on top of the Gemini SDK.
type GeminiModel struct {
	client       *genai.Client
	model        string
	instructions string
}

var _ ports.Model = (*GeminiModel)(nil)

// NewGeminiModel creates the SDK client; the API key is mandatory.
func NewGeminiModel(ctx context.Context, cfg config.ModelConfig) (*GeminiModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiModel{
		client:       client,
		model:        strings.TrimSpace(cfg.Model),
		instructions: strings.TrimSpace(cfg.Instructions),
	}, nil
}

// Generate runs one synchronous content generation.
func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{CandidateCount: 1}
	if g.instructions != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(g.instructions, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", classifyErr(err)
	}

	return resp.Text(), nil
}

// classifyErr marks overload signals as transient. The SDK reports a 503 code
// for most of them, but the overload hint sometimes only shows up in the text.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusServiceUnavailable {
		return &domain.TransientError{Err: err}
	}
	if domain.IsOverloadSignal(err.Error()) {
		return &domain.TransientError{Err: err}
	}
	return err
}
