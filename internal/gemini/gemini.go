package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/collection-tools/registrar/internal/providers"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	APIKey string
}

// New returns a new Gemini provider
func New(apiKey string) *Gemini {
	return &Gemini{APIKey: apiKey}
}

// Describe generates a description for the prompt and attached images using Gemini
func (g *Gemini) Describe(ctx context.Context, req providers.Request) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("gemini API key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))

	parts := make([]genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		// genai wants the bare subtype, not the full MIME type.
		parts = append(parts, genai.ImageData(strings.TrimPrefix(img.MIMEType, "image/"), img.Data))
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			return "", &providers.RateLimitError{Provider: "gemini", Status: gerr.Code}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
