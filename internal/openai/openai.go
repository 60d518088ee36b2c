package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/collection-tools/registrar/internal/providers"
)

// DefaultURL is the OpenAI chat completions endpoint.
const DefaultURL = "https://api.openai.com/v1/chat/completions"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	APIKey string
	URL    string

	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey string) *OpenAI {
	return &OpenAI{
		APIKey: apiKey,
		URL:    DefaultURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Describe generates a description for the prompt and attached images using OpenAI
func (o *OpenAI) Describe(ctx context.Context, req providers.Request) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("openai API key is not set")
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": req.Prompt,
		},
	}
	for _, img := range req.Images {
		base64Image := base64.StdEncoding.EncodeToString(img.Data)
		content = append(content, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64Image),
			},
		})
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": req.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
		"temperature": req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.URL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &providers.RateLimitError{Provider: "openai", Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
