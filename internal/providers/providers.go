package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImagePart is one image attached to a request.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

// Request represents one description request to an AI provider.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	Images      []ImagePart
}

// Provider defines the interface for a multimodal AI provider.
type Provider interface {
	Describe(ctx context.Context, req Request) (string, error)
}

// RateLimitError signals that the provider asked us to slow down. Callers
// back off and retry instead of counting the call as failed.
type RateLimitError struct {
	Provider string
	Status   int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited the request (status %d)", e.Provider, e.Status)
}

// LoadImages reads image files into request parts. The MIME type follows
// the file extension.
func LoadImages(paths []string) ([]ImagePart, error) {
	parts := make([]ImagePart, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", p, err)
		}
		parts = append(parts, ImagePart{MIMEType: MIMEType(p), Data: data})
	}
	return parts, nil
}

// MIMEType maps an image file name to its MIME type. Anything that is not
// PNG is treated as JPEG, matching the formats the pipeline collects.
func MIMEType(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
