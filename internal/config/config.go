// Package config loads the registrar settings: a YAML file for pipeline
// behaviour, environment variables for provider credentials. Credentials
// never live in the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/collection-tools/registrar/internal/caption"
	"github.com/collection-tools/registrar/internal/gemini"
	"github.com/collection-tools/registrar/internal/ollama"
	"github.com/collection-tools/registrar/internal/openai"
	"github.com/collection-tools/registrar/internal/providers"
	"github.com/collection-tools/registrar/internal/table"
)

// Columns maps the registrar's record fields onto spreadsheet column names.
type Columns struct {
	ID           string `yaml:"id"`
	Manufacturer string `yaml:"manufacturer"`
	Material     string `yaml:"material"`
	Dimensions   string `yaml:"dimensions"`
	Date         string `yaml:"date"`
	ImagePaths   string `yaml:"image_paths"`
}

// RateLimit spaces and retries provider calls.
type RateLimit struct {
	MinIntervalSeconds int `yaml:"min_interval_seconds"`
	Attempts           int `yaml:"attempts"`
	BackoffSeconds     int `yaml:"backoff_seconds"`
}

// Caption configures the enrichment pass.
type Caption struct {
	Provider    string    `yaml:"provider"`
	Model       string    `yaml:"model"`
	Temperature float64   `yaml:"temperature"`
	Language    string    `yaml:"language"`
	Categorize  bool      `yaml:"categorize"`
	MaxImages   int       `yaml:"max_images"`
	MinLength   int       `yaml:"min_length"`
	RateLimit   RateLimit `yaml:"rate_limit"`
}

// Images configures where object photographs are searched and collected.
type Images struct {
	Roots []string `yaml:"roots"`
	Dir   string   `yaml:"dir"`
}

// Config encapsulates all registrar configuration values.
type Config struct {
	Columns   Columns  `yaml:"columns"`
	Encodings []string `yaml:"encodings"`
	Caption   Caption  `yaml:"caption"`
	Images    Images   `yaml:"images"`
	OutputDir string   `yaml:"output_dir"`
}

// Default returns a Config populated with the source museum's schema and
// conservative provider settings.
func Default() Config {
	return Config{
		Columns: Columns{
			ID:           "t1",
			Manufacturer: "T2",
			Material:     "T3",
			Dimensions:   "T5",
			ImagePaths:   "T13",
			Date:         "T14",
		},
		Encodings: append([]string(nil), table.DefaultEncodings...),
		Caption: Caption{
			Provider:    "gemini",
			Temperature: 0.4,
			Language:    "Deutsch",
			MaxImages:   4,
			MinLength:   10,
			RateLimit: RateLimit{
				MinIntervalSeconds: 10,
				Attempts:           3,
				BackoffSeconds:     10,
			},
		},
		Images: Images{
			Dir: "collected_images",
		},
		OutputDir: ".",
	}
}

// Load reads the YAML config at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Caption.Provider) {
	case "", "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported provider: %s", c.Caption.Provider)
	}
	if c.Columns.ID == "" {
		return fmt.Errorf("columns.id must not be empty")
	}
	return nil
}

// Mapping returns the configured column mapping.
func (c Config) Mapping() table.Mapping {
	return table.Mapping{
		ID:           c.Columns.ID,
		Manufacturer: c.Columns.Manufacturer,
		Material:     c.Columns.Material,
		Dimensions:   c.Columns.Dimensions,
		Date:         c.Columns.Date,
		ImagePaths:   c.Columns.ImagePaths,
	}
}

// Model returns the configured model name, falling back to the selected
// provider's default when unset.
func (c Config) Model() string {
	if c.Caption.Model != "" {
		return c.Caption.Model
	}
	switch strings.ToLower(c.Caption.Provider) {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return "models/gemini-2.5-flash-lite-preview-06-17"
	}
}

// Provider constructs the configured description provider, reading its
// credential from the environment. A missing credential is fatal here,
// before any pipeline work starts.
func (c Config) Provider() (providers.Provider, error) {
	switch strings.ToLower(c.Caption.Provider) {
	case "", "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
		return gemini.New(apiKey), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		return openai.New(apiKey), nil
	case "ollama":
		return ollama.New(os.Getenv("OLLAMA_URL")), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.Caption.Provider)
	}
}

// EnricherOptions translates the config into caption options for a run
// that reads collected photographs from imagesDir.
func (c Config) EnricherOptions(imagesDir string) caption.Options {
	var categories []string
	if c.Caption.Categorize {
		categories = caption.DefaultCategories
	}
	return caption.Options{
		Model:       c.Model(),
		Temperature: c.Caption.Temperature,
		Language:    caption.LanguageFor(c.Caption.Language),
		Categories:  categories,
		ImagesDir:   imagesDir,
		MaxImages:   c.Caption.MaxImages,
		MinLength:   c.Caption.MinLength,
		MinInterval: time.Duration(c.Caption.RateLimit.MinIntervalSeconds) * time.Second,
		MaxAttempts: c.Caption.RateLimit.Attempts,
		Backoff:     time.Duration(c.Caption.RateLimit.BackoffSeconds) * time.Second,
	}
}
