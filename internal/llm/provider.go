package llm

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	OpenAIProvider       ProviderType = "openai"
	GitHubModelsProvider ProviderType = "github_models"
	AzureProvider        ProviderType = "azure"
)

// GitHubModelsURL is the OpenAI-compatible endpoint of GitHub Models
const GitHubModelsURL = "https://models.inference.ai.azure.com"

// ErrMissingToken is returned when a provider is configured without credentials
var ErrMissingToken = errors.New("an API token is required for the language model")

// Config selects and authenticates the model used for debriefs. Endpoint and
// Deployment are only used by Azure.
type Config struct {
	Enabled    bool         `yaml:"enabled"`
	Provider   ProviderType `yaml:"provider"`
	Model      string       `yaml:"model"`
	Token      string       `yaml:"token"`
	BaseURL    string       `yaml:"base_url"`
	Endpoint   string       `yaml:"endpoint"`
	Deployment string       `yaml:"deployment"`
}

// Validate checks that the selected provider has what it needs
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	switch c.Provider {
	case "", OpenAIProvider, GitHubModelsProvider:
		return nil
	case AzureProvider:
		if c.Endpoint == "" || c.Deployment == "" {
			return errors.New("azure needs both an endpoint and a deployment")
		}
		return nil
	default:
		return fmt.Errorf("unsupported LLM provider %q", c.Provider)
	}
}

// New builds the model for the configured provider. An empty provider means
// OpenAI.
func New(cfg Config) (llms.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case AzureProvider:
		return NewAzureModel(cfg.Endpoint, cfg.Token, cfg.Deployment)
	case GitHubModelsProvider:
		if cfg.BaseURL == "" {
			cfg.BaseURL = GitHubModelsURL
		}
	}
	return newOpenAI(cfg)
}

// newOpenAI creates a client for any OpenAI-compatible API
func newOpenAI(cfg Config) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.Token),
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", providerName(cfg.Provider), err)
	}
	return model, nil
}

func providerName(p ProviderType) string {
	if p == "" {
		return string(OpenAIProvider)
	}
	return string(p)
}
