package remote

import (
	"context"
	"fmt"
	"os"

	"github.com/huangsam/footprint/schema"
)

// Provider is an external estimation service.
type Provider interface {
	Name() string
	// Complete sends one structured request and returns the raw response text.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOllamaModel    = "gemma3:latest"
	DefaultOllamaHost     = "http://127.0.0.1:11434"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Name       schema.ProviderName
	Model      string
	OllamaHost string
}

// NewProvider builds the configured provider. It returns ErrDisabled when remote
// estimation is turned off or when "auto" finds no credentials.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	name := cfg.Name
	if name == "" || name == schema.AutoProvider {
		name = detectProvider(cfg)
	}

	switch name {
	case schema.AnthropicProvider:
		return NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), modelOr(cfg.Model, DefaultAnthropicModel))
	case schema.GeminiProvider:
		return NewGeminiProvider(ctx, geminiKey(), modelOr(cfg.Model, DefaultGeminiModel))
	case schema.OllamaProvider:
		host := cfg.OllamaHost
		if host == "" {
			host = modelOr(os.Getenv("OLLAMA_HOST"), DefaultOllamaHost)
		}
		return NewOllamaProvider(host, modelOr(cfg.Model, DefaultOllamaModel))
	case schema.NoProvider:
		return nil, ErrDisabled
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

// detectProvider picks the first provider with credentials in the environment.
func detectProvider(cfg ProviderConfig) schema.ProviderName {
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		return schema.AnthropicProvider
	case geminiKey() != "":
		return schema.GeminiProvider
	case cfg.OllamaHost != "" || os.Getenv("OLLAMA_HOST") != "":
		return schema.OllamaProvider
	}
	return schema.NoProvider
}

func geminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
