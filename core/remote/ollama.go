package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"
)

// OllamaProvider calls a local Ollama server.
type OllamaProvider struct {
	client *ollama.Ollama
	model  string
}

// NewOllamaProvider creates a client for the Ollama host.
func NewOllamaProvider(host, model string) (*OllamaProvider, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &OllamaProvider{client: ollama.New(*u), model: model}, nil
}

// Name returns the provider label.
func (o *OllamaProvider) Name() string { return "ollama:" + o.model }

type ollamaResult struct {
	text string
	err  error
}

// Complete runs one non-streaming generation. The client has no context
// support, so cancellation abandons the in-flight request.
func (o *OllamaProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	done := make(chan ollamaResult, 1)
	go func() {
		res, err := o.client.Generate(
			o.client.Generate.WithModel(o.model),
			o.client.Generate.WithSystem(system),
			o.client.Generate.WithPrompt(prompt),
		)
		if err != nil {
			done <- ollamaResult{err: &ProviderError{Provider: o.Name(), Err: err}}
			return
		}
		if !res.Done || res.Response == "" {
			done <- ollamaResult{err: &ParseError{Reason: "ollama returned an incomplete response"}}
			return
		}
		done <- ollamaResult{text: strings.TrimSpace(res.Response)}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", &ProviderError{Provider: o.Name(), Err: ctx.Err()}
	}
}
