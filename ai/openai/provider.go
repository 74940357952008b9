package openai

import (
	"github.com/poiesic/grimoire/ai"
)

// Provider bundles the OpenAI-compatible embedder behind the ai.Provider
// interface.
type Provider struct {
	embedder *Embedder
}

func NewProvider(config *ai.Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := NewEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{embedder: embedder}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases provider resources. The HTTP-backed embedder holds no
// persistent connections, so this is a no-op kept for interface symmetry.
func (p *Provider) Close() error {
	return nil
}
