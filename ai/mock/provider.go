package mock

import (
	"github.com/poiesic/grimoire/ai"
)

// Provider satisfies ai.Provider with the deterministic embedder.
type Provider struct {
	embedder *Embedder
}

func NewProvider() *Provider {
	return &Provider{embedder: NewEmbedder()}
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// MockEmbedder exposes the concrete embedder so tests can install
// overrides and inspect call counts.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

func (p *Provider) Close() error {
	return nil
}
