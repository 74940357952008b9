package mock

import (
	"context"
	"hash/fnv"
	"sync"
)

const vectorDim = 384

// Embedder is a deterministic in-process embedder for tests. The same
// text always yields the same vector, and different texts yield vectors
// that are unlikely to collide, which is enough for similarity-ordering
// assertions without a live model.
type Embedder struct {
	mu        sync.Mutex
	callCount int

	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func NewEmbedder() *Embedder {
	return &Embedder{}
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.callCount++
	override := e.EmbedTextFunc
	e.mu.Unlock()

	if override != nil {
		return override(ctx, text)
	}
	return deterministicVector(text), nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.callCount++
	override := e.EmbedTextsFunc
	e.mu.Unlock()

	if override != nil {
		return override(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text)
	}
	return vectors, nil
}

// CallCount returns how many embed calls have been made.
func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Reset clears the call counter and any overrides.
func (e *Embedder) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callCount = 0
	e.EmbedTextFunc = nil
	e.EmbedTextsFunc = nil
}

// deterministicVector derives a pseudo-random unit-scale vector from the
// FNV hash of the text, advanced by a linear congruential generator.
func deterministicVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vector := make([]float32, vectorDim)
	for i := range vector {
		state = state*6364136223846793005 + 1442695040888963407
		vector[i] = float32(int64(state>>32))/float32(1<<31)*0.5 + 0.5
	}
	return vector
}
