package search

import (
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []storage.VectorMatch)
	AfterKeywordSearch(ids []core.ID)
	SignalDegraded(signal string, err error)
	AfterChunkRetrieval(chunks []*core.ContentChunk)
	Finish(results []*core.ScoredResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterSemanticSearch(_ []storage.VectorMatch)  {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.ID)               {}
func (n *noopMonitor) SignalDegraded(_ string, _ error)             {}
func (n *noopMonitor) AfterChunkRetrieval(_ []*core.ContentChunk)   {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult)                {}
