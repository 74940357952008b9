package search

import (
	"math"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/query"
	"github.com/poiesic/grimoire/vocab"
)

// bm25Scorer computes keyword relevance from the vocabulary index's term
// statistics. A scorer snapshots the corpus-level numbers once per query.
type bm25Scorer struct {
	vocabulary *vocab.Index
	k1         float64
	b          float64
	chunkCount int
	avgLength  float64
}

func newBM25Scorer(vocabulary *vocab.Index, k1, b float64) *bm25Scorer {
	return &bm25Scorer{
		vocabulary: vocabulary,
		k1:         k1,
		b:          b,
		chunkCount: vocabulary.ChunkCount(),
		avgLength:  vocabulary.AvgChunkLength(),
	}
}

// scoringTerms returns the weighted terms to score: the processed query's
// terms minus stop words, plus full-weight bigrams of adjacent original
// tokens for phrase matching.
func scoringTerms(processed *query.Processed) []query.Term {
	terms := make([]query.Term, 0, len(processed.Terms)*2)
	for _, term := range processed.Terms {
		if vocab.IsStopWord(term.Text) {
			continue
		}
		terms = append(terms, term)
	}
	tokens := processed.Tokens()
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, query.Term{Text: tokens[i] + "_" + tokens[i+1], Weight: 1.0})
	}
	return terms
}

// idf returns the inverse document frequency for a term, zero when unknown.
func (s *bm25Scorer) idf(term string) float64 {
	df, _ := s.vocabulary.TermStats(term)
	if df == 0 || s.chunkCount == 0 {
		return 0
	}
	return math.Log(1 + (float64(s.chunkCount)-float64(df)+0.5)/(float64(df)+0.5))
}

// candidates returns every chunk containing at least one scoring term.
func (s *bm25Scorer) candidates(terms []query.Term) []core.ID {
	seen := make(map[core.ID]bool)
	var ids []core.ID
	for _, term := range terms {
		for id := range s.vocabulary.Postings(term.Text) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// score computes the weighted BM25 score for the allowed chunk set, along
// with each term's per-chunk contribution for explanations.
func (s *bm25Scorer) score(terms []query.Term, allowed map[core.ID]bool) (map[core.ID]float64, map[core.ID]map[string]float64) {
	scores := make(map[core.ID]float64, len(allowed))
	contributions := make(map[core.ID]map[string]float64, len(allowed))

	for _, term := range terms {
		termIDF := s.idf(term.Text)
		if termIDF == 0 {
			continue
		}
		for id, tf := range s.vocabulary.Postings(term.Text) {
			if !allowed[id] {
				continue
			}
			length, ok := s.vocabulary.ChunkLength(id)
			if !ok {
				continue
			}
			norm := 1 - s.b + s.b*float64(length)/s.avgLength
			saturated := float64(tf) * (s.k1 + 1) / (float64(tf) + s.k1*norm)
			contribution := term.Weight * termIDF * saturated

			scores[id] += contribution
			if contributions[id] == nil {
				contributions[id] = make(map[string]float64)
			}
			contributions[id][term.Text] += contribution
		}
	}
	return scores, contributions
}
