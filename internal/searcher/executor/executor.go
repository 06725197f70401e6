package executor

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/tokenizer"
)

// Result is a successful single-term lookup. DocumentIDs is ascending and
// free of duplicates.
type Result struct {
	Query            string `json:"query"`
	Term             string `json:"term"`
	TotalOccurrences int    `json:"total_occurrences"`
	DocumentCount    int    `json:"document_count"`
	DocumentIDs      []int  `json:"document_ids"`
}

type IndexStats struct {
	Terms     int `json:"terms"`
	Documents int `json:"documents"`
}

// Evaluator answers queries against a frozen index. It never mutates the
// index and is safe for concurrent use.
type Evaluator struct {
	index  *index.Index
	logger *slog.Logger
}

func New(idx *index.Index) *Evaluator {
	if idx == nil {
		idx = index.Empty()
	}
	return &Evaluator{
		index:  idx,
		logger: slog.Default().With("component", "query-evaluator"),
	}
}

// Lookup normalises raw as one term and reports its statistics. The second
// return value is false when the query normalises to nothing or the term is
// not in the index.
func (e *Evaluator) Lookup(raw string) (Result, bool) {
	term := tokenizer.NormalizeQuery(raw)
	if term == "" {
		e.logger.Debug("query normalised to empty term", "query", raw)
		return Result{}, false
	}
	entry, ok := e.index.Lookup(term)
	if !ok {
		e.logger.Debug("term not found", "query", raw, "term", term)
		return Result{}, false
	}
	return Result{
		Query:            raw,
		Term:             term,
		TotalOccurrences: entry.TotalOccurrences,
		DocumentCount:    entry.DocumentCount,
		DocumentIDs:      entry.Postings.DocIDs(),
	}, true
}

func (e *Evaluator) Stats() IndexStats {
	return IndexStats{
		Terms:     e.index.Len(),
		Documents: e.index.DocCount(),
	}
}
