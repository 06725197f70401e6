package executor

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
)

var sampleTexts = map[int]string{
	0: "the cat sat",
	1: "the dog sat",
	2: "the cat ran",
}

func buildEvaluator(t *testing.T, order ...int) *Evaluator {
	t.Helper()
	docs := make([]corpus.Document, 0, len(order))
	for _, id := range order {
		docs = append(docs, corpus.FromText(id, sampleTexts[id]))
	}
	idx, err := indexer.NewBuilder(config.IndexerConfig{}).Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(idx)
}

func TestLookupSampleCorpus(t *testing.T) {
	tests := []struct {
		query string
		want  Result
	}{
		{"sat", Result{Query: "sat", Term: "sat", TotalOccurrences: 2, DocumentCount: 2, DocumentIDs: []int{0, 1}}},
		{"cat", Result{Query: "cat", Term: "cat", TotalOccurrences: 2, DocumentCount: 2, DocumentIDs: []int{0, 2}}},
		{"the", Result{Query: "the", Term: "the", TotalOccurrences: 3, DocumentCount: 3, DocumentIDs: []int{0, 1, 2}}},
		{"CAT!", Result{Query: "CAT!", Term: "cat", TotalOccurrences: 2, DocumentCount: 2, DocumentIDs: []int{0, 2}}},
	}
	for _, order := range [][]int{{0, 1, 2}, {2, 0, 1}} {
		e := buildEvaluator(t, order...)
		for _, tt := range tests {
			got, ok := e.Lookup(tt.query)
			if !ok {
				t.Fatalf("order %v: %q not found", order, tt.query)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("order %v: Lookup(%q) = %+v, want %+v", order, tt.query, got, tt.want)
			}
		}
	}
}

func TestLookupNotFound(t *testing.T) {
	e := buildEvaluator(t, 0, 1, 2)
	for _, q := range []string{"zebra", "", "   ", "?!", "the cat"} {
		if got, ok := e.Lookup(q); ok {
			t.Fatalf("Lookup(%q) = %+v, want not found", q, got)
		}
	}
}

func TestLookupIsPure(t *testing.T) {
	e := buildEvaluator(t, 0, 1, 2)
	first, _ := e.Lookup("the")
	first.DocumentIDs[0] = 100
	second, _ := e.Lookup("the")
	third, _ := e.Lookup("the")
	if !reflect.DeepEqual(second, third) {
		t.Fatalf("repeated lookups differ: %+v vs %+v", second, third)
	}
	if second.DocumentIDs[0] != 0 {
		t.Fatalf("mutating a result leaked into the index: %v", second.DocumentIDs)
	}
}

func TestLookupConcurrent(t *testing.T) {
	e := buildEvaluator(t, 2, 1, 0)
	want, _ := e.Lookup("sat")
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				got, ok := e.Lookup("sat")
				if !ok || !reflect.DeepEqual(got, want) {
					t.Errorf("concurrent lookup mismatch: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestStats(t *testing.T) {
	e := buildEvaluator(t, 0, 1, 2)
	if got := e.Stats(); got != (IndexStats{Terms: 5, Documents: 3}) {
		t.Fatalf("Stats = %+v", got)
	}
	if got := New(nil).Stats(); got != (IndexStats{}) {
		t.Fatalf("nil index stats = %+v", got)
	}
	if _, ok := New(index.Empty()).Lookup("the"); ok {
		t.Fatalf("empty index should not match")
	}
}
