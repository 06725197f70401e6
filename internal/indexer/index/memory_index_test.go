package index

import (
	"fmt"
	"reflect"
	"slices"
	"testing"
)

// build feeds docs to a fresh MemoryIndex in the given order.
func build(order []int, docs map[int][]string) *Index {
	m := NewMemoryIndex()
	for _, id := range order {
		m.BeginDocument(id)
		for _, term := range docs[id] {
			m.RecordOccurrence(term, id)
		}
		m.EndDocument()
	}
	return m.Freeze()
}

var sampleDocs = map[int][]string{
	0: {"the", "cat", "sat"},
	1: {"the", "dog", "sat"},
	2: {"the", "cat", "ran"},
}

func TestRecordOccurrenceCountsTermAndDocumentFrequency(t *testing.T) {
	idx := build([]int{0, 1, 2}, sampleDocs)

	tests := []struct {
		term      string
		total     int
		docCount  int
		documents []int
	}{
		{"sat", 2, 2, []int{0, 1}},
		{"cat", 2, 2, []int{0, 2}},
		{"the", 3, 3, []int{0, 1, 2}},
		{"dog", 1, 1, []int{1}},
	}
	for _, tt := range tests {
		entry, ok := idx.Lookup(tt.term)
		if !ok {
			t.Fatalf("expected term %q", tt.term)
		}
		if entry.TotalOccurrences != tt.total {
			t.Fatalf("%q: total %d, want %d", tt.term, entry.TotalOccurrences, tt.total)
		}
		if entry.DocumentCount != tt.docCount {
			t.Fatalf("%q: doc count %d, want %d", tt.term, entry.DocumentCount, tt.docCount)
		}
		if got := entry.Postings.DocIDs(); !slices.Equal(got, tt.documents) {
			t.Fatalf("%q: docs %v, want %v", tt.term, got, tt.documents)
		}
	}
	if _, ok := idx.Lookup("zebra"); ok {
		t.Fatalf("unexpected entry for zebra")
	}
	if idx.DocCount() != 3 {
		t.Fatalf("expected 3 documents, got %d", idx.DocCount())
	}
}

// A head-of-list duplicate check breaks here: doc 0 sits at the head when
// doc 1 repeats "cat", so the repeat would look like a new document.
func TestRepeatedTermAfterSmallerDocument(t *testing.T) {
	idx := build([]int{0, 1}, map[int][]string{
		0: {"cat"},
		1: {"cat", "cat", "cat"},
	})
	entry, _ := idx.Lookup("cat")
	want := PostingList{{DocID: 0, Occurrences: 1}, {DocID: 1, Occurrences: 3}}
	if !reflect.DeepEqual(entry.Postings, want) {
		t.Fatalf("postings %v, want %v", entry.Postings, want)
	}
	if entry.DocumentCount != 2 || entry.TotalOccurrences != 4 {
		t.Fatalf("unexpected counts %+v", entry)
	}
	if err := idx.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestPostingsIndependentOfSubmissionOrder(t *testing.T) {
	docs := map[int][]string{
		7:  {"alpha", "beta", "alpha"},
		3:  {"beta", "beta", "gamma"},
		12: {"alpha", "gamma", "gamma", "gamma"},
		0:  {"delta", "alpha"},
		5:  {"beta", "alpha", "beta", "alpha"},
	}
	orders := [][]int{
		{0, 3, 5, 7, 12},
		{12, 7, 5, 3, 0},
		{5, 12, 0, 7, 3},
		{3, 0, 12, 5, 7},
	}
	reference := build(orders[0], docs)
	if err := reference.Validate(); err != nil {
		t.Fatalf("Validate reference: %v", err)
	}
	for _, order := range orders[1:] {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			got := build(order, docs)
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !reflect.DeepEqual(got.Snapshot(), reference.Snapshot()) {
				t.Fatalf("snapshot differs from ascending build:\n got %+v\nwant %+v",
					got.Snapshot(), reference.Snapshot())
			}
		})
	}

	alpha, _ := reference.Lookup("alpha")
	want := PostingList{{0, 1}, {5, 2}, {7, 2}, {12, 1}}
	if !reflect.DeepEqual(alpha.Postings, want) {
		t.Fatalf("alpha postings %v, want %v", alpha.Postings, want)
	}
}

func TestRecordOccurrenceImplicitlyBeginsDocument(t *testing.T) {
	m := NewMemoryIndex()
	m.RecordOccurrence("go", 4)
	m.RecordOccurrence("go", 4)
	m.RecordOccurrence("go", 2)
	m.RecordOccurrence("", 2)
	idx := m.Freeze()

	entry, _ := idx.Lookup("go")
	want := PostingList{{2, 1}, {4, 2}}
	if !reflect.DeepEqual(entry.Postings, want) {
		t.Fatalf("postings %v, want %v", entry.Postings, want)
	}
	if idx.Len() != 1 {
		t.Fatalf("empty term should be ignored, got %d terms", idx.Len())
	}
}

func TestReusedDocumentIDMergesPosting(t *testing.T) {
	m := NewMemoryIndex()
	for range 2 {
		m.BeginDocument(9)
		m.RecordOccurrence("dup", 9)
		m.EndDocument()
	}
	idx := m.Freeze()
	entry, _ := idx.Lookup("dup")
	if entry.DocumentCount != 1 || entry.TotalOccurrences != 2 {
		t.Fatalf("unexpected counts %+v", entry)
	}
	if err := idx.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDocumentWithoutTermsStillCounted(t *testing.T) {
	m := NewMemoryIndex()
	m.BeginDocument(0)
	m.EndDocument()
	m.BeginDocument(1)
	m.RecordOccurrence("x", 1)
	m.EndDocument()
	if m.DocCount() != 2 || m.TermCount() != 1 {
		t.Fatalf("unexpected counts docs=%d terms=%d", m.DocCount(), m.TermCount())
	}
	if m.Size() <= 0 {
		t.Fatalf("expected positive size estimate")
	}
	if idx := m.Freeze(); idx.DocCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", idx.DocCount())
	}
}

func TestMemoryIndexPanicsAfterFreeze(t *testing.T) {
	m := NewMemoryIndex()
	m.RecordOccurrence("a", 1)
	m.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	m.RecordOccurrence("a", 2)
}

func BenchmarkRecordOccurrence(b *testing.B) {
	terms := []string{"distributed", "search", "analytics", "platform", "indexing", "query", "engine"}
	b.ReportAllocs()
	m := NewMemoryIndex()
	for i := 0; i < b.N; i++ {
		docID := i / 16
		m.RecordOccurrence(terms[i%len(terms)], docID)
	}
}
