package index

import (
	"fmt"
	"slices"
	"sort"
)

// Index is the frozen term dictionary produced by MemoryIndex.Freeze. Nothing
// mutates it after construction, so any number of goroutines may read it
// without locking.
type Index struct {
	terms    map[string]*TermEntry
	docCount int
}

// Empty returns an Index with no terms and no documents.
func Empty() *Index {
	return &Index{terms: make(map[string]*TermEntry)}
}

// Lookup returns a copy of the entry for an already-normalised term.
func (x *Index) Lookup(term string) (TermEntry, bool) {
	entry, ok := x.terms[term]
	if !ok {
		return TermEntry{}, false
	}
	return entry.clone(), true
}

// Len returns the number of distinct terms.
func (x *Index) Len() int {
	return len(x.terms)
}

// DocCount returns the number of documents the build consumed, including
// documents that produced no terms.
func (x *Index) DocCount() int {
	return x.docCount
}

// Terms returns every term in ascending order.
func (x *Index) Terms() []string {
	terms := make([]string, 0, len(x.terms))
	for term := range x.terms {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

// Snapshot copies every entry, ordered by term.
func (x *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(x.terms))
	for _, entry := range x.terms {
		entries = append(entries, entry.clone())
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Validate checks the posting invariants of every entry: the document count
// equals the number of postings, postings are strictly ascending by document
// id, and the total equals the sum of per-document occurrences.
func (x *Index) Validate() error {
	for term, entry := range x.terms {
		if entry.DocumentCount != len(entry.Postings) {
			return fmt.Errorf("term %q: document count %d but %d postings",
				term, entry.DocumentCount, len(entry.Postings))
		}
		sum := 0
		for i, p := range entry.Postings {
			if p.Occurrences < 1 {
				return fmt.Errorf("term %q: doc %d has %d occurrences", term, p.DocID, p.Occurrences)
			}
			if i > 0 && entry.Postings[i-1].DocID >= p.DocID {
				return fmt.Errorf("term %q: postings out of order at %d (%d then %d)",
					term, i, entry.Postings[i-1].DocID, p.DocID)
			}
			sum += p.Occurrences
		}
		if sum != entry.TotalOccurrences {
			return fmt.Errorf("term %q: total occurrences %d but postings sum to %d",
				term, entry.TotalOccurrences, sum)
		}
	}
	return nil
}
