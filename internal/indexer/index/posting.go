package index

import (
	"cmp"
	"slices"
)

// Posting records how often a term occurs in one document.
type Posting struct {
	DocID       int `json:"doc_id"`
	Occurrences int `json:"occurrences"`
}

// PostingList is kept strictly ascending by DocID with no repeated DocID.
type PostingList []Posting

// TermEntry aggregates everything the index knows about one term.
type TermEntry struct {
	Term             string      `json:"term"`
	TotalOccurrences int         `json:"total_occurrences"`
	DocumentCount    int         `json:"document_count"`
	Postings         PostingList `json:"postings"`
}

// Search returns the position of docID in the list, or the position where it
// would be inserted and false.
func (pl PostingList) Search(docID int) (int, bool) {
	return slices.BinarySearchFunc(pl, docID, func(p Posting, id int) int {
		return cmp.Compare(p.DocID, id)
	})
}

// DocIDs returns the document ids in list order.
func (pl PostingList) DocIDs() []int {
	ids := make([]int, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// insert adds a posting with one occurrence for docID. The caller guarantees
// docID is not already present.
func (pl PostingList) insert(docID int) PostingList {
	pos, _ := pl.Search(docID)
	return slices.Insert(pl, pos, Posting{DocID: docID, Occurrences: 1})
}

func (e *TermEntry) clone() TermEntry {
	out := *e
	out.Postings = slices.Clone(e.Postings)
	return out
}
