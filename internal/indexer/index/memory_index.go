package index

// MemoryIndex accumulates postings during the build pass. It is not safe for
// concurrent use; the builder feeds it from a single goroutine and then calls
// Freeze to obtain the read-only Index.
type MemoryIndex struct {
	index   map[string]*TermEntry
	docs    map[int]struct{}
	current int
	open    bool
	seen    map[string]struct{}
	size    int64
	frozen  bool
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index: make(map[string]*TermEntry),
		docs:  make(map[int]struct{}),
		seen:  make(map[string]struct{}),
	}
}

// BeginDocument starts counting terms for docID. Terms recorded from now on
// are first occurrences until they are seen once for this document.
func (m *MemoryIndex) BeginDocument(docID int) {
	m.mustNotBeFrozen()
	clear(m.seen)
	m.current = docID
	m.open = true
	m.docs[docID] = struct{}{}
}

// EndDocument discards the per-document seen set.
func (m *MemoryIndex) EndDocument() {
	clear(m.seen)
	m.open = false
}

// RecordOccurrence counts one occurrence of term in docID. If no document is
// open, or a different one is, docID is begun implicitly.
func (m *MemoryIndex) RecordOccurrence(term string, docID int) {
	m.mustNotBeFrozen()
	if term == "" {
		return
	}
	if !m.open || docID != m.current {
		m.BeginDocument(docID)
	}

	entry, exists := m.index[term]
	if !exists {
		entry = &TermEntry{Term: term, Postings: PostingList{}}
		m.index[term] = entry
		m.size += int64(len(term) + 64)
	}
	entry.TotalOccurrences++

	if _, seen := m.seen[term]; !seen {
		m.seen[term] = struct{}{}
		// A reused document id finds its earlier posting here; it is merged
		// rather than duplicated.
		if pos, found := entry.Postings.Search(docID); found {
			entry.Postings[pos].Occurrences++
			return
		}
		entry.Postings = entry.Postings.insert(docID)
		entry.DocumentCount++
		m.size += 16
		return
	}

	pos, found := entry.Postings.Search(docID)
	if !found {
		panic("index: seen term has no posting for the open document")
	}
	entry.Postings[pos].Occurrences++
}

// Freeze closes any open document and returns the immutable Index. The
// MemoryIndex must not be written to afterwards.
func (m *MemoryIndex) Freeze() *Index {
	m.mustNotBeFrozen()
	m.EndDocument()
	m.frozen = true
	idx := &Index{
		terms:    m.index,
		docCount: len(m.docs),
	}
	m.index = nil
	m.seen = nil
	return idx
}

// Size is a rough estimate of the bytes held by the postings.
func (m *MemoryIndex) Size() int64 {
	return m.size
}

func (m *MemoryIndex) DocCount() int {
	return len(m.docs)
}

func (m *MemoryIndex) TermCount() int {
	return len(m.index)
}

func (m *MemoryIndex) mustNotBeFrozen() {
	if m.frozen {
		panic("index: MemoryIndex used after Freeze")
	}
}
