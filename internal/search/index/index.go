// Package index implements the in-memory inverted index at the heart of the
// search engine: a mapping from term to the documents and fields containing
// it, plus a sorted term list for prefix scans and fuzzy candidate
// generation.
package index

import (
	"sort"
	"sync"
)

// Index maps each term to per-document, per-field frequencies. All methods
// are safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	// terms[term][docID][field] = frequency
	terms map[string]map[string]map[string]int

	// docTerms[docID] = set of terms posted for that document, so removal
	// does not scan the whole term space.
	docTerms map[string]map[string]struct{}

	// sorted holds every live term in ascending order, maintained on each
	// mutation. Prefix lookups binary-search it.
	sorted []string
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		terms:    make(map[string]map[string]map[string]int),
		docTerms: make(map[string]map[string]struct{}),
	}
}

// Insert records that term appears frequency times in the given field of the
// given document. Inserting the same (term, docID, field) again overwrites
// the frequency rather than duplicating the posting.
func (ix *Index) Insert(term, docID, field string, frequency int) {
	if term == "" || docID == "" || frequency <= 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	docs, ok := ix.terms[term]
	if !ok {
		docs = make(map[string]map[string]int)
		ix.terms[term] = docs
		ix.insertSorted(term)
	}
	fields, ok := docs[docID]
	if !ok {
		fields = make(map[string]int)
		docs[docID] = fields
	}
	fields[field] = frequency

	posted, ok := ix.docTerms[docID]
	if !ok {
		posted = make(map[string]struct{})
		ix.docTerms[docID] = posted
	}
	posted[term] = struct{}{}
}

// RemoveDocument deletes every posting referencing docID. Terms whose
// posting list becomes empty are dropped entirely, so the index never
// accumulates dead terms. Removing an unknown docID is a no-op.
func (ix *Index) RemoveDocument(docID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	posted, ok := ix.docTerms[docID]
	if !ok {
		return
	}
	for term := range posted {
		docs := ix.terms[term]
		delete(docs, docID)
		if len(docs) == 0 {
			delete(ix.terms, term)
			ix.removeSorted(term)
		}
	}
	delete(ix.docTerms, docID)
}

// Lookup returns the postings for an exact term, ordered by DocID then
// Field. It returns nil when the term is not indexed.
func (ix *Index) Lookup(term string) PostingList {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	docs, ok := ix.terms[term]
	if !ok {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, fields := range docs {
		for field, freq := range fields {
			result = append(result, Posting{
				DocID:     docID,
				Field:     field,
				Frequency: freq,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DocID != result[j].DocID {
			return result[i].DocID < result[j].DocID
		}
		return result[i].Field < result[j].Field
	})
	return result
}

// Has reports whether term is indexed.
func (ix *Index) Has(term string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.terms[term]
	return ok
}

// PrefixTerms returns, in ascending order, every indexed term that starts
// with prefix.
func (ix *Index) PrefixTerms(prefix string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	start := sort.SearchStrings(ix.sorted, prefix)
	var result []string
	for i := start; i < len(ix.sorted); i++ {
		term := ix.sorted[i]
		if len(term) < len(prefix) || term[:len(prefix)] != prefix {
			break
		}
		result = append(result, term)
	}
	return result
}

// Terms returns every indexed term in ascending order. The fuzzy matcher
// scans this to generate candidates.
func (ix *Index) Terms() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	terms := make([]string, len(ix.sorted))
	copy(terms, ix.sorted)
	return terms
}

// TermCount returns the number of distinct live terms.
func (ix *Index) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.sorted)
}

// DocCount returns the number of documents with at least one posting.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docTerms)
}

// insertSorted splices term into the sorted slice. Caller holds the write
// lock and has verified the term is new.
func (ix *Index) insertSorted(term string) {
	i := sort.SearchStrings(ix.sorted, term)
	ix.sorted = append(ix.sorted, "")
	copy(ix.sorted[i+1:], ix.sorted[i:])
	ix.sorted[i] = term
}

// removeSorted splices term out of the sorted slice. Caller holds the write
// lock.
func (ix *Index) removeSorted(term string) {
	i := sort.SearchStrings(ix.sorted, term)
	if i < len(ix.sorted) && ix.sorted[i] == term {
		ix.sorted = append(ix.sorted[:i], ix.sorted[i+1:]...)
	}
}
