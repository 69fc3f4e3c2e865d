package search

import (
	"log/slog"
	"math"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/fattits30-dev/solicitor-search/internal/search/index"
	"github.com/fattits30-dev/solicitor-search/internal/search/query"
	"github.com/fattits30-dev/solicitor-search/internal/search/ranker"
	"github.com/fattits30-dev/solicitor-search/internal/search/tokenizer"
	"github.com/fattits30-dev/solicitor-search/pkg/config"
	"github.com/fattits30-dev/solicitor-search/pkg/errors"
)

const defaultMaxFuzziness = 2

// Engine is the façade coordinating the tokenizer, inverted index, and
// document store. One Engine exclusively owns one index and one store;
// writers are mutually exclusive with each other and with searches, so an
// update's remove-then-reinsert is never observable half done.
type Engine struct {
	mu       sync.RWMutex
	idx      *index.Index
	store    *Store
	tok      *tokenizer.Tokenizer
	expander *query.Expander

	boosts       map[string]float64
	defaultLimit int
	maxResults   int
	maxFuzziness float64
	logger       *slog.Logger
}

// NewEngine creates an Engine configured with cfg's field boosts and result
// limits. Zero values fall back to defaults.
func NewEngine(cfg config.SearchConfig) *Engine {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.MaxFuzziness <= 0 {
		cfg.MaxFuzziness = defaultMaxFuzziness
	}
	boosts := make(map[string]float64, len(cfg.FieldBoosts))
	for field, boost := range cfg.FieldBoosts {
		boosts[field] = boost
	}

	idx := index.New()
	return &Engine{
		idx:          idx,
		store:        NewStore(),
		tok:          tokenizer.New("-"),
		expander:     query.NewExpander(idx),
		boosts:       boosts,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		maxFuzziness: cfg.MaxFuzziness,
		logger:       slog.Default().With("component", "search-engine"),
	}
}

// AddDocuments indexes a batch of documents. A document whose id already
// exists is updated in place (old postings removed first). Every document
// is validated before any mutation happens, so a bad record never leaves a
// partial write behind.
func (e *Engine) AddDocuments(docs []Document) error {
	for i, doc := range docs {
		if doc.ID == "" {
			return errors.Newf(errors.ErrInvalidInput, http.StatusBadRequest,
				"document at position %d has no id", i)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, doc := range docs {
		e.reindexLocked(doc)
	}
	e.logger.Debug("documents indexed",
		"count", len(docs),
		"doc_count", e.store.Len(),
		"term_count", e.idx.TermCount(),
	)
	return nil
}

// UpdateDocument replaces the document stored under id with doc: all old
// postings are removed, then doc is indexed. There are no partial field
// patches. Updating an id with no existing document is an insert.
func (e *Engine) UpdateDocument(id string, doc Document) error {
	if id == "" {
		return errors.New(errors.ErrInvalidInput, http.StatusBadRequest, "update requires a document id")
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.ID != id {
		return errors.Newf(errors.ErrInvalidInput, http.StatusBadRequest,
			"document id %q does not match update target %q", doc.ID, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reindexLocked(doc)
	return nil
}

// RemoveDocument deletes id from both the store and the index, leaving no
// orphaned postings. Removing an unknown id is a no-op.
func (e *Engine) RemoveDocument(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.RemoveDocument(id)
	e.store.Delete(id)
}

// Search evaluates the query text against the index and returns ranked
// results with each document's stored fields. Query text is tokenized with
// the same tokenizer used for indexing, so a token present verbatim in a
// document is always retrievable by searching it. Candidates are the union
// of documents matched by any query term (OR semantics — deliberate: legal
// search favours broad recall over boolean precision). An empty query or an
// empty index yields an empty, non-error result.
func (e *Engine) Search(text string, opts Options) ([]Result, error) {
	limit, err := e.resolveLimit(opts.Limit)
	if err != nil {
		return nil, err
	}
	if err := e.validateFuzziness(opts.Fuzziness); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	queryTerms := e.tok.Terms(text)
	if len(queryTerms) == 0 {
		return []Result{}, nil
	}

	scores := make(map[string]float64)
	for _, qt := range queryTerms {
		maxEdits := maxEditsFor(qt, opts.Fuzziness)
		for _, match := range e.expander.Expand(qt, opts.Prefix, maxEdits) {
			for _, posting := range e.idx.Lookup(match.Term) {
				boost := e.boostFor(posting.Field, opts.Boosts)
				scores[posting.DocID] += boost * float64(posting.Frequency) * match.Quality
			}
		}
	}

	ranked := ranker.Rank(scores, limit)
	results := make([]Result, 0, len(ranked))
	for _, sd := range ranked {
		doc, err := e.store.Get(sd.DocID)
		if err != nil {
			// The index and store are mutated together under the write
			// lock; a miss here means that invariant broke.
			e.logger.Error("index references document missing from store", "doc_id", sd.DocID)
			continue
		}
		results = append(results, Result{
			DocID:  sd.DocID,
			Score:  sd.Score,
			Fields: doc.Fields,
			Stored: doc.Stored,
		})
	}
	return results, nil
}

// Get returns the stored document for id, or ErrDocumentNotFound.
func (e *Engine) Get(id string) (Document, error) {
	return e.store.Get(id)
}

// Contains reports whether a document is indexed under id.
func (e *Engine) Contains(id string) bool {
	return e.store.Contains(id)
}

// DocCount returns the number of indexed documents.
func (e *Engine) DocCount() int {
	return e.store.Len()
}

// TermCount returns the number of distinct indexed terms.
func (e *Engine) TermCount() int {
	return e.idx.TermCount()
}

// Terms returns every indexed term in ascending order.
func (e *Engine) Terms() []string {
	return e.idx.Terms()
}

// reindexLocked removes any existing postings for doc.ID, then tokenizes
// each field and inserts fresh postings. Caller holds the write lock; store
// and index mutate within the same critical section.
func (e *Engine) reindexLocked(doc Document) {
	e.idx.RemoveDocument(doc.ID)
	for field, text := range doc.Fields {
		freqs := make(map[string]int)
		for _, token := range e.tok.Tokenize(text) {
			freqs[token.Term]++
		}
		for term, freq := range freqs {
			e.idx.Insert(term, doc.ID, field, freq)
		}
	}
	e.store.Put(doc)
}

func (e *Engine) boostFor(field string, overrides map[string]float64) float64 {
	if overrides != nil {
		if boost, ok := overrides[field]; ok {
			return boost
		}
	}
	if boost, ok := e.boosts[field]; ok {
		return boost
	}
	return 1.0
}

func (e *Engine) resolveLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, errors.Newf(errors.ErrInvalidInput, http.StatusBadRequest,
			"limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		return e.defaultLimit, nil
	}
	if limit > e.maxResults {
		return e.maxResults, nil
	}
	return limit, nil
}

func (e *Engine) validateFuzziness(fuzziness float64) error {
	if fuzziness < 0 {
		return errors.Newf(errors.ErrInvalidInput, http.StatusBadRequest,
			"fuzziness must not be negative, got %g", fuzziness)
	}
	if fuzziness >= 1 && fuzziness > e.maxFuzziness {
		return errors.Newf(errors.ErrInvalidInput, http.StatusBadRequest,
			"fuzziness %g exceeds maximum %g", fuzziness, e.maxFuzziness)
	}
	return nil
}

// maxEditsFor translates the fuzziness option into an absolute edit budget
// for one query term: values >= 1 are used directly, values in (0, 1) scale
// with the term's length so a 3-character term does not fuzzy-match half
// the vocabulary.
func maxEditsFor(queryTerm string, fuzziness float64) int {
	if fuzziness <= 0 {
		return 0
	}
	if fuzziness >= 1 {
		return int(fuzziness)
	}
	return int(math.Floor(fuzziness * float64(utf8.RuneCountInString(queryTerm))))
}
