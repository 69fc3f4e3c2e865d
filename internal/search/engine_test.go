package search

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/fattits30-dev/solicitor-search/pkg/config"
	apperrors "github.com/fattits30-dev/solicitor-search/pkg/errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(config.SearchConfig{
		DefaultLimit: 20,
		MaxResults:   100,
		MaxFuzziness: 2,
		FieldBoosts: map[string]float64{
			"title":   3,
			"tags":    2,
			"content": 1,
		},
	})
}

func mustAdd(t *testing.T, e *Engine, docs ...Document) {
	t.Helper()
	if err := e.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
}

func docIDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

func TestSearchExact(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"title": "Harrison Estate Probate"}},
		Document{ID: "case:2", Fields: map[string]string{"title": "Whitfield Lease Dispute"}},
	)

	results, err := e.Search("estate", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "case:1" {
		t.Errorf("results = %v, want only case:1", docIDs(results))
	}
	// title boost 3, frequency 1, exact quality 1.0
	if results[0].Score != 3 {
		t.Errorf("score = %g, want 3", results[0].Score)
	}
}

func TestSearchIndexedTokenAlwaysRetrievable(t *testing.T) {
	// Query text goes through the same tokenizer as documents, so any token
	// that survived indexing must be findable verbatim, punctuation and
	// case notwithstanding.
	e := newTestEngine(t)
	mustAdd(t, e, Document{ID: "note:1", Fields: map[string]string{
		"content": "Client confirmed the codicil witness has emigrated; re-examination needed",
	}})

	for _, q := range []string{"CODICIL", "re-examination", "emigrated."} {
		results, err := e.Search(q, Options{})
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 1 {
			t.Errorf("Search(%q) = %v, want note:1", q, docIDs(results))
		}
	}
}

func TestSearchUnionSemantics(t *testing.T) {
	// Multi-term queries take the union of per-term matches: a document
	// matching one term still surfaces, one matching both ranks higher.
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"content": "estate probate"}},
		Document{ID: "case:2", Fields: map[string]string{"content": "estate"}},
		Document{ID: "case:3", Fields: map[string]string{"content": "lease"}},
	)

	results, err := e.Search("estate probate", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got, want := docIDs(results), []string{"case:1", "case:2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("results = %v, want %v", got, want)
	}
}

func TestSearchRepeatedQueryTermCountedOnce(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e, Document{ID: "case:1", Fields: map[string]string{"content": "estate"}})

	once, _ := e.Search("estate", Options{})
	twice, _ := e.Search("estate estate", Options{})
	if once[0].Score != twice[0].Score {
		t.Errorf("repeating a query term changed the score: %g vs %g", once[0].Score, twice[0].Score)
	}
}

func TestSearchFieldBoosts(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:title", Fields: map[string]string{"title": "probate"}},
		Document{ID: "case:tags", Fields: map[string]string{"tags": "probate"}},
		Document{ID: "case:content", Fields: map[string]string{"content": "probate"}},
	)

	results, err := e.Search("probate", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"case:title", "case:tags", "case:content"}
	if got := docIDs(results); !reflect.DeepEqual(got, want) {
		t.Errorf("boost ordering = %v, want %v", got, want)
	}
	if results[0].Score != 3 || results[1].Score != 2 || results[2].Score != 1 {
		t.Errorf("scores = %g, %g, %g, want 3, 2, 1",
			results[0].Score, results[1].Score, results[2].Score)
	}
}

func TestSearchBoostOverridePerCall(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:title", Fields: map[string]string{"title": "probate"}},
		Document{ID: "case:content", Fields: map[string]string{"content": "probate"}},
	)

	results, err := e.Search("probate", Options{
		Boosts: map[string]float64{"title": 1, "content": 10},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].DocID != "case:content" {
		t.Errorf("override ignored, top result = %s", results[0].DocID)
	}
}

func TestSearchFrequencyContributes(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"content": "lease lease lease"}},
		Document{ID: "case:2", Fields: map[string]string{"content": "lease"}},
	)

	results, _ := e.Search("lease", Options{})
	if results[0].DocID != "case:1" || results[0].Score != 3 {
		t.Errorf("results = %v", results)
	}
}

func TestSearchPrefix(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"content": "estate"}},
		Document{ID: "case:2", Fields: map[string]string{"content": "estimate"}},
		Document{ID: "case:3", Fields: map[string]string{"content": "probate"}},
	)

	results, err := e.Search("est", Options{Prefix: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got, want := docIDs(results), []string{"case:1", "case:2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("prefix results = %v, want %v", got, want)
	}
	// quality len("est")/len("estate") = 0.5, boost 1, freq 1
	if results[0].Score != 0.5 {
		t.Errorf("estate score = %g, want 0.5", results[0].Score)
	}
	if results[0].Score <= results[1].Score {
		t.Error("shorter term should outrank longer under prefix quality")
	}
}

func TestSearchPrefixNarrowsMonotonically(t *testing.T) {
	// Lengthening a prefix can only shrink the match set: every document
	// matched by the longer prefix is matched by the shorter one.
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"content": "estate"}},
		Document{ID: "case:2", Fields: map[string]string{"content": "estimate"}},
		Document{ID: "case:3", Fields: map[string]string{"content": "estoppel"}},
	)

	broad, err := e.Search("est", Options{Prefix: true})
	if err != nil {
		t.Fatalf("Search(est): %v", err)
	}
	narrow, err := e.Search("esta", Options{Prefix: true})
	if err != nil {
		t.Fatalf("Search(esta): %v", err)
	}

	broadSet := make(map[string]bool, len(broad))
	for _, r := range broad {
		broadSet[r.DocID] = true
	}
	for _, r := range narrow {
		if !broadSet[r.DocID] {
			t.Errorf("%s matched by esta but not by est", r.DocID)
		}
	}
	if len(broad) != 3 {
		t.Errorf("est matched %v, want all three", docIDs(broad))
	}
	if len(narrow) != 1 || narrow[0].DocID != "case:1" {
		t.Errorf("esta matched %v, want only case:1", docIDs(narrow))
	}
}

func TestSearchFuzzy(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "doc:1", Fields: map[string]string{"content": "contract"}},
		Document{ID: "doc:2", Fields: map[string]string{"content": "probate"}},
	)

	results, err := e.Search("contrakt", Options{Fuzziness: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "doc:1" {
		t.Fatalf("fuzzy results = %v, want doc:1", docIDs(results))
	}
	// distance 1 over length 8: quality 0.875
	if math.Abs(results[0].Score-0.875) > 1e-9 {
		t.Errorf("score = %g, want 0.875", results[0].Score)
	}
}

func TestSearchFuzzyRatio(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e, Document{ID: "doc:1", Fields: map[string]string{"content": "solicitor"}})

	// 0.2 of 9 runes = 1 edit allowed.
	results, err := e.Search("solictor", Options{Fuzziness: 0.2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("ratio fuzziness results = %v, want doc:1", docIDs(results))
	}

	// 0.1 of 8 runes rounds down to 0 edits: fuzzy disabled for this term.
	results, err = e.Search("solictor", Options{Fuzziness: 0.1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results at fuzziness 0.1, got %v", docIDs(results))
	}
}

func TestSearchFuzzinessValidation(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Search("x", Options{Fuzziness: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("negative fuzziness error = %v, want ErrInvalidInput", err)
	}
	if _, err := e.Search("x", Options{Fuzziness: 3}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("fuzziness above cap error = %v, want ErrInvalidInput", err)
	}
}

func TestSearchLimit(t *testing.T) {
	e := newTestEngine(t)
	docs := make([]Document, 30)
	for i := range docs {
		docs[i] = Document{
			ID:     string(rune('a'+i/10)) + string(rune('0'+i%10)),
			Fields: map[string]string{"content": "estate"},
		}
	}
	mustAdd(t, e, docs...)

	results, err := e.Search("estate", Options{Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("len(results) = %d, want 5", len(results))
	}

	if _, err := e.Search("estate", Options{Limit: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("negative limit error = %v, want ErrInvalidInput", err)
	}

	// Zero means the engine default (20).
	results, _ = e.Search("estate", Options{})
	if len(results) != 20 {
		t.Errorf("default limit gave %d results, want 20", len(results))
	}
}

func TestSearchTieBreaksOnDocID(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:b", Fields: map[string]string{"content": "estate"}},
		Document{ID: "case:a", Fields: map[string]string{"content": "estate"}},
		Document{ID: "case:c", Fields: map[string]string{"content": "estate"}},
	)
	for i := 0; i < 5; i++ {
		results, _ := e.Search("estate", Options{})
		if got, want := docIDs(results), []string{"case:a", "case:b", "case:c"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: results = %v, want %v", i, got, want)
		}
	}
}

func TestSearchEmptyQueryAndEmptyIndex(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search("anything", Options{Prefix: true, Fuzziness: 2})
	if err != nil || len(results) != 0 {
		t.Errorf("empty index: results = %v, err = %v", results, err)
	}

	mustAdd(t, e, Document{ID: "case:1", Fields: map[string]string{"content": "estate"}})
	results, err = e.Search("   !!! ", Options{})
	if err != nil || len(results) != 0 {
		t.Errorf("empty query: results = %v, err = %v", results, err)
	}
}

func TestAddDocumentsValidatesBeforeMutating(t *testing.T) {
	e := newTestEngine(t)
	err := e.AddDocuments([]Document{
		{ID: "case:1", Fields: map[string]string{"content": "estate"}},
		{Fields: map[string]string{"content": "orphan"}},
	})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if e.DocCount() != 0 {
		t.Errorf("failed batch left %d documents behind", e.DocCount())
	}
}

func TestAddDocumentsReindexesExistingID(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e, Document{ID: "case:1", Fields: map[string]string{"content": "estate probate"}})
	mustAdd(t, e, Document{ID: "case:1", Fields: map[string]string{"content": "lease"}})

	if e.DocCount() != 1 {
		t.Errorf("DocCount = %d, want 1", e.DocCount())
	}
	if results, _ := e.Search("probate", Options{}); len(results) != 0 {
		t.Error("old postings survived reindex")
	}
	if results, _ := e.Search("lease", Options{}); len(results) != 1 {
		t.Error("new postings missing after reindex")
	}
}

func TestUpdateDocument(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e, Document{ID: "case:1", Fields: map[string]string{"title": "Okafor dismissal open"}})

	err := e.UpdateDocument("case:1", Document{Fields: map[string]string{"title": "Okafor dismissal settled"}})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if results, _ := e.Search("open", Options{}); len(results) != 0 {
		t.Error("stale term still matches after update")
	}
	if results, _ := e.Search("settled", Options{}); len(results) != 1 {
		t.Error("updated term not matching")
	}
}

func TestUpdateDocumentValidation(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpdateDocument("", Document{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("empty id error = %v, want ErrInvalidInput", err)
	}
	err := e.UpdateDocument("case:1", Document{ID: "case:2"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("mismatched id error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateUnknownIDInserts(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpdateDocument("case:9", Document{Fields: map[string]string{"content": "new"}}); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if !e.Contains("case:9") {
		t.Error("upsert did not create the document")
	}
}

func TestRemoveDocumentPurgesTerms(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e,
		Document{ID: "case:1", Fields: map[string]string{"content": "estate codicil"}},
		Document{ID: "case:2", Fields: map[string]string{"content": "estate"}},
	)

	e.RemoveDocument("case:1")

	if e.Contains("case:1") {
		t.Error("case:1 still stored")
	}
	terms := e.Terms()
	for _, term := range terms {
		if term == "codicil" {
			t.Error("codicil should be purged: case:1 was its only document")
		}
	}
	if results, _ := e.Search("estate", Options{}); len(results) != 1 {
		t.Errorf("estate should still match case:2, got %v", docIDs(results))
	}

	// Removing again is a no-op.
	e.RemoveDocument("case:1")
	if e.DocCount() != 1 {
		t.Errorf("DocCount = %d, want 1", e.DocCount())
	}
}

func TestGetReturnsNotFound(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Get("ghost"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrDocumentNotFound", err)
	}
}

func TestSearchReturnsStoredFields(t *testing.T) {
	e := newTestEngine(t)
	mustAdd(t, e, Document{
		ID:     "case:1",
		Fields: map[string]string{"title": "Harrison Estate"},
		Stored: map[string]string{"status": "open", "client_name": "Eleanor Harrison"},
	})

	results, _ := e.Search("harrison", Options{})
	if len(results) != 1 {
		t.Fatalf("results = %v", docIDs(results))
	}
	if results[0].Stored["status"] != "open" {
		t.Errorf("stored metadata missing: %v", results[0].Stored)
	}
	if results[0].Fields["title"] != "Harrison Estate" {
		t.Errorf("fields missing: %v", results[0].Fields)
	}
}

func TestEngineZeroConfigDefaults(t *testing.T) {
	e := NewEngine(config.SearchConfig{})
	mustAdd(t, e, Document{ID: "d1", Fields: map[string]string{"anything": "estate"}})
	results, err := e.Search("estate", Options{})
	if err != nil || len(results) != 1 {
		t.Fatalf("results = %v, err = %v", results, err)
	}
	// Unconfigured fields get neutral boost 1.
	if results[0].Score != 1 {
		t.Errorf("score = %g, want 1", results[0].Score)
	}
}
