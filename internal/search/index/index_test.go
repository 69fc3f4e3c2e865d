package index

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestInsertAndLookup(t *testing.T) {
	ix := New()
	ix.Insert("estate", "doc1", "title", 2)
	ix.Insert("estate", "doc2", "content", 1)
	ix.Insert("probate", "doc1", "content", 3)

	postings := ix.Lookup("estate")
	want := PostingList{
		{DocID: "doc1", Field: "title", Frequency: 2},
		{DocID: "doc2", Field: "content", Frequency: 1},
	}
	if !reflect.DeepEqual(postings, want) {
		t.Errorf("Lookup(estate) = %v, want %v", postings, want)
	}
	if got := ix.Lookup("missing"); got != nil {
		t.Errorf("Lookup(missing) = %v, want nil", got)
	}
}

func TestInsertOverwritesFrequency(t *testing.T) {
	ix := New()
	ix.Insert("estate", "doc1", "title", 2)
	ix.Insert("estate", "doc1", "title", 5)

	postings := ix.Lookup("estate")
	if len(postings) != 1 {
		t.Fatalf("expected a single posting, got %v", postings)
	}
	if postings[0].Frequency != 5 {
		t.Errorf("frequency = %d, want 5 (overwrite, not accumulate)", postings[0].Frequency)
	}
}

func TestInsertIgnoresInvalid(t *testing.T) {
	ix := New()
	ix.Insert("", "doc1", "title", 1)
	ix.Insert("estate", "", "title", 1)
	ix.Insert("estate", "doc1", "title", 0)
	if ix.TermCount() != 0 || ix.DocCount() != 0 {
		t.Errorf("invalid inserts mutated the index: %d terms, %d docs", ix.TermCount(), ix.DocCount())
	}
}

func TestRemoveDocumentPurgesDeadTerms(t *testing.T) {
	ix := New()
	ix.Insert("estate", "doc1", "title", 1)
	ix.Insert("estate", "doc2", "title", 1)
	ix.Insert("probate", "doc1", "content", 1)

	ix.RemoveDocument("doc1")

	if ix.Has("probate") {
		t.Error("probate should be gone: doc1 was its only document")
	}
	if !ix.Has("estate") {
		t.Error("estate should survive: doc2 still references it")
	}
	postings := ix.Lookup("estate")
	if len(postings) != 1 || postings[0].DocID != "doc2" {
		t.Errorf("Lookup(estate) = %v, want only doc2", postings)
	}
	if ix.DocCount() != 1 {
		t.Errorf("DocCount() = %d, want 1", ix.DocCount())
	}
}

func TestRemoveUnknownDocumentIsNoOp(t *testing.T) {
	ix := New()
	ix.Insert("estate", "doc1", "title", 1)
	ix.RemoveDocument("ghost")
	if ix.TermCount() != 1 || ix.DocCount() != 1 {
		t.Errorf("no-op removal changed state: %d terms, %d docs", ix.TermCount(), ix.DocCount())
	}
}

func TestPrefixTerms(t *testing.T) {
	ix := New()
	for _, term := range []string{"estate", "estimate", "estoppel", "evidence", "probate"} {
		ix.Insert(term, "doc1", "content", 1)
	}

	got := ix.PrefixTerms("est")
	want := []string{"estate", "estimate", "estoppel"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PrefixTerms(est) = %v, want %v", got, want)
	}
	if got := ix.PrefixTerms("zz"); got != nil {
		t.Errorf("PrefixTerms(zz) = %v, want nil", got)
	}
}

func TestTermsSortedAfterMutations(t *testing.T) {
	ix := New()
	ix.Insert("probate", "doc1", "content", 1)
	ix.Insert("appeal", "doc1", "content", 1)
	ix.Insert("mediation", "doc2", "content", 1)
	ix.RemoveDocument("doc1")
	ix.Insert("brief", "doc3", "content", 1)

	got := ix.Terms()
	want := []string{"brief", "mediation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestConcurrentInsertAndLookup(t *testing.T) {
	ix := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ix.Insert(fmt.Sprintf("term%d", j), fmt.Sprintf("doc%d", n), "content", 1)
				ix.Lookup(fmt.Sprintf("term%d", j))
				ix.PrefixTerms("term")
			}
		}(i)
	}
	wg.Wait()

	if ix.TermCount() != 100 {
		t.Errorf("TermCount() = %d, want 100", ix.TermCount())
	}
	if ix.DocCount() != 8 {
		t.Errorf("DocCount() = %d, want 8", ix.DocCount())
	}
}
