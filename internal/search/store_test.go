package search

import (
	"errors"
	"testing"

	apperrors "github.com/fattits30-dev/solicitor-search/pkg/errors"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore()
	s.Put(Document{ID: "doc1", Fields: map[string]string{"title": "Harrison Estate"}})

	doc, err := s.Get("doc1")
	if err != nil {
		t.Fatalf("Get(doc1) error: %v", err)
	}
	if doc.Fields["title"] != "Harrison Estate" {
		t.Errorf("title = %q", doc.Fields["title"])
	}
}

func TestStoreGetMissingReturnsNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get("ghost")
	if !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrDocumentNotFound", err)
	}
}

func TestStorePutReplaces(t *testing.T) {
	s := NewStore()
	s.Put(Document{ID: "doc1", Fields: map[string]string{"title": "old"}})
	s.Put(Document{ID: "doc1", Fields: map[string]string{"title": "new"}})
	doc, _ := s.Get("doc1")
	if doc.Fields["title"] != "new" {
		t.Errorf("title = %q, want new", doc.Fields["title"])
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	s := NewStore()
	s.Put(Document{ID: "doc1"})
	s.Delete("doc1")
	s.Delete("doc1")
	if s.Contains("doc1") {
		t.Error("doc1 should be gone")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStoreSnapshotsDocuments(t *testing.T) {
	// Mutating the caller's map after Put, or the returned map after Get,
	// must not affect the stored copy.
	s := NewStore()
	fields := map[string]string{"title": "original"}
	s.Put(Document{ID: "doc1", Fields: fields})
	fields["title"] = "mutated by caller"

	doc, _ := s.Get("doc1")
	if doc.Fields["title"] != "original" {
		t.Errorf("stored copy mutated via caller's map: %q", doc.Fields["title"])
	}

	doc.Fields["title"] = "mutated via result"
	again, _ := s.Get("doc1")
	if again.Fields["title"] != "original" {
		t.Errorf("stored copy mutated via result map: %q", again.Fields["title"])
	}
}
