// Package ingest feeds the search engine from the practice database: a
// bootstrap loader rebuilds the index from Postgres at startup, and a Kafka
// consumer applies incremental record changes afterwards. The engine itself
// never initiates fetches; this package is the host-side glue deciding when
// to add, update, and remove documents.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/fattits30-dev/solicitor-search/internal/search"
)

// Record kinds. Search document ids are prefixed with the kind so records
// from different tables can never collide in the store.
const (
	KindCase     = "case"
	KindDocument = "document"
	KindEmail    = "email"
	KindNote     = "note"
)

// CaseRecord mirrors the cases table.
type CaseRecord struct {
	ID          string    `json:"id"`
	CaseNumber  string    `json:"case_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ClientName  string    `json:"client_name"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SearchDocument converts the case into an indexable document. The case
// number is indexed with the title so citation-style lookups ("2024-HC-0113")
// hit directly.
func (r CaseRecord) SearchDocument() search.Document {
	return search.Document{
		ID: DocID(KindCase, r.ID),
		Fields: map[string]string{
			"title":   r.Title + " " + r.CaseNumber,
			"content": r.Description + " " + r.ClientName,
			"tags":    strings.Join(r.Tags, " "),
		},
		Stored: map[string]string{
			"kind":        KindCase,
			"case_number": r.CaseNumber,
			"client_name": r.ClientName,
			"status":      r.Status,
			"updated_at":  r.UpdatedAt.UTC().Format(time.RFC3339),
		},
	}
}

// DocumentRecord mirrors the documents table.
type DocumentRecord struct {
	ID           string    `json:"id"`
	CaseID       string    `json:"case_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DocumentType string    `json:"document_type"`
	Tags         []string  `json:"tags"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SearchDocument converts the document record into an indexable document.
func (r DocumentRecord) SearchDocument() search.Document {
	return search.Document{
		ID: DocID(KindDocument, r.ID),
		Fields: map[string]string{
			"title":   r.Title,
			"content": r.Description,
			"tags":    strings.Join(r.Tags, " "),
		},
		Stored: map[string]string{
			"kind":          KindDocument,
			"case_id":       r.CaseID,
			"document_type": r.DocumentType,
			"updated_at":    r.UpdatedAt.UTC().Format(time.RFC3339),
		},
	}
}

// EmailRecord mirrors the emails table.
type EmailRecord struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Sender     string    `json:"sender"`
	ReceivedAt time.Time `json:"received_at"`
}

// SearchDocument converts the email into an indexable document. The subject
// plays the title role so it picks up the title boost.
func (r EmailRecord) SearchDocument() search.Document {
	return search.Document{
		ID: DocID(KindEmail, r.ID),
		Fields: map[string]string{
			"title":   r.Subject,
			"content": r.Body,
		},
		Stored: map[string]string{
			"kind":        KindEmail,
			"sender":      r.Sender,
			"received_at": r.ReceivedAt.UTC().Format(time.RFC3339),
		},
	}
}

// NoteRecord mirrors the notes table (case facts and annotations).
type NoteRecord struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchDocument converts the note into an indexable document.
func (r NoteRecord) SearchDocument() search.Document {
	return search.Document{
		ID: DocID(KindNote, r.ID),
		Fields: map[string]string{
			"content": r.Content,
		},
		Stored: map[string]string{
			"kind":       KindNote,
			"case_id":    r.CaseID,
			"updated_at": r.UpdatedAt.UTC().Format(time.RFC3339),
		},
	}
}

// DocID builds the kind-prefixed search document id for a record.
func DocID(kind, recordID string) string {
	return kind + ":" + recordID
}

// Change actions carried on the record-changes topic.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ChangeEvent is the Kafka message payload describing one record mutation in
// the practice database. Exactly one of the record pointers is set for an
// upsert; deletes carry only Kind and ID.
type ChangeEvent struct {
	Kind     string          `json:"kind"`
	Action   string          `json:"action"`
	ID       string          `json:"id"`
	Case     *CaseRecord     `json:"case,omitempty"`
	Document *DocumentRecord `json:"document,omitempty"`
	Email    *EmailRecord    `json:"email,omitempty"`
	Note     *NoteRecord     `json:"note,omitempty"`
}

// SearchDocument returns the indexable document for an upsert event.
func (ev ChangeEvent) SearchDocument() (search.Document, error) {
	switch ev.Kind {
	case KindCase:
		if ev.Case == nil {
			return search.Document{}, fmt.Errorf("case upsert event %s has no payload", ev.ID)
		}
		return ev.Case.SearchDocument(), nil
	case KindDocument:
		if ev.Document == nil {
			return search.Document{}, fmt.Errorf("document upsert event %s has no payload", ev.ID)
		}
		return ev.Document.SearchDocument(), nil
	case KindEmail:
		if ev.Email == nil {
			return search.Document{}, fmt.Errorf("email upsert event %s has no payload", ev.ID)
		}
		return ev.Email.SearchDocument(), nil
	case KindNote:
		if ev.Note == nil {
			return search.Document{}, fmt.Errorf("note upsert event %s has no payload", ev.ID)
		}
		return ev.Note.SearchDocument(), nil
	default:
		return search.Document{}, fmt.Errorf("unknown record kind %q", ev.Kind)
	}
}
