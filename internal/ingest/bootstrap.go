package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/fattits30-dev/solicitor-search/internal/search"
)

// Loader rebuilds the search index from the practice database. The four
// record kinds are loaded concurrently; the engine is only written once all
// queries succeed, so a failed bootstrap leaves the index empty rather than
// partially filled.
type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLoader creates a Loader over db.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{
		db:     db,
		logger: slog.Default().With("component", "bootstrap-loader"),
	}
}

// Load queries all record tables and indexes every record into engine. It
// returns the number of documents indexed.
func (l *Loader) Load(ctx context.Context, engine *search.Engine) (int, error) {
	var mu sync.Mutex
	var docs []search.Document
	collect := func(batch []search.Document) {
		mu.Lock()
		docs = append(docs, batch...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		batch, err := l.loadCases(ctx)
		if err != nil {
			return fmt.Errorf("loading cases: %w", err)
		}
		collect(batch)
		return nil
	})
	g.Go(func() error {
		batch, err := l.loadDocuments(ctx)
		if err != nil {
			return fmt.Errorf("loading documents: %w", err)
		}
		collect(batch)
		return nil
	})
	g.Go(func() error {
		batch, err := l.loadEmails(ctx)
		if err != nil {
			return fmt.Errorf("loading emails: %w", err)
		}
		collect(batch)
		return nil
	})
	g.Go(func() error {
		batch, err := l.loadNotes(ctx)
		if err != nil {
			return fmt.Errorf("loading notes: %w", err)
		}
		collect(batch)
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := engine.AddDocuments(docs); err != nil {
		return 0, fmt.Errorf("indexing bootstrap documents: %w", err)
	}
	l.logger.Info("index bootstrapped",
		"documents", len(docs),
		"terms", engine.TermCount(),
	)
	return len(docs), nil
}

func (l *Loader) loadCases(ctx context.Context) ([]search.Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, case_number, title, COALESCE(description, ''),
		       client_name, status, COALESCE(tags, '{}'), updated_at
		FROM cases`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []search.Document
	for rows.Next() {
		var rec CaseRecord
		if err := rows.Scan(&rec.ID, &rec.CaseNumber, &rec.Title, &rec.Description,
			&rec.ClientName, &rec.Status, pq.Array(&rec.Tags), &rec.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec.SearchDocument())
	}
	return docs, rows.Err()
}

func (l *Loader) loadDocuments(ctx context.Context) ([]search.Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, COALESCE(case_id::text, ''), COALESCE(title, ''),
		       COALESCE(description, ''), document_type, COALESCE(tags, '{}'), updated_at
		FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []search.Document
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.CaseID, &rec.Title, &rec.Description,
			&rec.DocumentType, pq.Array(&rec.Tags), &rec.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec.SearchDocument())
	}
	return docs, rows.Err()
}

func (l *Loader) loadEmails(ctx context.Context) ([]search.Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, subject, body, sender, received_at
		FROM emails`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []search.Document
	for rows.Next() {
		var rec EmailRecord
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Body, &rec.Sender, &rec.ReceivedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec.SearchDocument())
	}
	return docs, rows.Err()
}

func (l *Loader) loadNotes(ctx context.Context) ([]search.Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, COALESCE(case_id::text, ''), content, updated_at
		FROM notes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []search.Document
	for rows.Next() {
		var rec NoteRecord
		if err := rows.Scan(&rec.ID, &rec.CaseID, &rec.Content, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec.SearchDocument())
	}
	return docs, rows.Err()
}
