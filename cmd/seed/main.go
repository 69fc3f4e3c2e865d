// Command seed creates the practice database schema, inserts a set of
// sample legal records, and publishes matching change events to Kafka so a
// running searchd picks them up without a restart. Intended for local
// development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/fattits30-dev/solicitor-search/internal/ingest"
	"github.com/fattits30-dev/solicitor-search/pkg/config"
	"github.com/fattits30-dev/solicitor-search/pkg/kafka"
	"github.com/fattits30-dev/solicitor-search/pkg/logger"
	"github.com/fattits30-dev/solicitor-search/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id          TEXT PRIMARY KEY,
	case_number TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT,
	client_name TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'open',
	tags        TEXT[],
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	case_id       TEXT REFERENCES cases(id),
	title         TEXT,
	description   TEXT,
	document_type TEXT NOT NULL,
	tags          TEXT[],
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS emails (
	id          TEXT PRIMARY KEY,
	subject     TEXT NOT NULL,
	body        TEXT NOT NULL,
	sender      TEXT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	case_id    TEXT REFERENCES cases(id),
	content    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	skipKafka := flag.Bool("skip-kafka", false, "insert records without publishing change events")
	flag.Parse()

	if err := run(*configPath, *skipKafka); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, skipKafka bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, "text")
	log := logger.WithComponent("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()

	if _, err := pg.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	now := time.Now().UTC()
	cases := sampleCases(now)
	documents := sampleDocuments(now)
	emails := sampleEmails(now)
	notes := sampleNotes(now)

	if err := insertRecords(ctx, pg, cases, documents, emails, notes); err != nil {
		return err
	}
	log.Info("records inserted",
		"cases", len(cases),
		"documents", len(documents),
		"emails", len(emails),
		"notes", len(notes),
	)

	if skipKafka {
		return nil
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RecordChanges)
	defer producer.Close()

	events := make([]kafka.Event, 0, len(cases)+len(documents)+len(emails)+len(notes))
	for i := range cases {
		events = append(events, kafka.Event{
			Key: ingest.DocID(ingest.KindCase, cases[i].ID),
			Value: ingest.ChangeEvent{
				Kind: ingest.KindCase, Action: ingest.ActionUpsert, ID: cases[i].ID, Case: &cases[i],
			},
		})
	}
	for i := range documents {
		events = append(events, kafka.Event{
			Key: ingest.DocID(ingest.KindDocument, documents[i].ID),
			Value: ingest.ChangeEvent{
				Kind: ingest.KindDocument, Action: ingest.ActionUpsert, ID: documents[i].ID, Document: &documents[i],
			},
		})
	}
	for i := range emails {
		events = append(events, kafka.Event{
			Key: ingest.DocID(ingest.KindEmail, emails[i].ID),
			Value: ingest.ChangeEvent{
				Kind: ingest.KindEmail, Action: ingest.ActionUpsert, ID: emails[i].ID, Email: &emails[i],
			},
		})
	}
	for i := range notes {
		events = append(events, kafka.Event{
			Key: ingest.DocID(ingest.KindNote, notes[i].ID),
			Value: ingest.ChangeEvent{
				Kind: ingest.KindNote, Action: ingest.ActionUpsert, ID: notes[i].ID, Note: &notes[i],
			},
		})
	}
	if err := producer.PublishBatch(ctx, events); err != nil {
		return fmt.Errorf("publishing change events: %w", err)
	}
	log.Info("change events published", "count", len(events))
	return nil
}

func insertRecords(
	ctx context.Context,
	pg *postgres.Client,
	cases []ingest.CaseRecord,
	documents []ingest.DocumentRecord,
	emails []ingest.EmailRecord,
	notes []ingest.NoteRecord,
) error {
	for _, c := range cases {
		_, err := pg.DB.ExecContext(ctx, `
			INSERT INTO cases (id, case_number, title, description, client_name, status, tags, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				case_number = EXCLUDED.case_number, title = EXCLUDED.title,
				description = EXCLUDED.description, client_name = EXCLUDED.client_name,
				status = EXCLUDED.status, tags = EXCLUDED.tags, updated_at = EXCLUDED.updated_at`,
			c.ID, c.CaseNumber, c.Title, c.Description, c.ClientName, c.Status, pq.Array(c.Tags), c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting case %s: %w", c.ID, err)
		}
	}
	for _, d := range documents {
		_, err := pg.DB.ExecContext(ctx, `
			INSERT INTO documents (id, case_id, title, description, document_type, tags, updated_at)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				case_id = EXCLUDED.case_id, title = EXCLUDED.title,
				description = EXCLUDED.description, document_type = EXCLUDED.document_type,
				tags = EXCLUDED.tags, updated_at = EXCLUDED.updated_at`,
			d.ID, d.CaseID, d.Title, d.Description, d.DocumentType, pq.Array(d.Tags), d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}
	for _, e := range emails {
		_, err := pg.DB.ExecContext(ctx, `
			INSERT INTO emails (id, subject, body, sender, received_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				subject = EXCLUDED.subject, body = EXCLUDED.body,
				sender = EXCLUDED.sender, received_at = EXCLUDED.received_at`,
			e.ID, e.Subject, e.Body, e.Sender, e.ReceivedAt)
		if err != nil {
			return fmt.Errorf("inserting email %s: %w", e.ID, err)
		}
	}
	for _, n := range notes {
		_, err := pg.DB.ExecContext(ctx, `
			INSERT INTO notes (id, case_id, content, updated_at)
			VALUES ($1, NULLIF($2, ''), $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				case_id = EXCLUDED.case_id, content = EXCLUDED.content,
				updated_at = EXCLUDED.updated_at`,
			n.ID, n.CaseID, n.Content, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting note %s: %w", n.ID, err)
		}
	}
	return nil
}

func sampleCases(now time.Time) []ingest.CaseRecord {
	return []ingest.CaseRecord{
		{
			ID: "c-1001", CaseNumber: "2024-HC-0113",
			Title:       "Harrison Estate Probate",
			Description: "Contested probate over the Harrison estate, disputed codicil dated March 2021",
			ClientName:  "Eleanor Harrison", Status: "open",
			Tags: []string{"probate", "estate", "contested"}, UpdatedAt: now,
		},
		{
			ID: "c-1002", CaseNumber: "2024-CC-0287",
			Title:       "Whitfield Commercial Lease Dispute",
			Description: "Breach of repairing covenant claim against landlord of the Whitfield premises",
			ClientName:  "Whitfield Trading Ltd", Status: "open",
			Tags: []string{"landlord-tenant", "commercial", "lease"}, UpdatedAt: now,
		},
		{
			ID: "c-1003", CaseNumber: "2023-EM-0542",
			Title:       "Okafor Unfair Dismissal",
			Description: "Employment tribunal claim for unfair dismissal and unpaid notice pay",
			ClientName:  "Daniel Okafor", Status: "settled",
			Tags: []string{"employment", "tribunal"}, UpdatedAt: now,
		},
	}
}

func sampleDocuments(now time.Time) []ingest.DocumentRecord {
	return []ingest.DocumentRecord{
		{
			ID: "d-2001", CaseID: "c-1001",
			Title:        "Harrison Will and Codicil",
			Description:  "Certified copy of the last will and testament with the disputed codicil",
			DocumentType: "will",
			Tags:         []string{"probate", "evidence"}, UpdatedAt: now,
		},
		{
			ID: "d-2002", CaseID: "c-1002",
			Title:        "Whitfield Lease Agreement 2019",
			Description:  "Original commercial lease including the schedule of condition",
			DocumentType: "contract",
			Tags:         []string{"lease", "contract"}, UpdatedAt: now,
		},
		{
			ID: "d-2003", CaseID: "c-1003",
			Title:        "Okafor Settlement Agreement",
			Description:  "Executed settlement agreement with confidentiality clause",
			DocumentType: "agreement",
			Tags:         []string{"settlement", "employment"}, UpdatedAt: now,
		},
	}
}

func sampleEmails(now time.Time) []ingest.EmailRecord {
	return []ingest.EmailRecord{
		{
			ID: "e-3001", Subject: "Re: Harrison probate hearing date",
			Body:   "The registry has confirmed the directions hearing for 14 October. Please confirm counsel availability.",
			Sender: "clerk@chambers.example.com", ReceivedAt: now,
		},
		{
			ID: "e-3002", Subject: "Whitfield dilapidations schedule",
			Body:   "Attached is the surveyor's schedule of dilapidations for the Whitfield premises.",
			Sender: "surveyor@buildright.example.com", ReceivedAt: now,
		},
	}
}

func sampleNotes(now time.Time) []ingest.NoteRecord {
	return []ingest.NoteRecord{
		{
			ID: "n-4001", CaseID: "c-1001",
			Content:   "Client confirmed the codicil witness has emigrated; need letters rogatory advice",
			UpdatedAt: now,
		},
		{
			ID: "n-4002", CaseID: "c-1002",
			Content:   "Landlord solicitors proposed mediation; client inclined to accept subject to costs",
			UpdatedAt: now,
		},
	}
}
