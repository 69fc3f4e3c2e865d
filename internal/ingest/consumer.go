package ingest

import (
	"context"
	"log/slog"

	"github.com/fattits30-dev/solicitor-search/internal/search"
	"github.com/fattits30-dev/solicitor-search/pkg/kafka"
	"github.com/fattits30-dev/solicitor-search/pkg/metrics"
)

// CacheInvalidator flushes cached query results after the index changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// HandleChange returns a Kafka MessageHandler that applies record change
// events to the engine. Malformed events are logged and skipped rather than
// retried — the producer is the fixer of bad payloads, not this consumer.
// inv and m may be nil.
func HandleChange(engine *search.Engine, inv CacheInvalidator, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "change-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChangeEvent](value)
		if err != nil {
			logger.Error("failed to decode change event",
				"error", err,
				"key", string(key),
			)
			countEvent(m, "unknown", "decode_error")
			return nil
		}

		switch event.Action {
		case ActionUpsert:
			doc, err := event.SearchDocument()
			if err != nil {
				logger.Error("invalid upsert event", "error", err, "kind", event.Kind, "id", event.ID)
				countEvent(m, event.Action, "invalid")
				return nil
			}
			if err := engine.AddDocuments([]search.Document{doc}); err != nil {
				logger.Error("failed to index record",
					"kind", event.Kind,
					"id", event.ID,
					"error", err,
				)
				countEvent(m, event.Action, "error")
				return nil
			}
			if m != nil {
				m.DocsIndexedTotal.Inc()
			}
			logger.Info("record indexed", "kind", event.Kind, "doc_id", doc.ID)

		case ActionDelete:
			engine.RemoveDocument(DocID(event.Kind, event.ID))
			if m != nil {
				m.DocsRemovedTotal.Inc()
			}
			logger.Info("record removed", "kind", event.Kind, "id", event.ID)

		default:
			logger.Warn("unknown change action", "action", event.Action, "kind", event.Kind)
			countEvent(m, event.Action, "unknown_action")
			return nil
		}

		countEvent(m, event.Action, "ok")
		if m != nil {
			m.IndexDocCount.Set(float64(engine.DocCount()))
			m.IndexTermCount.Set(float64(engine.TermCount()))
		}
		if inv != nil {
			if err := inv.Invalidate(ctx); err != nil {
				logger.Error("cache invalidation failed", "error", err)
			}
		}
		return nil
	}
}

func countEvent(m *metrics.Metrics, action, status string) {
	if m != nil {
		m.ChangeEventsTotal.WithLabelValues(action, status).Inc()
	}
}
