// Package search is the public face of the in-memory full-text engine: an
// Engine owns one inverted index and one document store, keeps them
// mutually consistent, and exposes add/update/remove/search.
package search

// Document is the unit of indexing. Fields holds the indexed free-text
// fields by name (tag lists are joined into a single field by the caller);
// Stored holds display-only metadata that is kept but never indexed.
type Document struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	Stored map[string]string `json:"stored,omitempty"`
}

// clone returns a deep copy so stored documents are a snapshot, immune to
// later mutation by the caller.
func (d Document) clone() Document {
	c := Document{ID: d.ID}
	if d.Fields != nil {
		c.Fields = make(map[string]string, len(d.Fields))
		for k, v := range d.Fields {
			c.Fields[k] = v
		}
	}
	if d.Stored != nil {
		c.Stored = make(map[string]string, len(d.Stored))
		for k, v := range d.Stored {
			c.Stored[k] = v
		}
	}
	return c
}

// Result is one ranked search hit: the document id, its relevance score,
// and the stored snapshot of the document's fields.
type Result struct {
	DocID  string            `json:"doc_id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
	Stored map[string]string `json:"stored,omitempty"`
}

// Options controls a single search call. The zero value means: exact
// matching only, engine default result limit.
type Options struct {
	// Prefix enables matching indexed terms that extend a query term.
	Prefix bool `json:"prefix"`

	// Fuzziness bounds approximate matching. 0 disables it; a value >= 1
	// is an absolute maximum edit distance; a value in (0, 1) is a
	// fraction of each query term's length, so short terms tolerate fewer
	// edits than long ones.
	Fuzziness float64 `json:"fuzziness"`

	// Limit caps the number of results. 0 means the engine default.
	Limit int `json:"limit"`

	// Boosts overrides the engine's per-field weights for this call.
	Boosts map[string]float64 `json:"boosts,omitempty"`
}
