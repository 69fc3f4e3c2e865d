// Package query turns the terms of a user query into the set of indexed
// terms they match, under up to three modes: exact lookup, prefix expansion
// ("search as you type"), and edit-distance-bounded fuzzy matching. Each
// match carries a quality factor in (0, 1] that the scorer multiplies into
// the relevance score.
package query

import (
	"sort"
	"unicode/utf8"

	"github.com/fattits30-dev/solicitor-search/internal/search/index"
)

// Mode identifies how a query term matched an indexed term.
type Mode int

const (
	ModeExact Mode = iota
	ModePrefix
	ModeFuzzy
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePrefix:
		return "prefix"
	case ModeFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// TermMatch records that QueryTerm matched the indexed Term under Mode.
// Quality is 1.0 for exact matches, len(query)/len(term) for prefix matches,
// and 1 - distance/max(len(query), len(term)) for fuzzy matches.
type TermMatch struct {
	QueryTerm string
	Term      string
	Mode      Mode
	Distance  int
	Quality   float64
}

// Expander resolves query terms against the inverted index's term
// vocabulary.
type Expander struct {
	idx *index.Index
}

// NewExpander creates an Expander over idx.
func NewExpander(idx *index.Index) *Expander {
	return &Expander{idx: idx}
}

// Expand returns every indexed term matching queryTerm. Prefix matching is
// attempted when prefix is true; fuzzy matching when maxEdits > 0. When the
// same indexed term matches under several modes, only the highest-quality
// match is kept. Results are ordered by term for determinism.
func (e *Expander) Expand(queryTerm string, prefix bool, maxEdits int) []TermMatch {
	if queryTerm == "" {
		return nil
	}
	matches := make(map[string]TermMatch)

	if e.idx.Has(queryTerm) {
		matches[queryTerm] = TermMatch{
			QueryTerm: queryTerm,
			Term:      queryTerm,
			Mode:      ModeExact,
			Quality:   1.0,
		}
	}

	if prefix {
		qlen := utf8.RuneCountInString(queryTerm)
		for _, term := range e.idx.PrefixTerms(queryTerm) {
			if term == queryTerm {
				continue
			}
			m := TermMatch{
				QueryTerm: queryTerm,
				Term:      term,
				Mode:      ModePrefix,
				Quality:   float64(qlen) / float64(utf8.RuneCountInString(term)),
			}
			keepBest(matches, m)
		}
	}

	if maxEdits > 0 {
		qlen := utf8.RuneCountInString(queryTerm)
		for _, term := range e.idx.Terms() {
			if term == queryTerm {
				continue
			}
			dist, ok := withinDistance(queryTerm, term, maxEdits)
			if !ok {
				continue
			}
			tlen := utf8.RuneCountInString(term)
			longer := qlen
			if tlen > longer {
				longer = tlen
			}
			m := TermMatch{
				QueryTerm: queryTerm,
				Term:      term,
				Mode:      ModeFuzzy,
				Distance:  dist,
				Quality:   1.0 - float64(dist)/float64(longer),
			}
			keepBest(matches, m)
		}
	}

	result := make([]TermMatch, 0, len(matches))
	for _, m := range matches {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Term < result[j].Term
	})
	return result
}

// keepBest stores m unless an equal-or-better match for the same indexed
// term already exists. Ties prefer the earlier mode (exact > prefix >
// fuzzy).
func keepBest(matches map[string]TermMatch, m TermMatch) {
	existing, ok := matches[m.Term]
	if !ok || m.Quality > existing.Quality {
		matches[m.Term] = m
	}
}
