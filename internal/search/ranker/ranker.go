// Package ranker orders scored documents. Scores are computed by the engine
// as boost * frequency * match-quality per posting; the ranker's job is the
// deterministic ordering: descending score, ascending document id on ties,
// optionally keeping only the top k via a bounded min-heap.
package ranker

import (
	"container/heap"
	"math"
	"sort"
)

// ScoredDoc pairs a document id with its relevance score.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank converts the per-document score accumulator into an ordered slice.
// When limit > 0 only the top limit documents are returned.
func Rank(scores map[string]float64, limit int) []ScoredDoc {
	if len(scores) == 0 {
		return []ScoredDoc{}
	}
	if limit > 0 && limit < len(scores) {
		return topK(scores, limit)
	}

	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{DocID: docID, Score: round(score)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	return result
}

// topK selects the best limit documents with a min-heap, avoiding a full
// sort of the candidate set.
func topK(scores map[string]float64, limit int) []ScoredDoc {
	h := &scoredDocHeap{}
	heap.Init(h)
	for docID, score := range scores {
		heap.Push(h, ScoredDoc{DocID: docID, Score: round(score)})
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

// round keeps scores at 4 decimal places so serialized results are stable.
func round(score float64) float64 {
	return math.Round(score*10000) / 10000
}

// scoredDocHeap is a min-heap under the result ordering: the root is the
// worst-ranked document and is evicted first.
type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
