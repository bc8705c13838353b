// Package ranker scores and orders candidate documents by TF-IDF relevance.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
)

// RelevanceEpsilon is the relevance difference below which two documents
// are ordered by rating instead.
const RelevanceEpsilon = 1e-6

// IDF returns ln(totalDocs/docFreq). docFreq must be at least 1; the index
// only asks for terms that some live document contains.
func IDF(totalDocs int, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Rank turns accumulated relevance scores into results ordered by
// descending relevance, then descending rating, truncated to limit.
func Rank(scores map[int]float64, rating func(id int) int, limit int) []document.Document {
	result := make([]document.Document, 0, len(scores))
	for id, score := range scores {
		result = append(result, document.Document{
			ID:        id,
			Relevance: score,
			Rating:    rating(id),
		})
	}
	Sort(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Sort orders docs in place. Equal relevance and rating fall back to
// ascending id so the order does not depend on map iteration.
func Sort(docs []document.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
}

func Less(a, b document.Document) bool {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	}
	return a.Relevance > b.Relevance
}
