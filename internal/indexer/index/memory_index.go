// Package index holds the document store and the inverted index the search
// server ranks against.
//
// An Index keeps two mirrored maps, term -> document -> frequency and
// document -> term -> frequency, next to the per-document records and the
// ascending list of live ids. AddDocument and RemoveDocument update all four
// together. The Index holds no lock: callers must not run a mutation
// concurrently with any other call on the same Index. Read methods do not
// mutate state and may run concurrently with each other.
package index

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// MaxResultDocumentCount caps every FindTopDocuments result.
const MaxResultDocumentCount = 5

type Index struct {
	stopWords tokenizer.StopWords
	termDocs  map[string]map[int]float64
	docTerms  map[int]map[string]float64
	records   map[int]document.Record
	ids       []int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Index)

func WithMetrics(m *metrics.Metrics) Option {
	return func(idx *Index) {
		idx.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(idx *Index) {
		idx.logger = l
	}
}

func New(stopWords tokenizer.StopWords, opts ...Option) *Index {
	idx := &Index{
		stopWords: stopWords,
		termDocs:  make(map[string]map[int]float64),
		docTerms:  make(map[int]map[string]float64),
		records:   make(map[int]document.Record),
		logger:    slog.Default().With("component", "index"),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// NewFromText builds an Index whose stop words are the space-separated
// words of stopWordsText.
func NewFromText(stopWordsText string, opts ...Option) (*Index, error) {
	sw, err := tokenizer.ParseStopWords(stopWordsText)
	if err != nil {
		return nil, err
	}
	return New(sw, opts...), nil
}

func (idx *Index) AddDocument(id int, text string, status document.Status, ratings []int) error {
	if id < 0 {
		idx.metrics.DocumentRejected("invalid_id")
		return apperrors.Newf(apperrors.ErrInvalidID, "document id %d is negative", id)
	}
	if _, exists := idx.records[id]; exists {
		idx.metrics.DocumentRejected("duplicate_id")
		return apperrors.Newf(apperrors.ErrDuplicateID, "document id %d", id)
	}
	words, err := idx.stopWords.SplitIntoWordsNoStop(text)
	if err != nil {
		idx.metrics.DocumentRejected("invalid_word")
		return err
	}

	freqs := make(map[string]float64, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, w := range words {
			freqs[w] += inv
		}
	}

	for term, tf := range freqs {
		docs, ok := idx.termDocs[term]
		if !ok {
			docs = make(map[int]float64)
			idx.termDocs[term] = docs
		}
		docs[id] = tf
	}
	idx.docTerms[id] = freqs
	idx.records[id] = document.NewRecord(status, ratings)
	pos, _ := slices.BinarySearch(idx.ids, id)
	idx.ids = slices.Insert(idx.ids, pos, id)

	idx.metrics.DocumentAdded(len(idx.ids))
	idx.logger.Debug("document added",
		"doc_id", id,
		"status", status,
		"word_count", len(words),
		"distinct_terms", len(freqs),
	)
	return nil
}

// RemoveDocument deletes a live document. Unknown ids are ignored.
func (idx *Index) RemoveDocument(id int) {
	freqs, ok := idx.docTerms[id]
	if !ok {
		return
	}
	for term := range freqs {
		docs := idx.termDocs[term]
		delete(docs, id)
		if len(docs) == 0 {
			delete(idx.termDocs, term)
		}
	}
	delete(idx.docTerms, id)
	delete(idx.records, id)
	if pos, found := slices.BinarySearch(idx.ids, id); found {
		idx.ids = slices.Delete(idx.ids, pos, pos+1)
	}

	idx.metrics.DocumentRemoved(len(idx.ids))
	idx.logger.Debug("document removed", "doc_id", id, "live_documents", len(idx.ids))
}

// FindTopDocuments returns up to MaxResultDocumentCount documents matching
// raw for which predicate holds, best first.
func (idx *Index) FindTopDocuments(raw string, predicate document.Predicate) ([]document.Document, error) {
	start := time.Now()
	q, err := parser.Parse(raw, idx.stopWords)
	if err != nil {
		idx.metrics.ObserveSearch(time.Since(start).Seconds(), 0, err)
		return nil, err
	}
	scores := idx.findAllDocuments(q, predicate)
	result := ranker.Rank(scores, func(id int) int {
		return idx.records[id].Rating
	}, MaxResultDocumentCount)
	idx.metrics.ObserveSearch(time.Since(start).Seconds(), len(result), nil)
	return result, nil
}

func (idx *Index) FindTopDocumentsByStatus(raw string, status document.Status) ([]document.Document, error) {
	return idx.FindTopDocuments(raw, document.StatusIs(status))
}

func (idx *Index) FindTopDocumentsDefault(raw string) ([]document.Document, error) {
	return idx.FindTopDocuments(raw, document.DefaultPredicate())
}

func (idx *Index) findAllDocuments(q *parser.Query, predicate document.Predicate) map[int]float64 {
	scores := make(map[int]float64)
	if q.Empty() {
		return scores
	}
	// Predicate results per candidate so it runs once per document.
	accepted := make(map[int]bool)
	total := len(idx.ids)
	for _, term := range q.Plus {
		docs, ok := idx.termDocs[term]
		if !ok {
			continue
		}
		idf := ranker.IDF(total, len(docs))
		for id, tf := range docs {
			pass, seen := accepted[id]
			if !seen {
				rec := idx.records[id]
				pass = predicate(id, rec.Status, rec.Rating)
				accepted[id] = pass
			}
			if pass {
				scores[id] += tf * idf
			}
		}
	}
	for _, term := range q.Minus {
		for id := range idx.termDocs[term] {
			delete(scores, id)
		}
	}
	return scores
}

// MatchDocument returns the plus terms of raw found in document id, in
// ascending order. The list is empty when any minus term occurs in the
// document.
func (idx *Index) MatchDocument(raw string, id int) ([]string, document.Status, error) {
	rec, ok := idx.records[id]
	if !ok {
		return nil, document.Actual, apperrors.Newf(apperrors.ErrDocumentNotFound, "document id %d", id)
	}
	q, err := parser.Parse(raw, idx.stopWords)
	if err != nil {
		return nil, rec.Status, err
	}
	freqs := idx.docTerms[id]
	for _, term := range q.Minus {
		if _, hit := freqs[term]; hit {
			return []string{}, rec.Status, nil
		}
	}
	matched := make([]string, 0, len(q.Plus))
	for _, term := range q.Plus {
		if _, hit := freqs[term]; hit {
			matched = append(matched, term)
		}
	}
	return matched, rec.Status, nil
}

// WordFrequencies returns a copy of the term frequencies of document id, or
// an empty map when id is not live.
func (idx *Index) WordFrequencies(id int) map[string]float64 {
	freqs, ok := idx.docTerms[id]
	if !ok {
		return map[string]float64{}
	}
	return maps.Clone(freqs)
}

func (idx *Index) DocumentCount() int {
	return len(idx.ids)
}

// IDs yields live document ids in ascending order. The index must not be
// mutated while iterating.
func (idx *Index) IDs() iter.Seq[int] {
	return slices.Values(idx.ids)
}

func (idx *Index) StopWords() tokenizer.StopWords {
	return idx.stopWords
}
