// Package dedup removes documents whose distinct term set equals that of a
// lower-numbered live document.
package dedup

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/cespare/xxhash/v2"
)

// Index is the part of the index the detector reads and mutates.
type Index interface {
	IDs() iter.Seq[int]
	WordFrequencies(id int) map[string]float64
	RemoveDocument(id int)
}

// DuplicateEvent describes one removed document and the live document it
// duplicated.
type DuplicateEvent struct {
	ID          int `json:"document_id"`
	DuplicateOf int `json:"duplicate_of"`
}

// Reporter receives one event per removed duplicate.
type Reporter interface {
	DuplicateRemoved(DuplicateEvent)
}

type options struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	reporter Reporter
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithReporter(r Reporter) Option {
	return func(o *options) { o.reporter = r }
}

type fingerprint struct {
	terms []string
	owner int
}

// RemoveDuplicates scans idx in ascending id order and removes every
// document whose term set was already seen. It returns the removed ids in
// ascending order.
func RemoveDuplicates(idx Index, opts ...Option) []int {
	o := options{logger: slog.Default().With("component", "dedup")}
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[uint64][]fingerprint)
	var removed []DuplicateEvent
	for id := range idx.IDs() {
		terms := termSet(idx.WordFrequencies(id))
		key := digest(terms)
		if owner, ok := lookup(seen[key], terms); ok {
			removed = append(removed, DuplicateEvent{ID: id, DuplicateOf: owner})
			continue
		}
		seen[key] = append(seen[key], fingerprint{terms: terms, owner: id})
	}

	out := make([]int, 0, len(removed))
	for _, ev := range removed {
		idx.RemoveDocument(ev.ID)
		o.logger.Info("found duplicate document id",
			"doc_id", ev.ID,
			"duplicate_of", ev.DuplicateOf,
		)
		o.metrics.DuplicateRemoved()
		if o.reporter != nil {
			o.reporter.DuplicateRemoved(ev)
		}
		out = append(out, ev.ID)
	}
	return out
}

func termSet(freqs map[string]float64) []string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

// digest hashes the sorted terms with a 0 separator. Terms never contain
// control characters, so the separator is unambiguous.
func digest(terms []string) uint64 {
	h := xxhash.New()
	for _, term := range terms {
		_, _ = h.WriteString(term)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func lookup(bucket []fingerprint, terms []string) (int, bool) {
	for _, fp := range bucket {
		if slices.Equal(fp.terms, terms) {
			return fp.owner, true
		}
	}
	return 0, false
}
