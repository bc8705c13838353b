package index

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

const benchText = "search engine with distributed indexing and query processing over a small corpus"

func benchIndex(b *testing.B, n int) *Index {
	b.Helper()
	idx, err := NewFromText("with and a over", WithLogger(logger.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("%s term%d term%d", benchText, i%97, i%13)
		if err := idx.AddDocument(i, text, document.Actual, []int{i % 5, 3}); err != nil {
			b.Fatal(err)
		}
	}
	return idx
}

// BenchmarkAddDocument measures per-document insert throughput.
func BenchmarkAddDocument(b *testing.B) {
	idx, err := NewFromText("with and a over", WithLogger(logger.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := idx.AddDocument(i, benchText, document.Actual, []int{1, 2, 3}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindTopDocuments measures query latency over 10 000 documents.
func BenchmarkFindTopDocuments(b *testing.B) {
	idx := benchIndex(b, 10000)
	queries := []struct {
		name  string
		query string
	}{
		{"single_term", "term7"},
		{"multi_term", "distributed query term7 term3"},
		{"with_minus", "search engine -term5"},
		{"no_match", "missing"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := idx.FindTopDocumentsDefault(q.query); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFindTopDocumentsParallel measures concurrent read throughput.
func BenchmarkFindTopDocumentsParallel(b *testing.B) {
	idx := benchIndex(b, 10000)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := idx.FindTopDocumentsDefault("distributed term7 -term3"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkRemoveDocument(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		idx := benchIndex(b, 1000)
		b.StartTimer()
		for id := 0; id < 1000; id++ {
			idx.RemoveDocument(id)
		}
	}
}
