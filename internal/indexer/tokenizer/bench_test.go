package tokenizer

import (
	"strings"
	"testing"
)

var sampleTexts = map[string]string{
	"short":  "the quick brown fox jumps over the lazy dog",
	"medium": "distributed search engines process queries across multiple shards to achieve horizontal scalability and each shard maintains its own inverted index",
	"long":   strings.Repeat("information retrieval systems combine tokenization and stop word removal to normalize text into searchable terms ", 20),
}

func BenchmarkSplitIntoWordsNoStop(b *testing.B) {
	stop, err := ParseStopWords("the a and to its over into")
	if err != nil {
		b.Fatal(err)
	}
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				if _, err := stop.SplitIntoWordsNoStop(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
