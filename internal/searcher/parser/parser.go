// Package parser turns raw query text into plus and minus term sets.
package parser

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Query holds the classified terms of a raw query. Both slices are sorted
// and duplicate-free. A term may appear in both.
type Query struct {
	Plus  []string
	Minus []string
}

// Empty reports whether the query has no plus terms and so cannot match.
func (q *Query) Empty() bool {
	return len(q.Plus) == 0
}

type queryWord struct {
	data    string
	isMinus bool
	isStop  bool
}

// Parse splits raw on spaces and classifies each word. A single leading '-'
// marks a minus term; the remainder must be non-empty, must not start with
// another '-' and must be a valid word. Stop words are dropped from both
// sets.
func Parse(raw string, stopWords tokenizer.StopWords) (*Query, error) {
	q := &Query{
		Plus:  make([]string, 0),
		Minus: make([]string, 0),
	}
	for _, text := range tokenizer.SplitIntoWords(raw) {
		w, err := parseQueryWord(text, stopWords)
		if err != nil {
			return nil, err
		}
		if w.isStop {
			continue
		}
		if w.isMinus {
			q.Minus = append(q.Minus, w.data)
		} else {
			q.Plus = append(q.Plus, w.data)
		}
	}
	slices.Sort(q.Plus)
	q.Plus = slices.Compact(q.Plus)
	slices.Sort(q.Minus)
	q.Minus = slices.Compact(q.Minus)
	return q, nil
}

func parseQueryWord(text string, stopWords tokenizer.StopWords) (queryWord, error) {
	word := text
	isMinus := false
	if word[0] == '-' {
		isMinus = true
		word = word[1:]
	}
	if word == "" || word[0] == '-' {
		return queryWord{}, apperrors.Newf(apperrors.ErrInvalidWord, "query word %q is malformed", text)
	}
	if err := tokenizer.ValidateWord(word); err != nil {
		return queryWord{}, err
	}
	return queryWord{
		data:    word,
		isMinus: isMinus,
		isStop:  stopWords.Contains(word),
	}, nil
}
