// Package tokenizer splits document and query text into words, validates
// them and holds the stop-word set shared by indexing and query parsing.
package tokenizer

import (
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// SplitIntoWords splits text on ASCII spaces. Runs of spaces never produce
// empty words. Other whitespace is part of a word and fails validation.
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
}

// IsValidWord reports whether word contains no ASCII control characters.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// ValidateWord returns ErrInvalidWord for a word carrying control characters.
func ValidateWord(word string) error {
	if !IsValidWord(word) {
		return apperrors.Newf(apperrors.ErrInvalidWord, "word %q contains control characters", word)
	}
	return nil
}

// StopWords is an immutable set of words ignored by indexing and queries.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from words. Empty strings are skipped and
// duplicates collapse.
func NewStopWords(words []string) (StopWords, error) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if err := ValidateWord(w); err != nil {
			return StopWords{}, err
		}
		set[w] = struct{}{}
	}
	return StopWords{words: set}, nil
}

// ParseStopWords builds a set from a space-separated string.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(SplitIntoWords(text))
}

func (s StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.words)
}

// Words returns the stop words in ascending order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// SplitIntoWordsNoStop validates every word of text and returns the
// non-stop words in order. Nothing is returned when any word is invalid.
func (s StopWords) SplitIntoWordsNoStop(text string) ([]string, error) {
	words := SplitIntoWords(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if err := ValidateWord(w); err != nil {
			return nil, err
		}
		if s.Contains(w) {
			continue
		}
		kept = append(kept, w)
	}
	return kept, nil
}
