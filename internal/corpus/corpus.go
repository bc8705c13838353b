// Package corpus reads a YAML file of documents and sample queries and
// loads the documents into an index.
//
// The file looks like:
//
//	documents:
//	  - id: 1
//	    text: funny pet and nasty rat
//	    status: ACTUAL
//	    ratings: [7, 2, 7]
//	queries:
//	  - nasty rat -not
package corpus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"gopkg.in/yaml.v3"
)

// Entry is one document in the corpus file. A missing status means ACTUAL.
type Entry struct {
	ID      int             `yaml:"id"`
	Text    string          `yaml:"text"`
	Status  document.Status `yaml:"status"`
	Ratings []int           `yaml:"ratings"`
}

type Corpus struct {
	Documents []Entry  `yaml:"documents"`
	Queries   []string `yaml:"queries"`
}

// Adder is the index write the loader needs.
type Adder interface {
	AddDocument(id int, text string, status document.Status, ratings []int) error
}

func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return c, nil
}

// Decode parses a corpus. An empty input yields an empty corpus.
func Decode(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	return &c, nil
}

// AddTo adds every document in file order and stops at the first rejected
// one. Documents added before the failure stay in the index.
func (c *Corpus) AddTo(idx Adder, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for i, e := range c.Documents {
		if err := idx.AddDocument(e.ID, e.Text, e.Status, e.Ratings); err != nil {
			return i, fmt.Errorf("corpus document %d (entry %d): %w", e.ID, i, err)
		}
	}
	logger.Info("corpus loaded",
		"documents", len(c.Documents),
		"queries", len(c.Queries),
	)
	return len(c.Documents), nil
}
