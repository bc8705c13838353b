// Package document holds the value types shared by the index and its
// collaborators: document status, the stored per-document record, ranked
// results and the predicate used to filter them.
package document

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Status is the lifecycle tag a document is inserted with. It never changes.
type Status int

const (
	Actual Status = iota
	Irrelevant
	Banned
	Removed
)

var statusNames = [...]string{
	Actual:     "ACTUAL",
	Irrelevant: "IRRELEVANT",
	Banned:     "BANNED",
	Removed:    "REMOVED",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus maps a status name to a Status, ignoring case.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Status(i), nil
		}
	}
	return Actual, apperrors.Newf(apperrors.ErrInvalidInput, "unknown document status %q", name)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Status) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return fmt.Errorf("decoding status: %w", err)
	}
	return s.UnmarshalText([]byte(name))
}

// Record is what the index keeps per live document besides its terms.
type Record struct {
	Rating int
	Status Status
}

// NewRecord builds a Record, averaging ratings.
func NewRecord(status Status, ratings []int) Record {
	return Record{
		Rating: AverageRating(ratings),
		Status: status,
	}
}

// AverageRating returns floor(sum/len) of ratings, or 0 when there are none.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	n := len(ratings)
	avg := sum / n
	if sum%n != 0 && sum < 0 {
		avg--
	}
	return avg
}

// Document is one ranked search result.
type Document struct {
	ID        int     `json:"document_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// Predicate filters candidate documents while scoring.
type Predicate func(id int, status Status, rating int) bool

// StatusIs returns a Predicate accepting only documents with the given status.
func StatusIs(want Status) Predicate {
	return func(_ int, status Status, _ int) bool {
		return status == want
	}
}

// DefaultPredicate accepts Actual documents.
func DefaultPredicate() Predicate {
	return StatusIs(Actual)
}
